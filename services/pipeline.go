package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosha-popular/fstock-bot/config"
	"github.com/gosha-popular/fstock-bot/models"
	"github.com/gosha-popular/fstock-bot/scraper/retailer"
	"github.com/gosha-popular/fstock-bot/storage"
	"github.com/gosha-popular/fstock-bot/utils"
)

// Pipeline drives the scrape side end to end: fetch raw catalogs, extract
// and filter them, persist per-retailer snapshots, then fold the snapshots
// into per-item history rows.
type Pipeline struct {
	fetcher    *retailer.Fetcher
	snapshots  storage.SnapshotStore
	aggregator *Aggregator
	basket     []models.BasketItem
	negative   []string
	dataDir    string
	logger     *utils.Logger

	maxConcurrency int
	rateLimitMs    int
}

// NewPipeline wires the pipeline over the default basket and exclusion list.
func NewPipeline(fetcher *retailer.Fetcher, snapshots storage.SnapshotStore,
	aggregator *Aggregator, cfg *config.Config, logger *utils.Logger) *Pipeline {
	return &Pipeline{
		fetcher:        fetcher,
		snapshots:      snapshots,
		aggregator:     aggregator,
		basket:         models.Basket,
		negative:       models.NegativeKeywords,
		dataDir:        cfg.DataDir,
		logger:         logger,
		maxConcurrency: cfg.MaxConcurrency,
		rateLimitMs:    cfg.RateLimitMs,
	}
}

// ScrapeAll processes every basket item: raw payloads, extraction, keyword
// filtering, snapshot CSVs. Items run on a worker pool — each item touches
// only its own query directory, so the jobs never share files.
func (p *Pipeline) ScrapeAll(ctx context.Context) {
	p.logger.Info("[pipeline] scraping %d basket items across %d retailers",
		len(p.basket), len(config.RetailerNames))

	// Fresh dedup per run: items sharing a query are still fetched once,
	// but the next scheduled run supersedes every raw payload.
	p.fetcher.Reset()

	pool := utils.NewWorkerPool(p.maxConcurrency, p.rateLimitMs)
	for _, item := range p.basket {
		item := item
		pool.Submit(func() {
			p.scrapeItem(ctx, item)
		})
	}
	pool.Wait()

	p.logger.Info("[pipeline] scrape complete")
}

func (p *Pipeline) scrapeItem(ctx context.Context, item models.BasketItem) {
	p.fetcher.FetchAll(ctx, item.Query)

	queryDir := retailer.QueryDir(p.dataDir, item.Query)
	positive := strings.Fields(item.Query)

	for _, name := range config.RetailerNames {
		path := filepath.Join(queryDir, name+".json")
		raw, err := os.ReadFile(path)
		if err != nil {
			p.logger.Debug("[pipeline] no payload %s for %q", name, item.Key)
			continue
		}

		records := Extract(name, raw)
		kept := Filter(records, positive, p.negative)
		p.logger.Debug("[pipeline] %s/%s: %d extracted, %d kept",
			item.Key, name, len(records), len(kept))

		if err := p.snapshots.WriteSnapshot(queryDir, name, kept); err != nil {
			p.logger.Error("[pipeline] snapshot %s/%s: %v", item.Key, name, err)
		}
	}
}

// AggregateAll appends one history row per basket item with data. It runs
// on a single goroutine: history files are append-only and must not see
// interleaved writers.
func (p *Pipeline) AggregateAll() {
	for _, item := range p.basket {
		if err := p.aggregator.Run(item); err != nil {
			p.logger.Error("[pipeline] aggregate %s: %v", item.Key, err)
		}
	}
}
