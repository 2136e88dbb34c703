package services

import (
	"time"

	"github.com/gosha-popular/fstock-bot/models"
	"github.com/gosha-popular/fstock-bot/scraper/retailer"
	"github.com/gosha-popular/fstock-bot/storage"
	"github.com/gosha-popular/fstock-bot/utils"
)

// Aggregator reduces one day's filtered snapshots into a single history row
// per basket item: the minimum price seen at any retailer and the mean of
// the per-retailer average prices.
type Aggregator struct {
	snapshots storage.SnapshotStore
	history   *storage.HistoryStore
	dataDir   string
	logger    *utils.Logger
	now       func() time.Time
}

// NewAggregator creates an Aggregator over the given stores.
func NewAggregator(snapshots storage.SnapshotStore, history *storage.HistoryStore,
	dataDir string, logger *utils.Logger) *Aggregator {
	return &Aggregator{
		snapshots: snapshots,
		history:   history,
		dataDir:   dataDir,
		logger:    logger,
		now:       time.Now,
	}
}

// Run aggregates one basket item and appends the resulting row to its
// history file. An item with no snapshot data is skipped, not an error:
// no retailer matched it this run and no zero row is forced into the series.
func (a *Aggregator) Run(item models.BasketItem) error {
	queryDir := retailer.QueryDir(a.dataDir, item.Query)

	perFile, err := a.snapshots.SnapshotPrices(queryDir)
	if err != nil {
		return err
	}
	minPrice, avgPrice, ok := reduce(perFile)
	if !ok {
		a.logger.Warn("[aggregate] no data for %q this run — skipping", item.Key)
		return nil
	}

	row := models.HistoryRow{
		Date:     a.now(),
		Product:  item.Label,
		MinPrice: minPrice,
		AvgPrice: avgPrice,
	}
	if err := a.history.Append(item.Key, row); err != nil {
		return err
	}

	a.logger.Info("[aggregate] %s: min=%.2f avg=%.2f (%d retailers)",
		item.Key, minPrice, avgPrice, len(perFile))
	return nil
}

// reduce computes the cross-retailer aggregate: the overall minimum and the
// mean of each retailer's average. Files without rows never reach here.
func reduce(perFile [][]float64) (minPrice, avgPrice float64, ok bool) {
	if len(perFile) == 0 {
		return 0, 0, false
	}

	var avgSum float64
	for i, prices := range perFile {
		fileMin := prices[0]
		var fileSum float64
		for _, p := range prices {
			fileSum += p
			if p < fileMin {
				fileMin = p
			}
		}
		if i == 0 || fileMin < minPrice {
			minPrice = fileMin
		}
		avgSum += fileSum / float64(len(prices))
	}
	return minPrice, avgSum / float64(len(perFile)), true
}
