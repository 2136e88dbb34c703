package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/gosha-popular/fstock-bot/bot"
	"github.com/gosha-popular/fstock-bot/config"
	"github.com/gosha-popular/fstock-bot/scraper/retailer"
	"github.com/gosha-popular/fstock-bot/services"
	"github.com/gosha-popular/fstock-bot/storage"
	"github.com/gosha-popular/fstock-bot/utils"
)

func main() {
	logger := utils.NewLogger()
	defer logger.Sync()
	cfg := config.Load()

	logger.Info("=== fstock price-index bot starting ===")
	logger.Info("Config — data: %s | configs: %s | concurrency: %d | rate: %dms",
		cfg.DataDir, cfg.ConfigDir, cfg.MaxConcurrency, cfg.RateLimitMs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	subs, err := storage.NewPostgresStore(cfg.DSN(), cfg.MaxRetries, logger)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		os.Exit(1)
	}
	defer subs.Close()

	proxies, err := config.LoadProxies(cfg.ConfigDir)
	if err != nil {
		logger.Warn("No proxy profile: %v — continuing without proxy", err)
		proxies = nil
	}

	// A broken template disables that one retailer, not the run.
	var clients []retailer.Searcher
	for _, name := range config.RetailerNames {
		rc, err := config.LoadRetailer(cfg.ConfigDir, name)
		if err != nil {
			logger.Error("Retailer %s disabled: %v", name, err)
			continue
		}
		clients = append(clients, retailer.NewClient(rc, proxies, logger))
	}
	if len(clients) == 0 {
		logger.Error("No retailer could be configured. Exiting.")
		os.Exit(1)
	}

	fetcher := retailer.NewFetcher(clients, cfg.DataDir, logger)
	snapshots := storage.NewCSVStore()
	history := storage.NewHistoryStore(filepath.Join(cfg.DataDir, "report"))
	aggregator := services.NewAggregator(snapshots, history, cfg.DataDir, logger)
	pipeline := services.NewPipeline(fetcher, snapshots, aggregator, cfg, logger)
	renderer := services.NewRenderer(history, logger)

	priceBot, err := bot.New(cfg.BotToken, cfg.AdminIDs, subs, pipeline, renderer, logger)
	if err != nil {
		logger.Error("Failed to start Telegram bot: %v", err)
		os.Exit(1)
	}

	scheduler := cron.New()
	schedule := func(name, spec string, job func()) {
		if _, err := scheduler.AddFunc(spec, job); err != nil {
			logger.Error("Bad cron spec for %s (%q): %v", name, spec, err)
			os.Exit(1)
		}
		logger.Info("Scheduled %s: %s", name, spec)
	}

	schedule("scrape", cfg.ScrapeSpec, func() {
		pipeline.ScrapeAll(ctx)
		pipeline.AggregateAll()
	})
	schedule("weekly report", cfg.WeeklyReportSpec, priceBot.SendWeekly)
	schedule("monthly report", cfg.MonthlyReportSpec, priceBot.SendMonthly)

	scheduler.Start()
	defer scheduler.Stop()

	priceBot.Run(ctx)
	logger.Info("Shutdown complete")
}
