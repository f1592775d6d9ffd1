package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/IliaW/lead-hunter/internal/crawler"
	"github.com/IliaW/lead-hunter/internal/model"
	"github.com/IliaW/lead-hunter/internal/telemetry"
	"github.com/spf13/cobra"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Collect titles and emails from the configured academy sites",
	RunE:  runHarvest,
}

func init() {
	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := telemetry.SetupMetrics(ctx, cfg)
	defer metrics.Close()
	fetcher := crawler.NewFetcher(cfg.CrawlerSettings, cfg.HarvesterSettings.RequestTimeout, getHttpTransport())
	slog.Info("starting harvest.", slog.String("env", cfg.Env),
		slog.String("crawl mechanism", model.CrawlMechanism(cfg.CrawlerSettings.CrawlMechanism).String()))

	h := crawler.NewHarvester(cfg.HarvesterSettings, fetcher, setupArchive(), metrics.CrawlMetrics)
	report := h.Run(ctx)

	return finishRun(ctx, report)
}

// setupArchive returns nil when the Common Crawl fallback is disabled.
func setupArchive() crawler.Fetcher {
	if !cfg.CrawlerSettings.ArchiveFallback {
		return nil
	}
	return crawler.NewArchiveFetcher(cfg.CrawlerSettings)
}
