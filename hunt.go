package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/IliaW/lead-hunter/internal/cache"
	"github.com/IliaW/lead-hunter/internal/crawler"
	"github.com/IliaW/lead-hunter/internal/telemetry"
	"github.com/spf13/cobra"
)

var huntQueries []string

var huntCmd = &cobra.Command{
	Use:   "hunt",
	Short: "Search the web for trials and scholarships, rank the pages and export them",
	RunE:  runHunt,
}

func init() {
	huntCmd.Flags().StringArrayVar(&huntQueries, "query", nil, "search query to run instead of hunter.queries (repeatable)")
	rootCmd.AddCommand(huntCmd)
}

func runHunt(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(huntQueries) > 0 {
		cfg.HunterSettings.Queries = huntQueries
	}
	metrics := telemetry.SetupMetrics(ctx, cfg)
	defer metrics.Close()
	transport := getHttpTransport()
	provider, closeProvider, err := setupSearchProvider(ctx)
	if err != nil {
		return err
	}
	defer closeProvider()
	fetcher := crawler.NewFetcher(cfg.CrawlerSettings, cfg.HunterSettings.RequestTimeout, transport)
	slog.Info("starting hunt.", slog.String("env", cfg.Env),
		slog.String("provider", cfg.SearchSettings.Provider),
		slog.Int("queries", len(cfg.HunterSettings.Queries)))

	h := crawler.NewHunter(cfg.HunterSettings, provider, fetcher, setupArchive(), metrics.CrawlMetrics)
	report := h.Run(ctx)

	return finishRun(ctx, report)
}

func setupSearchProvider(ctx context.Context) (crawler.SearchProvider, func(), error) {
	var provider crawler.SearchProvider
	switch cfg.SearchSettings.Provider {
	case "google":
		p, err := crawler.NewGoogleSearchProvider(ctx, cfg.SearchSettings)
		if err != nil {
			return nil, nil, err
		}
		provider = p
	default:
		provider = crawler.NewDuckDuckGoProvider(cfg.SearchSettings, cfg.CrawlerSettings.UserAgent, getHttpTransport())
	}

	if !cfg.CacheSettings.Enabled {
		return provider, func() {}, nil
	}
	mc, err := cache.NewMemcachedClient(cfg.CacheSettings)
	if err != nil {
		slog.Warn("query cache unavailable. Searching without cache.", slog.String("err", err.Error()))
		return provider, func() {}, nil
	}
	return crawler.NewCachedProvider(provider, mc), mc.Close, nil
}
