package cli

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reviewharvest/internal/config"
	"reviewharvest/internal/crawler"
	collyfetcher "reviewharvest/internal/fetcher/colly"
	"reviewharvest/internal/metrics"
	"reviewharvest/internal/storage"
)

func newCrawlCmd() *cobra.Command {
	var (
		seedURL string
		dsn     string
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl the review listing into the items table",
		Long: `Recreates the items table, then walks the listing page by page,
storing every extracted review under its own transaction. The crawl
stops when the listing has no next-page link.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(func(c *config.Config) {
				if seedURL != "" {
					c.Crawler.SeedURL = seedURL
				}
				if dsn != "" {
					c.DB.DSN = dsn
				}
			})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			metrics.Init()
			if cfg.Metrics.Addr != "" {
				startMetricsServer(cfg.Metrics.Addr, logger)
			}

			ctx := cmd.Context()
			store, err := openStore(ctx, cfg.DB)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := store.Close(); cerr != nil {
					logger.Warn("failed to close store", zap.Error(cerr))
				}
			}()

			// Destructive: recreates the table. Once per run, never per record.
			if err := store.InitSchema(ctx); err != nil {
				return fmt.Errorf("init schema: %w", err)
			}

			fetcher := collyfetcher.New(collyfetcher.Config{
				UserAgent: cfg.Crawler.UserAgent,
				Timeout:   cfg.Crawler.Timeout(),
			})
			sink := storage.NewReviewSink(store, logger)
			ctrl := crawler.New(fetcher, sink, crawler.Config{
				UserAgent: cfg.Crawler.UserAgent,
				Delay:     cfg.Crawler.Delay(),
				MaxPages:  cfg.Crawler.MaxPages,
			}, logger)

			logger.Info("starting crawl", zap.String("seed_url", cfg.Crawler.SeedURL))
			start := time.Now()
			if err := ctrl.Run(ctx, cfg.Crawler.SeedURL); err != nil {
				return fmt.Errorf("crawl: %w", err)
			}
			logger.Info("crawl finished", zap.Duration("elapsed", time.Since(start)))
			return nil
		},
	}

	cmd.Flags().StringVar(&seedURL, "seed-url", "", "listing URL to start from (overrides config)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "postgres connection string (overrides config)")
	return cmd
}

func startMetricsServer(addr string, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("metrics server listening", zap.String("addr", addr))
}
