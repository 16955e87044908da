package main

import (
	"context"
	"deck-crawler/internal/config"
	"deck-crawler/internal/crawler"
	"deck-crawler/internal/crawler/engine"
	"deck-crawler/internal/logging"
	"deck-crawler/internal/storage"
	"deck-crawler/pkg/models"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type runOptions struct {
	keepIncomplete bool
	summary        bool
	out            io.Writer
}

// result is what one crawl produced.
type result struct {
	summary engine.Summary
	written int
	dropped int
}

func run(ctx context.Context, cfg *config.Config, opts runOptions) error {
	logger := logging.NewLogger("main")

	if cfg.MetricsAddr != "" {
		stopMetrics := serveMetrics(cfg.MetricsAddr)
		defer stopMetrics()
	}

	transport, closeTransport := newTransport(cfg)
	defer closeTransport()

	fetcher := crawler.NewFetcher(transport, crawler.FetcherConfig{Retries: cfg.Retries, Backoff: cfg.Backoff})
	domains := crawler.NewDomainManager(cfg.RateLimit, cfg.DeckDelayMin, cfg.DeckDelayMax)

	logger.Info().
		Str("url", cfg.ListingURL).
		Str("fetch_mode", cfg.FetchMode.String()).
		Msg("Starting crawler")

	res, err := crawl(ctx, cfg, fetcher, domains, crawler.NewRowFilter(opts.keepIncomplete))
	if err != nil {
		if errors.Is(err, crawler.ErrListingUnavailable) {
			logger.Error().Str("url", cfg.ListingURL).Msg("Failed to fetch the main URL.")
		}
		return err
	}

	logger.Info().
		Int("rows_written", res.written).
		Int("rows_dropped", res.dropped).
		Msgf("Data successfully written to %s", cfg.OutputPath)

	if opts.summary {
		renderSummary(opts.out, res.summary)
	}
	return nil
}

// crawl runs traversal -> engine -> CSV file. The artifact appears only if the whole crawl succeeds.
func crawl(ctx context.Context, cfg *config.Config, fetcher crawler.PageFetcher, domains *crawler.DomainManager, filter crawler.RowFilter) (result, error) {
	extractor := crawler.NewExtractor(crawler.TappedOutSelectors(), cfg.SiteOrigin)
	traversal := crawler.NewTraversal(fetcher, extractor, domains)

	sink, err := storage.CreateFileSink(cfg.OutputPath, filter)
	if err != nil {
		return result{}, err
	}
	defer sink.Abort()

	summary, err := engine.NewEngine(engine.Config{BatchSize: cfg.BatchSize}, sink).
		Run(ctx, traversal.Rows(ctx, cfg.ListingURL))
	if err != nil {
		return result{}, err
	}

	if err := sink.Commit(); err != nil {
		return result{}, err
	}
	return result{summary: summary, written: sink.Written(), dropped: sink.Dropped()}, nil
}

func newTransport(cfg *config.Config) (crawler.Transport, func()) {
	if cfg.FetchMode == models.Browser {
		browser := crawler.NewBrowserTransport(cfg.UserAgent, cfg.FetchTimeout)
		return browser, browser.Close
	}
	return crawler.NewHTTPTransport(crawler.HTTPTransportOptions{
		UserAgent:        cfg.UserAgent,
		Timeout:          cfg.FetchTimeout,
		CloudflareBypass: cfg.CloudflareBypass,
	}), func() {}
}

// serveMetrics exposes /metrics for the duration of the crawl.
func serveMetrics(addr string) func() {
	logger := logging.NewLogger("metrics")
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("Metrics listener failed")
		}
	}()
	logger.Info().Str("addr", addr).Msg("Serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
