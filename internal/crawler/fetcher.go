package crawler

import (
	"context"
	"deck-crawler/internal/logging"
	"time"

	"github.com/rs/zerolog"
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type FetcherConfig struct {
	// Retries is the total number of attempts per fetch.
	Retries int
	// Backoff is the base delay; after failed attempt i (0-based) the
	// fetcher waits Backoff * (i+1).
	Backoff time.Duration
}

func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		Retries: 3,
		Backoff: 10 * time.Second,
	}
}

// Fetcher wraps a Transport with a bounded retry budget and linear backoff.
type Fetcher struct {
	transport Transport
	config    FetcherConfig
	sleep     Sleeper
	logger    zerolog.Logger
}

func NewFetcher(transport Transport, cfg FetcherConfig) *Fetcher {
	if cfg.Retries < 1 {
		cfg.Retries = 1
	}
	return &Fetcher{
		transport: transport,
		config:    cfg,
		sleep:     SleepContext,
		logger:    logging.NewLogger("fetcher"),
	}
}

// WithSleeper replaces the backoff sleeper, mainly for tests.
func (f *Fetcher) WithSleeper(s Sleeper) *Fetcher {
	f.sleep = s
	return f
}

// Fetch returns the page body, or ok=false once every attempt has failed.
// Failures are logged, never returned. A cancelled ctx also yields ok=false.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, bool) {
	for attempt := 0; attempt < f.config.Retries; attempt++ {
		body, err := f.transport.Get(ctx, url)
		if err == nil {
			fetchAttemptsTotal.WithLabelValues("success").Inc()
			if attempt > 0 {
				f.logger.Info().Str("url", url).Int("attempt", attempt+1).Msg("Fetch succeeded after retry")
			}
			return body, true
		}
		fetchAttemptsTotal.WithLabelValues("failure").Inc()

		backoff := f.config.Backoff * time.Duration(attempt+1)
		f.logger.Warn().
			Err(err).
			Str("url", url).
			Int("attempt", attempt+1).
			Int("max_attempts", f.config.Retries).
			Dur("backoff", backoff).
			Msg("Error fetching page")

		// The wait also follows the final attempt: 10s, 20s, 30s at defaults.
		fetchBackoffSeconds.Observe(backoff.Seconds())
		if err := f.sleep(ctx, backoff); err != nil {
			f.logger.Warn().Str("url", url).Msg("Fetch cancelled during backoff")
			return "", false
		}
	}

	fetchExhaustedTotal.Inc()
	f.logger.Error().Str("url", url).Int("attempts", f.config.Retries).Msg("Giving up on page")
	return "", false
}
