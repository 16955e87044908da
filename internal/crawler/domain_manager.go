package crawler

import (
	"context"
	"math/rand/v2"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DomainManager keeps the crawl polite: an optional per-host request floor
// and the randomized pause taken after every deck fetch.
type DomainManager struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	interval time.Duration

	delayMin time.Duration
	delayMax time.Duration
	rng      *rand.Rand
	sleep    Sleeper
}

// NewDomainManager builds a manager pausing uniformly in [delayMin, delayMax]
// between decks. interval <= 0 disables the per-host limiter.
func NewDomainManager(interval, delayMin, delayMax time.Duration) *DomainManager {
	return &DomainManager{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
		delayMin: delayMin,
		delayMax: delayMax,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		sleep:    SleepContext,
	}
}

// WithRand swaps the random source, e.g. for a seeded one in tests.
func (d *DomainManager) WithRand(rng *rand.Rand) *DomainManager {
	d.rng = rng
	return d
}

func (d *DomainManager) WithSleeper(s Sleeper) *DomainManager {
	d.sleep = s
	return d
}

// Wait blocks until the host of targetURL may be requested again.
func (d *DomainManager) Wait(ctx context.Context, targetURL string) error {
	if d.interval <= 0 {
		return nil
	}
	u, err := url.Parse(targetURL)
	if err != nil {
		return err
	}
	domain := u.Host

	d.mu.Lock()
	limiter, exists := d.limiters[domain]
	if !exists {
		// 1 request per interval, burst of 1
		limiter = rate.NewLimiter(rate.Every(d.interval), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// NextDelay draws the next inter-deck pause.
func (d *DomainManager) NextDelay() time.Duration {
	span := d.delayMax - d.delayMin
	if span <= 0 {
		return d.delayMin
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delayMin + time.Duration(d.rng.Int64N(int64(span)+1))
}

// Pause sleeps for a random inter-deck delay.
func (d *DomainManager) Pause(ctx context.Context) error {
	return d.sleep(ctx, d.NextDelay())
}
