package player

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kvasen/spotnow/internal/shared"
	"golang.org/x/time/rate"
)

// DefaultInterval is the minimum spacing between refresh attempts when
// the operator hasn't tuned one.
const DefaultInterval = 1250 * time.Millisecond

// FetchFunc produces a fresh snapshot. A (nil, nil) return is the valid
// "nothing playing" result.
type FetchFunc func(ctx context.Context) (*Snapshot, error)

// Cache wraps a fetch behind a refresh-interval gate with at-most-one
// concurrent refresh. [Cache.Get] never blocks on network I/O: it
// returns the last known snapshot immediately and refreshes in the
// background when eligible.
type Cache struct {
	mu       sync.Mutex
	snap     *Snapshot
	inFlight bool
	limiter  *rate.Limiter
	fetch    FetchFunc
	logger   *log.Logger
}

// NewCache creates a cache refreshing at most once per interval.
func NewCache(interval time.Duration, fetch FetchFunc, logger *log.Logger) *Cache {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Cache{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		fetch:   fetch,
		logger:  logger,
	}
}

// Get returns the most recent snapshot (nil before the first successful
// refresh) without waiting. When the refresh interval has elapsed and no
// refresh is in flight, it claims the in-flight flag and starts an
// asynchronous refresh; a concurrent Get meanwhile just sees the stale
// value. A failed refresh keeps the previous value and retries on a
// later eligible Get.
func (c *Cache) Get() *Snapshot {
	c.mu.Lock()
	snap := c.snap
	claimed := !c.inFlight && c.limiter.Allow()
	if claimed {
		c.inFlight = true
	}
	c.mu.Unlock()

	if claimed {
		go c.refresh()
	}

	return snap
}

// refresh runs one fetch to completion and swaps the stored value on
// success. There is no cross-refresh cancellation: a slow refresh only
// delays the next one through the in-flight flag.
func (c *Cache) refresh() {
	snap, err := c.fetch(context.Background())

	c.mu.Lock()
	c.inFlight = false
	if err == nil {
		c.snap = snap
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warnf("snapshot refresh failed: %v", err)
	}
}
