package scheduler

import (
	"context"
	"time"

	"workmarket_sdr/platform/logger"
)

const (
	defaultSessionSweepInterval = 5 * time.Minute
	defaultSessionTTL           = 2 * time.Hour
)

// SessionEvicter drops sessions idle since before cutoff.
type SessionEvicter interface {
	Evict(cutoff time.Time) int
}

// SessionCleanup periodically evicts idle chat sessions from memory.
type SessionCleanup struct {
	store    SessionEvicter
	log      *logger.Logger
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionCleanup(store SessionEvicter, log *logger.Logger, interval, ttl time.Duration) *SessionCleanup {
	if interval <= 0 {
		interval = defaultSessionSweepInterval
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	return &SessionCleanup{
		store:    store,
		log:      log,
		interval: interval,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (c *SessionCleanup) Run(ctx context.Context) {
	if c == nil || c.store == nil {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *SessionCleanup) cleanup() int {
	removed := c.store.Evict(c.now().Add(-c.ttl))
	if removed > 0 {
		c.log.Info("session cleanup evicted idle sessions", "evicted", removed)
	}
	return removed
}
