// Package cache owns the process-wide snapshot of upstream data. The snapshot
// is refreshed lazily on a TTL; concurrent refreshes are collapsed into one
// upstream call, and callers holding a stale snapshot are never made to wait.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/david/offers-bff/internal/metrics"
	"github.com/david/offers-bff/internal/models"
)

// DefaultTTL matches the upstream data's freshness contract.
const DefaultTTL = 60 * time.Second

// Fetcher is the upstream collaborator. One call returns the full derived
// snapshot or fails.
type Fetcher interface {
	FetchSnapshot(ctx context.Context) (*models.Snapshot, error)
}

// refresh is a pending upstream fetch. snapshot and err may only be read
// after done is closed.
type refresh struct {
	done     chan struct{}
	snapshot *models.Snapshot
	err      error
}

type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	log     *zap.Logger

	mu        sync.Mutex
	current   *models.Snapshot
	expiresAt time.Time
	inflight  *refresh
}

// New returns a cache that starts cold: the zero expiry forces the first Get
// to refresh. A non-positive ttl falls back to DefaultTTL.
func New(fetcher Fetcher, ttl time.Duration, log *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		fetcher: fetcher,
		ttl:     ttl,
		log:     log,
	}
}

// Get returns the freshest affordable snapshot. When the TTL has passed it
// starts a background refresh (unless one is already running) and still
// returns the last-known-good snapshot immediately. Only a cold-start caller
// waits on the refresh, and only a cold-start caller can see its error.
func (c *Cache) Get(ctx context.Context) (*models.Snapshot, error) {
	c.mu.Lock()
	if time.Now().After(c.expiresAt) && c.inflight == nil {
		r := &refresh{done: make(chan struct{})}
		c.inflight = r
		go c.run(r)
	}
	current := c.current
	inflight := c.inflight
	c.mu.Unlock()

	if current != nil {
		return current, nil
	}

	// Cold start: no snapshot has ever been obtained, so an inflight refresh
	// is guaranteed to exist. Share its outcome with every waiter.
	select {
	case <-inflight.done:
		if inflight.err != nil {
			return nil, inflight.err
		}
		return inflight.snapshot, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// run executes one upstream fetch and publishes its outcome. A failed refresh
// leaves the previous snapshot and expiry untouched; the next Get after the
// TTL will try again.
func (c *Cache) run(r *refresh) {
	refreshID := uuid.NewString()
	start := time.Now()
	c.log.Info("starting snapshot refresh", zap.String("refresh_id", refreshID))

	snapshot, err := c.fetcher.FetchSnapshot(context.Background())
	took := time.Since(start)
	metrics.SnapshotRefreshDuration.Observe(took.Seconds())

	c.mu.Lock()
	if err != nil {
		metrics.SnapshotRefreshes.WithLabelValues("error").Inc()
		c.log.Error("snapshot refresh failed",
			zap.String("refresh_id", refreshID),
			zap.Duration("took", took),
			zap.Error(err))
	} else {
		c.current = snapshot
		c.expiresAt = time.Now().Add(c.ttl)
		metrics.SnapshotRefreshes.WithLabelValues("ok").Inc()
		metrics.SnapshotOffers.Set(float64(len(snapshot.Offers)))
		c.log.Info("snapshot refreshed",
			zap.String("refresh_id", refreshID),
			zap.Duration("took", took),
			zap.Int("offers", len(snapshot.Offers)),
			zap.Int("offer_types", len(snapshot.OfferTypes)))
	}
	r.snapshot = snapshot
	r.err = err
	c.inflight = nil
	c.mu.Unlock()

	close(r.done)
}
