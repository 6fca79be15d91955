package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/david/offers-bff/internal/models"
)

// stubFetcher counts calls and can be made to block or fail on demand.
type stubFetcher struct {
	mu       sync.Mutex
	calls    int
	block    chan struct{}
	snapshot *models.Snapshot
	err      error
}

func (f *stubFetcher) FetchSnapshot(_ context.Context) (*models.Snapshot, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *stubFetcher) set(snapshot *models.Snapshot, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshot = snapshot
	f.err = err
}

func snapshotWithOffers(ids ...string) *models.Snapshot {
	offers := make([]models.Offer, 0, len(ids))
	for _, id := range ids {
		offers = append(offers, models.Offer{ID: id})
	}
	return &models.Snapshot{Offers: offers}
}

func TestGet_DeduplicatesConcurrentRefreshes(t *testing.T) {
	fetcher := &stubFetcher{
		block:    make(chan struct{}),
		snapshot: snapshotWithOffers("offer-1"),
	}
	c := New(fetcher, time.Minute, zap.NewNop())

	const callers = 25
	results := make(chan *models.Snapshot, callers)
	errs := make(chan error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snapshot, err := c.Get(context.Background())
			results <- snapshot
			errs <- err
		}()
	}

	close(fetcher.block)
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	first := <-results
	for snapshot := range results {
		assert.Same(t, first, snapshot)
	}
	assert.Equal(t, 1, fetcher.callCount())
}

func TestGet_ReturnsStaleSnapshotWhileRefreshPending(t *testing.T) {
	fetcher := &stubFetcher{snapshot: snapshotWithOffers("old")}
	c := New(fetcher, time.Nanosecond, zap.NewNop())

	old, err := c.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "old", old.Offers[0].ID)

	// The TTL has long passed; the next Get starts a refresh that hangs, but
	// callers keep getting the old snapshot without waiting.
	block := make(chan struct{})
	fetcher.mu.Lock()
	fetcher.block = block
	fetcher.snapshot = snapshotWithOffers("new")
	fetcher.mu.Unlock()

	stale, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, old, stale)

	close(block)
	assert.Eventually(t, func() bool {
		snapshot, err := c.Get(context.Background())
		return err == nil && snapshot.Offers[0].ID == "new"
	}, time.Second, 5*time.Millisecond)
}

func TestGet_FailedRefreshKeepsPreviousSnapshot(t *testing.T) {
	fetcher := &stubFetcher{snapshot: snapshotWithOffers("good")}
	c := New(fetcher, time.Nanosecond, zap.NewNop())

	good, err := c.Get(context.Background())
	require.NoError(t, err)

	fetcher.set(nil, errors.New("upstream down"))

	// Every Get keeps serving the last good snapshot; failures only show up
	// in the logs.
	for i := 0; i < 3; i++ {
		snapshot, err := c.Get(context.Background())
		require.NoError(t, err)
		assert.Same(t, good, snapshot)
	}

	assert.Eventually(t, func() bool {
		return fetcher.callCount() >= 2
	}, time.Second, 5*time.Millisecond)

	snapshot, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, good, snapshot)
}

func TestGet_ColdStartFailurePropagates(t *testing.T) {
	fetchErr := errors.New("boom")
	fetcher := &stubFetcher{err: fetchErr}
	c := New(fetcher, time.Minute, zap.NewNop())

	_, err := c.Get(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, fetchErr)

	// A failed refresh does not set an expiry, so the next Get tries again.
	assert.Eventually(t, func() bool {
		_, err := c.Get(context.Background())
		return err != nil && fetcher.callCount() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestGet_ColdStartRecoversAfterFailure(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("boom")}
	c := New(fetcher, time.Minute, zap.NewNop())

	_, err := c.Get(context.Background())
	require.Error(t, err)

	fetcher.set(snapshotWithOffers("offer-1"), nil)

	assert.Eventually(t, func() bool {
		snapshot, err := c.Get(context.Background())
		return err == nil && len(snapshot.Offers) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestGet_ContextCancelledWhileCold(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	fetcher := &stubFetcher{block: block, snapshot: snapshotWithOffers("offer-1")}
	c := New(fetcher, time.Minute, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_DefaultTTL(t *testing.T) {
	c := New(&stubFetcher{}, 0, zap.NewNop())
	assert.Equal(t, DefaultTTL, c.ttl)
}
