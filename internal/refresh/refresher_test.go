package refresh

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nereuslabs/nereusd/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeRefresher struct {
	mu    sync.Mutex
	calls int
	errs  []error // per-call results; nil entry means success
}

func (f *fakeRefresher) Refresh(ctx context.Context) ([]domain.Market, error) {
	f.mu.Lock()
	idx := f.calls
	f.calls++
	f.mu.Unlock()
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	return []domain.Market{{Address: "0xm"}}, nil
}

func (f *fakeRefresher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeLocks struct {
	held     bool
	acquires int
	releases int
}

func (f *fakeLocks) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	f.acquires++
	if f.held {
		return nil, domain.ErrLockHeld
	}
	return func() { f.releases++ }, nil
}

type fakeAlerter struct {
	titles []string
}

func (f *fakeAlerter) Notify(ctx context.Context, title, message string) error {
	f.titles = append(f.titles, title)
	return nil
}

func TestRunOnceRefreshesUnderLock(t *testing.T) {
	markets := &fakeRefresher{}
	locks := &fakeLocks{}
	r := NewRefresher(markets, locks, nil, time.Minute, testLogger())

	r.runOnce(context.Background())

	assert.Equal(t, 1, markets.calls)
	assert.Equal(t, 1, locks.acquires)
	assert.Equal(t, 1, locks.releases, "lock is released after the cycle")
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	markets := &fakeRefresher{}
	locks := &fakeLocks{held: true}
	r := NewRefresher(markets, locks, nil, time.Minute, testLogger())

	r.runOnce(context.Background())

	assert.Zero(t, markets.calls, "cycle does not run without the lock")
}

func TestAlertsAfterConsecutiveFailures(t *testing.T) {
	boom := errors.New("indexer down")
	markets := &fakeRefresher{errs: []error{boom, boom, boom, nil}}
	alerter := &fakeAlerter{}
	r := NewRefresher(markets, &fakeLocks{}, alerter, time.Minute, testLogger())

	ctx := context.Background()
	r.runOnce(ctx)
	r.runOnce(ctx)
	require.Empty(t, alerter.titles, "no alert before the threshold")

	r.runOnce(ctx)
	require.Len(t, alerter.titles, 1)
	assert.Contains(t, alerter.titles[0], "failing")

	// Recovery notifies once and resets the counter.
	r.runOnce(ctx)
	require.Len(t, alerter.titles, 2)
	assert.Contains(t, alerter.titles[1], "recovered")
	assert.Zero(t, r.consecutiveFailures)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	markets := &fakeRefresher{}
	r := NewRefresher(markets, &fakeLocks{}, nil, time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// The initial cycle runs before the first tick.
	require.Eventually(t, func() bool { return markets.callCount() >= 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
