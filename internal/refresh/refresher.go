// Package refresh runs the periodic market refresh cycle. Each cycle pulls
// the market set from the indexer, enriches it with live prices, and replaces
// the snapshot store and caches. A distributed lock keeps concurrent
// deployments from hammering the indexer with duplicate cycles.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// lockKey is shared by every nereusd instance pointed at the same Redis.
const lockKey = "refresh:markets"

// failureAlertThreshold is the number of consecutive failed cycles before the
// operator is notified. One-off indexer hiccups stay in the logs.
const failureAlertThreshold = 3

// MarketRefresher runs one full refresh cycle.
type MarketRefresher interface {
	Refresh(ctx context.Context) ([]domain.Market, error)
}

// Alerter delivers operator notifications.
type Alerter interface {
	Notify(ctx context.Context, title, message string) error
}

// Refresher drives MarketRefresher on a fixed interval under a distributed
// lock.
type Refresher struct {
	markets  MarketRefresher
	locks    domain.LockManager
	alerter  Alerter // optional
	interval time.Duration
	logger   *slog.Logger

	consecutiveFailures int
}

// NewRefresher creates a Refresher. alerter may be nil when operator
// notifications are not configured.
func NewRefresher(markets MarketRefresher, locks domain.LockManager, alerter Alerter, interval time.Duration, logger *slog.Logger) *Refresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Refresher{
		markets:  markets,
		locks:    locks,
		alerter:  alerter,
		interval: interval,
		logger:   logger.With(slog.String("component", "refresher")),
	}
}

// Run executes one cycle immediately, then on every interval tick until the
// context is cancelled. It returns the context error on shutdown; cycle
// failures are logged and alerted but never stop the loop.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "refresher started",
		slog.Duration("interval", r.interval),
	)

	r.runOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "refresher stopped")
			return ctx.Err()
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

// runOnce runs a single refresh cycle under the distributed lock. The lock
// TTL matches the interval so a crashed holder releases naturally before the
// next tick elsewhere.
func (r *Refresher) runOnce(ctx context.Context) {
	unlock, err := r.locks.Acquire(ctx, lockKey, r.interval)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			r.logger.DebugContext(ctx, "refresh cycle skipped, lock held elsewhere")
			return
		}
		r.logger.WarnContext(ctx, "refresh lock acquire failed",
			slog.String("error", err.Error()),
		)
		return
	}
	defer unlock()

	start := time.Now()
	markets, err := r.markets.Refresh(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.consecutiveFailures++
		r.logger.ErrorContext(ctx, "refresh cycle failed",
			slog.Int("consecutive_failures", r.consecutiveFailures),
			slog.String("error", err.Error()),
		)
		if r.alerter != nil && r.consecutiveFailures == failureAlertThreshold {
			alertErr := r.alerter.Notify(ctx, "Market refresh failing",
				fmt.Sprintf("%d consecutive refresh cycles failed, last error: %v", r.consecutiveFailures, err))
			if alertErr != nil {
				r.logger.WarnContext(ctx, "refresh failure alert not delivered",
					slog.String("error", alertErr.Error()),
				)
			}
		}
		return
	}

	if r.consecutiveFailures >= failureAlertThreshold && r.alerter != nil {
		if alertErr := r.alerter.Notify(ctx, "Market refresh recovered",
			fmt.Sprintf("refresh succeeded after %d failed cycles", r.consecutiveFailures)); alertErr != nil {
			r.logger.WarnContext(ctx, "refresh recovery alert not delivered",
				slog.String("error", alertErr.Error()),
			)
		}
	}
	r.consecutiveFailures = 0

	r.logger.InfoContext(ctx, "refresh cycle complete",
		slog.Int("markets", len(markets)),
		slog.Duration("elapsed", time.Since(start)),
	)
}
