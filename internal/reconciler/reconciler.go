// Package reconciler is the background sweep that restores consistency
// independent of request-time checks: it closes jobs past their
// deadline, clears boosts past their window, and downgrades employers
// whose subscription has lapsed.
package reconciler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// BoostWindow is how long a boost keeps a job premium.
const BoostWindow = 10 * 24 * time.Hour

// Store is the bulk-update surface the sweeps run against.
type Store interface {
	// CloseExpiredJobs closes Active jobs whose deadline is before now.
	CloseExpiredJobs(ctx context.Context, now time.Time) (int64, error)
	// ExpireStaleBoosts clears is_premium on jobs promoted before the
	// cutoff, regardless of whether the job is Active or Closed.
	ExpireStaleBoosts(ctx context.Context, cutoff time.Time) (int64, error)
	// ListExpiredSubscriptions returns employers on a paid plan whose
	// subscription_expires_at is before now.
	ListExpiredSubscriptions(ctx context.Context, now time.Time) ([]string, error)
}

// Lifecycle downgrades a single employer. Satisfied by
// *subscription.Lifecycle.
type Lifecycle interface {
	Expire(ctx context.Context, employerEmail string) error
}

// Reconciler runs the sweeps on a fixed interval, plus once shortly
// after startup. It has an explicit Start/Stop lifecycle and never
// overlaps with itself; it may run concurrently with ordinary requests.
type Reconciler struct {
	store     Store
	lifecycle Lifecycle
	logger    *slog.Logger

	interval     time.Duration
	startupDelay time.Duration
	now          func() time.Time

	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func New(store Store, lifecycle Lifecycle, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		store:        store,
		lifecycle:    lifecycle,
		logger:       logger,
		interval:     24 * time.Hour,
		startupDelay: 5 * time.Second,
		now:          time.Now,
		stopCh:       make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine: one run after the
// startup delay, then one per interval.
func (r *Reconciler) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		select {
		case <-time.After(r.startupDelay):
			r.RunOnce(ctx)
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		}

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.RunOnce(ctx)
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	r.logger.Info("reconciler started", "interval", r.interval)
}

// Stop signals the loop to exit and waits for any in-flight sweep.
func (r *Reconciler) Stop() {
	close(r.stopCh)
	r.wg.Wait()
	r.logger.Info("reconciler stopped")
}

// RunOnce executes the three sweeps. If a sweep is already in flight
// the call returns immediately: overlapping runs would double-process
// the same rows. The sweeps are order-insensitive and each failure is
// logged and contained; one bad sweep never aborts the others.
func (r *Reconciler) RunOnce(ctx context.Context) {
	if !r.running.CompareAndSwap(false, true) {
		r.logger.Warn("reconciler sweep skipped, previous run still in flight")
		return
	}
	defer r.running.Store(false)

	now := r.now()

	if closed, err := r.store.CloseExpiredJobs(ctx, now); err != nil {
		r.logger.Error("close expired jobs sweep failed", "error", err)
	} else if closed > 0 {
		r.logger.Info("closed expired jobs", "count", closed)
	}

	if cleared, err := r.store.ExpireStaleBoosts(ctx, now.Add(-BoostWindow)); err != nil {
		r.logger.Error("expire stale boosts sweep failed", "error", err)
	} else if cleared > 0 {
		r.logger.Info("expired stale boosts", "count", cleared)
	}

	r.downgradeExpired(ctx, now)
}

// downgradeExpired walks every employer with a lapsed paid plan. Each
// employer is handled in isolation so one bad row cannot halt the rest.
func (r *Reconciler) downgradeExpired(ctx context.Context, now time.Time) {
	emails, err := r.store.ListExpiredSubscriptions(ctx, now)
	if err != nil {
		r.logger.Error("expired subscription lookup failed", "error", err)
		return
	}

	for _, email := range emails {
		if err := r.lifecycle.Expire(ctx, email); err != nil {
			r.logger.Error("subscription downgrade failed", "employer", email, "error", err)
			continue
		}
		r.logger.Info("subscription expired, employer downgraded", "employer", email)
	}
}
