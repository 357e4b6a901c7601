package reconciler

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
)

type fakeStore struct {
	mu sync.Mutex

	closeErr   error
	closeCalls []time.Time

	boostErr   error
	boostCalls []time.Time

	expiredEmails []string
	expiredErr    error

	block chan struct{} // non-nil makes CloseExpiredJobs wait
}

func (f *fakeStore) CloseExpiredJobs(_ context.Context, now time.Time) (int64, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls = append(f.closeCalls, now)
	return 1, f.closeErr
}

func (f *fakeStore) ExpireStaleBoosts(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.boostCalls = append(f.boostCalls, cutoff)
	return 1, f.boostErr
}

func (f *fakeStore) ListExpiredSubscriptions(_ context.Context, _ time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expiredEmails, f.expiredErr
}

type fakeLifecycle struct {
	mu      sync.Mutex
	expired []string
	failFor map[string]error
}

func (f *fakeLifecycle) Expire(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[email]; ok {
		return err
	}
	f.expired = append(f.expired, email)
	return nil
}

func newTestReconciler(st *fakeStore, lc *fakeLifecycle) *Reconciler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(st, lc, logger)
}

func TestRunOnceSweeps(t *testing.T) {
	st := &fakeStore{expiredEmails: []string{"a@test.lk", "b@test.lk"}}
	lc := &fakeLifecycle{}
	r := newTestReconciler(st, lc)

	now := time.Date(2026, 5, 1, 3, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.RunOnce(context.Background())

	require.Len(t, st.closeCalls, 1)
	assert.Equal(t, now, st.closeCalls[0])

	// Boosts expire 10 days after promotion.
	require.Len(t, st.boostCalls, 1)
	assert.Equal(t, now.Add(-BoostWindow), st.boostCalls[0])

	assert.Equal(t, []string{"a@test.lk", "b@test.lk"}, lc.expired)
}

func TestRunOnceSweepFailuresAreIsolated(t *testing.T) {
	st := &fakeStore{
		closeErr:      errors.New("close broke"),
		boostErr:      errors.New("boost broke"),
		expiredEmails: []string{"a@test.lk"},
	}
	lc := &fakeLifecycle{}
	r := newTestReconciler(st, lc)

	r.RunOnce(context.Background())

	// Both earlier sweeps failed, the downgrade sweep still ran.
	assert.Equal(t, []string{"a@test.lk"}, lc.expired)
}

func TestRunOncePerEmployerIsolation(t *testing.T) {
	st := &fakeStore{expiredEmails: []string{"a@test.lk", "bad@test.lk", "c@test.lk"}}
	lc := &fakeLifecycle{failFor: map[string]error{"bad@test.lk": errors.New("row is cursed")}}
	r := newTestReconciler(st, lc)

	r.RunOnce(context.Background())

	// The failing employer is skipped, the rest are still downgraded.
	assert.Equal(t, []string{"a@test.lk", "c@test.lk"}, lc.expired)
}

func TestRunOnceNeverOverlaps(t *testing.T) {
	st := &fakeStore{block: make(chan struct{})}
	lc := &fakeLifecycle{}
	r := newTestReconciler(st, lc)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.RunOnce(context.Background())
	}()

	// Wait until the first run is inside the blocking sweep.
	require.Eventually(t, func() bool {
		return r.running.Load()
	}, time.Second, time.Millisecond)

	// A second call while one is in flight must return immediately
	// without touching the store again.
	r.RunOnce(context.Background())

	close(st.block)
	wg.Wait()

	st.mu.Lock()
	defer st.mu.Unlock()
	assert.Len(t, st.closeCalls, 1)
}

func TestStartStop(t *testing.T) {
	st := &fakeStore{}
	lc := &fakeLifecycle{}
	r := newTestReconciler(st, lc)
	r.startupDelay = time.Millisecond
	r.interval = time.Hour

	r.Start(context.Background())

	require.Eventually(t, func() bool {
		st.mu.Lock()
		defer st.mu.Unlock()
		return len(st.closeCalls) == 1
	}, time.Second, time.Millisecond, "startup sweep should run after the delay")

	r.Stop()

	// No further sweeps after Stop.
	st.mu.Lock()
	calls := len(st.closeCalls)
	st.mu.Unlock()
	time.Sleep(10 * time.Millisecond)
	st.mu.Lock()
	defer st.mu.Unlock()
	assert.Equal(t, calls, len(st.closeCalls))
}

func TestStopBeforeFirstRun(t *testing.T) {
	st := &fakeStore{}
	r := newTestReconciler(st, &fakeLifecycle{})
	r.startupDelay = time.Hour

	r.Start(context.Background())
	r.Stop()

	assert.Empty(t, st.closeCalls)
}
