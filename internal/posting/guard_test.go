package posting

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/models"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/quota"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/store"
)

// fakeStore backs both the quota engine and the guard, so a created job
// immediately counts against the quota the way the real store behaves.
type fakeStore struct {
	mu        sync.Mutex
	employers map[string]*models.Employer
	jobs      map[int64]*models.Job
	nextJobID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		employers: make(map[string]*models.Employer),
		jobs:      make(map[int64]*models.Job),
		nextJobID: 1,
	}
}

func (f *fakeStore) GetEmployerByEmail(_ context.Context, email string) (*models.Employer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	emp, ok := f.employers[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *emp
	return &cp, nil
}

func (f *fakeStore) DecrementBoosts(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	emp, ok := f.employers[email]
	if !ok || emp.BoostsRemaining <= 0 {
		return false, nil
	}
	emp.BoostsRemaining--
	return true, nil
}

func (f *fakeStore) CreateJob(_ context.Context, job *models.Job) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextJobID
	f.nextJobID++
	cp := *job
	cp.ID = id
	f.jobs[id] = &cp
	return id, nil
}

func (f *fakeStore) GetJob(_ context.Context, id int64) (*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (f *fakeStore) PromoteJob(_ context.Context, id int64, promotedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return store.ErrNotFound
	}
	job.IsPremium = true
	job.PromotedAt = &promotedAt
	return nil
}

func (f *fakeStore) CountActiveJobs(_ context.Context, email string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, job := range f.jobs {
		if job.EmployerEmail == email && job.Status == models.JobStatusActive {
			count++
		}
	}
	return count, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	types    []string
}

func (r *recordingNotifier) Send(_ context.Context, _, message, notifType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	r.types = append(r.types, notifType)
}

func newTestGuard(st *fakeStore) (*Guard, *recordingNotifier) {
	notifier := &recordingNotifier{}
	engine := quota.NewEngine(st, st)
	return NewGuard(engine, st, st, notifier), notifier
}

func postReq(email string) PostJobRequest {
	return PostJobRequest{
		EmployerEmail: email,
		CompanyName:   "Acme Lanka",
		JobTitle:      "Barista",
		Location:      "Colombo",
		Schedule:      "Weekends",
		HoursPerDay:   4,
		PayAmount:     1500,
		PayFrequency:  "daily",
		Description:   "Weekend barista shift",
		Category:      "Hospitality",
	}
}

func TestPostJobWithinQuota(t *testing.T) {
	st := newFakeStore()
	st.employers["emp@test.lk"] = &models.Employer{Email: "emp@test.lk", CurrentPlan: "free"}
	guard, _ := newTestGuard(st)

	job, err := guard.PostJob(context.Background(), postReq("emp@test.lk"))
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusActive, job.Status)
	assert.NotZero(t, job.ID)
	assert.False(t, job.IsPremium)
}

func TestPostJobQuotaExhausted(t *testing.T) {
	st := newFakeStore()
	st.employers["emp@test.lk"] = &models.Employer{Email: "emp@test.lk", CurrentPlan: "free"}
	guard, _ := newTestGuard(st)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := guard.PostJob(ctx, postReq("emp@test.lk"))
		require.NoError(t, err)
	}

	_, err := guard.PostJob(ctx, postReq("emp@test.lk"))
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestPostJobAfterClosingOne(t *testing.T) {
	st := newFakeStore()
	st.employers["emp@test.lk"] = &models.Employer{Email: "emp@test.lk", CurrentPlan: "free"}
	guard, _ := newTestGuard(st)
	ctx := context.Background()

	first, err := guard.PostJob(ctx, postReq("emp@test.lk"))
	require.NoError(t, err)
	_, err = guard.PostJob(ctx, postReq("emp@test.lk"))
	require.NoError(t, err)

	_, err = guard.PostJob(ctx, postReq("emp@test.lk"))
	require.ErrorIs(t, err, ErrQuotaExceeded)

	// Closing a job frees exactly one slot.
	st.mu.Lock()
	st.jobs[first.ID].Status = models.JobStatusClosed
	st.mu.Unlock()

	_, err = guard.PostJob(ctx, postReq("emp@test.lk"))
	require.NoError(t, err)
	_, err = guard.PostJob(ctx, postReq("emp@test.lk"))
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestPostJobUnlimitedPlan(t *testing.T) {
	st := newFakeStore()
	st.employers["emp@test.lk"] = &models.Employer{Email: "emp@test.lk", CurrentPlan: "platinum"}
	guard, _ := newTestGuard(st)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := guard.PostJob(ctx, postReq("emp@test.lk"))
		require.NoError(t, err)
	}
}

func TestPostJobUnknownEmployer(t *testing.T) {
	guard, _ := newTestGuard(newFakeStore())
	_, err := guard.PostJob(context.Background(), postReq("ghost@test.lk"))
	assert.ErrorIs(t, err, ErrEmployerNotFound)
}

func TestPostJobDeadlineClamped(t *testing.T) {
	st := newFakeStore()
	st.employers["emp@test.lk"] = &models.Employer{Email: "emp@test.lk", CurrentPlan: "free"}
	guard, _ := newTestGuard(st)

	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	guard.now = func() time.Time { return now }

	req := postReq("emp@test.lk")
	req.Deadline = now.Add(90 * 24 * time.Hour)

	job, err := guard.PostJob(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, now.Add(MaxJobDuration), job.Deadline)
}

func TestPostJobMissingDeadlineGetsFullWindow(t *testing.T) {
	st := newFakeStore()
	st.employers["emp@test.lk"] = &models.Employer{Email: "emp@test.lk", CurrentPlan: "free"}
	guard, _ := newTestGuard(st)

	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	guard.now = func() time.Time { return now }

	job, err := guard.PostJob(context.Background(), postReq("emp@test.lk"))
	require.NoError(t, err)
	assert.Equal(t, now.Add(MaxJobDuration), job.Deadline)
}

func TestPostPremiumJobConsumesBoost(t *testing.T) {
	st := newFakeStore()
	st.employers["emp@test.lk"] = &models.Employer{Email: "emp@test.lk", CurrentPlan: "gold", BoostsRemaining: 3}
	guard, _ := newTestGuard(st)

	req := postReq("emp@test.lk")
	req.Premium = true

	job, err := guard.PostJob(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, job.IsPremium)
	assert.NotNil(t, job.PromotedAt)
	assert.Equal(t, 2, st.employers["emp@test.lk"].BoostsRemaining)
}

func TestPostPremiumJobWithoutBoosts(t *testing.T) {
	st := newFakeStore()
	st.employers["emp@test.lk"] = &models.Employer{Email: "emp@test.lk", CurrentPlan: "gold", BoostsRemaining: 0}
	guard, _ := newTestGuard(st)

	req := postReq("emp@test.lk")
	req.Premium = true

	_, err := guard.PostJob(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoBoostsRemaining)
	assert.Empty(t, st.jobs, "no job should be created when the boost check fails")
}

func TestPostJobLowQuotaWarning(t *testing.T) {
	st := newFakeStore()
	st.employers["emp@test.lk"] = &models.Employer{Email: "emp@test.lk", CurrentPlan: "free"}
	guard, notifier := newTestGuard(st)

	_, err := guard.PostJob(context.Background(), postReq("emp@test.lk"))
	require.NoError(t, err)

	// Free plan: after the first post one slot remains, which trips the
	// low-quota warning alongside the success notification.
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.types, 2)
	assert.Equal(t, models.NotificationSuccess, notifier.types[0])
	assert.Equal(t, models.NotificationWarning, notifier.types[1])
}

// TestPostJobConcurrentStorm hammers one employer's last slots from many
// goroutines. The per-employer lock must hold the plan invariant: never
// more Active jobs than the quota allows.
func TestPostJobConcurrentStorm(t *testing.T) {
	st := newFakeStore()
	st.employers["emp@test.lk"] = &models.Employer{Email: "emp@test.lk", CurrentPlan: "free"}
	guard, _ := newTestGuard(st)
	ctx := context.Background()

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := guard.PostJob(ctx, postReq("emp@test.lk"))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrQuotaExceeded)
		}
	}

	assert.Equal(t, 2, succeeded)
	active, err := st.CountActiveJobs(ctx, "emp@test.lk")
	require.NoError(t, err)
	assert.Equal(t, 2, active)
}

// TestPromoteConcurrentStorm races promotions of distinct jobs against a
// single remaining boost. Exactly one may win.
func TestPromoteConcurrentStorm(t *testing.T) {
	st := newFakeStore()
	st.employers["emp@test.lk"] = &models.Employer{Email: "emp@test.lk", CurrentPlan: "platinum", BoostsRemaining: 1}
	guard, _ := newTestGuard(st)
	ctx := context.Background()

	var jobIDs []int64
	for i := 0; i < 5; i++ {
		job, err := guard.PostJob(ctx, postReq("emp@test.lk"))
		require.NoError(t, err)
		jobIDs = append(jobIDs, job.ID)
	}

	var wg sync.WaitGroup
	results := make(chan error, len(jobIDs))
	for _, id := range jobIDs {
		wg.Add(1)
		go func(jobID int64) {
			defer wg.Done()
			results <- guard.PromoteJob(ctx, jobID, "emp@test.lk")
		}(id)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrNoBoostsRemaining)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Zero(t, st.employers["emp@test.lk"].BoostsRemaining)
}

func TestPromoteJob(t *testing.T) {
	st := newFakeStore()
	st.employers["emp@test.lk"] = &models.Employer{Email: "emp@test.lk", CurrentPlan: "gold", BoostsRemaining: 3}
	guard, _ := newTestGuard(st)
	ctx := context.Background()

	job, err := guard.PostJob(ctx, postReq("emp@test.lk"))
	require.NoError(t, err)

	require.NoError(t, guard.PromoteJob(ctx, job.ID, "emp@test.lk"))

	promoted, err := st.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsPremium)
	assert.Equal(t, 2, st.employers["emp@test.lk"].BoostsRemaining)
}

func TestPromoteAlreadyPremiumDoesNotBurnBoost(t *testing.T) {
	st := newFakeStore()
	st.employers["emp@test.lk"] = &models.Employer{Email: "emp@test.lk", CurrentPlan: "gold", BoostsRemaining: 3}
	guard, _ := newTestGuard(st)
	ctx := context.Background()

	req := postReq("emp@test.lk")
	req.Premium = true
	job, err := guard.PostJob(ctx, req)
	require.NoError(t, err)

	err = guard.PromoteJob(ctx, job.ID, "emp@test.lk")
	assert.ErrorIs(t, err, ErrAlreadyPromoted)
	assert.Equal(t, 2, st.employers["emp@test.lk"].BoostsRemaining)
}

func TestPromoteSomeoneElsesJob(t *testing.T) {
	st := newFakeStore()
	st.employers["owner@test.lk"] = &models.Employer{Email: "owner@test.lk", CurrentPlan: "gold", BoostsRemaining: 3}
	st.employers["other@test.lk"] = &models.Employer{Email: "other@test.lk", CurrentPlan: "gold", BoostsRemaining: 3}
	guard, _ := newTestGuard(st)
	ctx := context.Background()

	job, err := guard.PostJob(ctx, postReq("owner@test.lk"))
	require.NoError(t, err)

	err = guard.PromoteJob(ctx, job.ID, "other@test.lk")
	assert.ErrorIs(t, err, ErrJobNotFound)
}
