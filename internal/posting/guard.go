// Package posting enforces plan quotas at the moment a job is created
// or boosted. Every quota-consuming operation for one employer runs
// under that employer's lock, so two concurrent posts cannot both read
// "one slot left" and both commit.
package posting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/models"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/plan"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/quota"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/store"
)

// MaxJobDuration caps how far out a deadline may be. Caller-supplied
// deadlines beyond it are clamped silently, not rejected.
const MaxJobDuration = 30 * 24 * time.Hour

// EmployerStore is the employers surface the guard needs.
type EmployerStore interface {
	GetEmployerByEmail(ctx context.Context, email string) (*models.Employer, error)
	// DecrementBoosts atomically takes one boost, refusing to go below
	// zero. Returns false when no boost was available.
	DecrementBoosts(ctx context.Context, email string) (bool, error)
}

// JobStore is the jobs surface the guard needs.
type JobStore interface {
	CreateJob(ctx context.Context, job *models.Job) (int64, error)
	GetJob(ctx context.Context, id int64) (*models.Job, error)
	PromoteJob(ctx context.Context, id int64, promotedAt time.Time) error
}

// Notifier delivers in-app notifications, best-effort.
type Notifier interface {
	Send(ctx context.Context, userEmail, message, notifType string)
}

// PostJobRequest carries the validated attributes for a new job. The
// HTTP layer owns parsing; by the time a request reaches the guard the
// fields are trusted.
type PostJobRequest struct {
	EmployerEmail string
	CompanyName   string
	JobTitle      string
	Location      string
	Schedule      string
	HoursPerDay   int
	PayAmount     float64
	PayFrequency  string
	Description   string
	Category      string
	Premium       bool
	Deadline      time.Time
	JobImages     string
}

// Guard checks and reserves capacity for posts and boosts.
type Guard struct {
	quota     *quota.Engine
	employers EmployerStore
	jobs      JobStore
	notifier  Notifier

	now func() time.Time

	// Per-employer serialization. The map only ever grows; employers
	// number in the thousands, not millions, so entries are not reaped.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewGuard(engine *quota.Engine, employers EmployerStore, jobs JobStore, notifier Notifier) *Guard {
	return &Guard{
		quota:     engine,
		employers: employers,
		jobs:      jobs,
		notifier:  notifier,
		now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}
}

// lockEmployer returns the mutex serializing quota operations for one
// employer, creating it on first use.
func (g *Guard) lockEmployer(email string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[email]
	if !ok {
		l = &sync.Mutex{}
		g.locks[email] = l
	}
	return l
}

// PostJob creates an Active job if the employer has capacity. Premium
// placement additionally consumes one boost. The deadline is clamped to
// MaxJobDuration from now; a missing deadline gets the full window.
func (g *Guard) PostJob(ctx context.Context, req PostJobRequest) (*models.Job, error) {
	l := g.lockEmployer(req.EmployerEmail)
	l.Lock()
	defer l.Unlock()

	emp, err := g.employers.GetEmployerByEmail(ctx, req.EmployerEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEmployerNotFound
		}
		return nil, err
	}

	remaining, err := g.quota.RemainingJobPosts(ctx, req.EmployerEmail)
	if err != nil {
		return nil, err
	}
	if remaining != plan.Unlimited && remaining <= 0 {
		return nil, ErrQuotaExceeded
	}

	if req.Premium && emp.BoostsRemaining <= 0 {
		return nil, ErrNoBoostsRemaining
	}

	now := g.now()
	maxDeadline := now.Add(MaxJobDuration)
	deadline := req.Deadline
	if deadline.IsZero() || deadline.After(maxDeadline) {
		deadline = maxDeadline
	}

	job := &models.Job{
		EmployerEmail: req.EmployerEmail,
		CompanyName:   req.CompanyName,
		JobTitle:      req.JobTitle,
		Location:      req.Location,
		Schedule:      req.Schedule,
		HoursPerDay:   req.HoursPerDay,
		PayAmount:     req.PayAmount,
		PayFrequency:  req.PayFrequency,
		Description:   req.Description,
		Category:      req.Category,
		Status:        models.JobStatusActive,
		Deadline:      deadline,
		JobImages:     req.JobImages,
		PostedDate:    now,
	}
	if req.Premium {
		job.IsPremium = true
		job.PromotedAt = &now
	}

	id, err := g.jobs.CreateJob(ctx, job)
	if err != nil {
		return nil, err
	}
	job.ID = id

	if req.Premium {
		ok, err := g.employers.DecrementBoosts(ctx, req.EmployerEmail)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Checked above under the employer lock; only reachable if
			// something outside the guard drained the counter.
			return nil, ErrNoBoostsRemaining
		}
	}

	g.notifier.Send(ctx, req.EmployerEmail, fmt.Sprintf("Job %q posted!", req.JobTitle), models.NotificationSuccess)

	if remaining != plan.Unlimited && remaining-1 <= 1 {
		g.notifier.Send(ctx, req.EmployerEmail,
			fmt.Sprintf("You have %d job post(s) left on your plan.", remaining-1),
			models.NotificationWarning)
	}

	return job, nil
}

// PromoteJob spends one boost to mark an existing job premium. A job
// that is already premium never costs a boost.
func (g *Guard) PromoteJob(ctx context.Context, jobID int64, employerEmail string) error {
	l := g.lockEmployer(employerEmail)
	l.Lock()
	defer l.Unlock()

	emp, err := g.employers.GetEmployerByEmail(ctx, employerEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrEmployerNotFound
		}
		return err
	}

	job, err := g.jobs.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrJobNotFound
		}
		return err
	}
	if job.EmployerEmail != employerEmail {
		return ErrJobNotFound
	}
	if job.IsPremium {
		return ErrAlreadyPromoted
	}
	if emp.BoostsRemaining <= 0 {
		return ErrNoBoostsRemaining
	}

	ok, err := g.employers.DecrementBoosts(ctx, employerEmail)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoBoostsRemaining
	}

	if err := g.jobs.PromoteJob(ctx, jobID, g.now()); err != nil {
		return err
	}

	g.notifier.Send(ctx, employerEmail, fmt.Sprintf("Job %q is now boosted for 10 days.", job.JobTitle), models.NotificationSuccess)
	return nil
}
