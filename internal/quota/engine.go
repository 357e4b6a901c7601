// Package quota computes an employer's remaining entitlements. The
// remaining post count is always derived from the plan quota and a live
// count of Active jobs; the legacy job_posts_remaining column proved to
// drift and is never read. Boosts are the opposite: a stored counter,
// consumed one at a time on discrete actions.
package quota

import (
	"context"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/models"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/plan"
)

// EmployerReader is the slice of the store the engine needs to resolve
// an employer's plan and boost counter.
type EmployerReader interface {
	GetEmployerByEmail(ctx context.Context, email string) (*models.Employer, error)
}

// JobCounter counts an employer's Active jobs.
type JobCounter interface {
	CountActiveJobs(ctx context.Context, employerEmail string) (int, error)
}

// Engine answers "how many more posts / boosts does this employer
// have". It holds no state and is safe to call from any goroutine.
type Engine struct {
	employers EmployerReader
	jobs      JobCounter
}

func NewEngine(employers EmployerReader, jobs JobCounter) *Engine {
	return &Engine{employers: employers, jobs: jobs}
}

// RemainingJobPosts returns how many more jobs the employer may post,
// or plan.Unlimited for the platinum tier. The unlimited case returns
// before the count query runs: the subtraction would be meaningless and
// the query is pure cost.
func (e *Engine) RemainingJobPosts(ctx context.Context, employerEmail string) (int, error) {
	emp, err := e.employers.GetEmployerByEmail(ctx, employerEmail)
	if err != nil {
		return 0, err
	}

	entitlement := plan.Lookup(emp.CurrentPlan)
	if entitlement.HasUnlimitedPosts() {
		return plan.Unlimited, nil
	}

	active, err := e.jobs.CountActiveJobs(ctx, employerEmail)
	if err != nil {
		return 0, err
	}

	remaining := entitlement.PostQuota - active
	if remaining < 0 {
		// More Active jobs than the quota allows can happen right after
		// a downgrade, before the reconciler closes the excess.
		return 0, nil
	}
	return remaining, nil
}

// RemainingBoosts returns the employer's stored boost counter.
func (e *Engine) RemainingBoosts(ctx context.Context, employerEmail string) (int, error) {
	emp, err := e.employers.GetEmployerByEmail(ctx, employerEmail)
	if err != nil {
		return 0, err
	}
	return emp.BoostsRemaining, nil
}
