package quota

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/models"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/plan"
)

type fakeEmployers struct {
	employers map[string]*models.Employer
}

func (f *fakeEmployers) GetEmployerByEmail(_ context.Context, email string) (*models.Employer, error) {
	emp, ok := f.employers[email]
	if !ok {
		return nil, errors.New("not found")
	}
	return emp, nil
}

type fakeJobCounter struct {
	active map[string]int
	calls  int
}

func (f *fakeJobCounter) CountActiveJobs(_ context.Context, email string) (int, error) {
	f.calls++
	return f.active[email], nil
}

func TestRemainingJobPosts(t *testing.T) {
	tests := []struct {
		name       string
		plan       string
		activeJobs int
		want       int
	}{
		{name: "free plan unused", plan: "free", activeJobs: 0, want: 2},
		{name: "free plan one used", plan: "free", activeJobs: 1, want: 1},
		{name: "free plan full", plan: "free", activeJobs: 2, want: 0},
		{name: "bronze plan", plan: "bronze", activeJobs: 4, want: 2},
		{name: "gold plan full", plan: "gold", activeJobs: 10, want: 0},
		{name: "over quota after downgrade clamps to zero", plan: "free", activeJobs: 7, want: 0},
		{name: "garbled plan treated as free", plan: "???", activeJobs: 1, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(
				&fakeEmployers{employers: map[string]*models.Employer{
					"emp@test.lk": {Email: "emp@test.lk", CurrentPlan: tt.plan},
				}},
				&fakeJobCounter{active: map[string]int{"emp@test.lk": tt.activeJobs}},
			)

			got, err := engine.RemainingJobPosts(context.Background(), "emp@test.lk")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemainingJobPostsUnlimitedSkipsCount(t *testing.T) {
	counter := &fakeJobCounter{active: map[string]int{"emp@test.lk": 9999}}
	engine := NewEngine(
		&fakeEmployers{employers: map[string]*models.Employer{
			"emp@test.lk": {Email: "emp@test.lk", CurrentPlan: "platinum"},
		}},
		counter,
	)

	got, err := engine.RemainingJobPosts(context.Background(), "emp@test.lk")
	require.NoError(t, err)
	assert.Equal(t, plan.Unlimited, got)
	assert.Zero(t, counter.calls, "unlimited plan should not hit the count query")
}

func TestRemainingJobPostsUnknownEmployer(t *testing.T) {
	engine := NewEngine(&fakeEmployers{employers: map[string]*models.Employer{}}, &fakeJobCounter{})
	_, err := engine.RemainingJobPosts(context.Background(), "ghost@test.lk")
	assert.Error(t, err)
}

func TestRemainingBoosts(t *testing.T) {
	engine := NewEngine(
		&fakeEmployers{employers: map[string]*models.Employer{
			"emp@test.lk": {Email: "emp@test.lk", CurrentPlan: "gold", BoostsRemaining: 2},
		}},
		&fakeJobCounter{},
	)

	got, err := engine.RemainingBoosts(context.Background(), "emp@test.lk")
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}
