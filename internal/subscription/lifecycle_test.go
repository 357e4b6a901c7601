package subscription

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/models"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/store"
)

//
// --- In-memory fakes ---
//

type fakePayments struct {
	payments map[int64]*models.SubscriptionPayment
	nextID   int64
}

func newFakePayments() *fakePayments {
	return &fakePayments{payments: make(map[int64]*models.SubscriptionPayment), nextID: 1}
}

func (f *fakePayments) GetPayment(_ context.Context, id int64) (*models.SubscriptionPayment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePayments) GetPendingPayment(_ context.Context, email string) (*models.SubscriptionPayment, error) {
	for _, p := range f.payments {
		if p.EmployerEmail == email && p.Status == models.PaymentStatusPending {
			cp := *p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakePayments) CreatePayment(_ context.Context, p *models.SubscriptionPayment) (int64, error) {
	id := f.nextID
	f.nextID++
	cp := *p
	cp.ID = id
	f.payments[id] = &cp
	return id, nil
}

func (f *fakePayments) MarkPaymentApproved(_ context.Context, id int64, reviewedBy string, reviewedAt time.Time) (bool, error) {
	p, ok := f.payments[id]
	if !ok || p.Status != models.PaymentStatusPending {
		return false, nil
	}
	p.Status = models.PaymentStatusApproved
	p.ReviewedBy = &reviewedBy
	p.ReviewedAt = &reviewedAt
	return true, nil
}

func (f *fakePayments) MarkPaymentDeclined(_ context.Context, id int64, reviewedBy, reason string, reviewedAt time.Time) (bool, error) {
	p, ok := f.payments[id]
	if !ok || p.Status != models.PaymentStatusPending {
		return false, nil
	}
	p.Status = models.PaymentStatusDeclined
	p.ReviewedBy = &reviewedBy
	p.DeclineReason = &reason
	p.ReviewedAt = &reviewedAt
	return true, nil
}

type fakeEmployers struct {
	employers map[string]*models.Employer
}

func (f *fakeEmployers) GetEmployerByEmail(_ context.Context, email string) (*models.Employer, error) {
	emp, ok := f.employers[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return emp, nil
}

func (f *fakeEmployers) ActivateSubscription(_ context.Context, email, planType string, boosts int, expiresAt time.Time) error {
	emp, ok := f.employers[email]
	if !ok {
		return store.ErrNotFound
	}
	emp.CurrentPlan = planType
	emp.BoostsRemaining = boosts
	emp.SubscriptionExpiresAt = &expiresAt
	return nil
}

func (f *fakeEmployers) DowngradeToFree(_ context.Context, email string) error {
	emp, ok := f.employers[email]
	if !ok {
		return store.ErrNotFound
	}
	emp.CurrentPlan = "free"
	emp.BoostsRemaining = 0
	emp.SubscriptionExpiresAt = nil
	return nil
}

type fakeJobs struct {
	closedCalls []int // cap passed on each CloseJobsOverCap call
	closeReturn int
}

func (f *fakeJobs) CloseJobsOverCap(_ context.Context, _ string, keep int) (int, error) {
	f.closedCalls = append(f.closedCalls, keep)
	return f.closeReturn, nil
}

type fakeNotifier struct {
	notifications []string
	emails        []string
}

func (f *fakeNotifier) Send(_ context.Context, _, message, _ string) {
	f.notifications = append(f.notifications, message)
}

func (f *fakeNotifier) SendEmail(_, subject, _ string) {
	f.emails = append(f.emails, subject)
}

func newTestLifecycle(t *testing.T) (*Lifecycle, *fakePayments, *fakeEmployers, *fakeJobs, *fakeNotifier) {
	t.Helper()
	payments := newFakePayments()
	employers := &fakeEmployers{employers: map[string]*models.Employer{
		"emp@test.lk": {Email: "emp@test.lk", CurrentPlan: "free"},
	}}
	jobs := &fakeJobs{}
	notifier := &fakeNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	l := NewLifecycle(payments, employers, jobs, notifier, logger)
	return l, payments, employers, jobs, notifier
}

//
// --- Tests ---
//

func TestSubmitPayment(t *testing.T) {
	l, _, _, _, notifier := newTestLifecycle(t)
	ctx := context.Background()

	p, err := l.SubmitPayment(ctx, "emp@test.lk", "gold", 7500, "http://x/receipt.png")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, p.Status)
	assert.Equal(t, "gold", p.PlanType)
	assert.NotZero(t, p.ID)
	assert.Len(t, notifier.notifications, 1)
}

func TestSubmitPaymentNormalizesPlanCase(t *testing.T) {
	l, _, _, _, _ := newTestLifecycle(t)

	p, err := l.SubmitPayment(context.Background(), "emp@test.lk", "GOLD", 7500, "r")
	require.NoError(t, err)
	assert.Equal(t, "gold", p.PlanType)
}

func TestSubmitPaymentUnknownPlan(t *testing.T) {
	l, _, _, _, _ := newTestLifecycle(t)

	_, err := l.SubmitPayment(context.Background(), "emp@test.lk", "diamond", 100, "r")
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestSubmitPaymentUnknownEmployer(t *testing.T) {
	l, _, _, _, _ := newTestLifecycle(t)

	_, err := l.SubmitPayment(context.Background(), "ghost@test.lk", "gold", 7500, "r")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSubmitPaymentRejectsSecondPending(t *testing.T) {
	l, _, _, _, _ := newTestLifecycle(t)
	ctx := context.Background()

	_, err := l.SubmitPayment(ctx, "emp@test.lk", "gold", 7500, "r")
	require.NoError(t, err)

	_, err = l.SubmitPayment(ctx, "emp@test.lk", "bronze", 3500, "r")
	assert.ErrorIs(t, err, ErrDuplicatePending)
}

func TestApprovePaymentActivatesPlan(t *testing.T) {
	l, _, employers, _, notifier := newTestLifecycle(t)
	ctx := context.Background()

	submitted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return submitted }

	p, err := l.SubmitPayment(ctx, "emp@test.lk", "gold", 7500, "r")
	require.NoError(t, err)

	require.NoError(t, l.ApprovePayment(ctx, p.ID, "admin"))

	emp := employers.employers["emp@test.lk"]
	assert.Equal(t, "gold", emp.CurrentPlan)
	assert.Equal(t, 3, emp.BoostsRemaining)
	require.NotNil(t, emp.SubscriptionExpiresAt)
	assert.Equal(t, submitted.Add(Term), *emp.SubscriptionExpiresAt)
	assert.NotEmpty(t, notifier.emails)
}

func TestApprovePaymentOverwritesBoosts(t *testing.T) {
	// Boosts are overwritten on activation, never added: an employer
	// holding 2 leftover boosts who renews gold ends with exactly 3.
	l, _, employers, _, _ := newTestLifecycle(t)
	ctx := context.Background()
	employers.employers["emp@test.lk"].BoostsRemaining = 2

	p, err := l.SubmitPayment(ctx, "emp@test.lk", "gold", 7500, "r")
	require.NoError(t, err)
	require.NoError(t, l.ApprovePayment(ctx, p.ID, "admin"))

	assert.Equal(t, 3, employers.employers["emp@test.lk"].BoostsRemaining)
}

func TestApprovePaymentTwiceFails(t *testing.T) {
	l, _, _, _, _ := newTestLifecycle(t)
	ctx := context.Background()

	p, err := l.SubmitPayment(ctx, "emp@test.lk", "bronze", 3500, "r")
	require.NoError(t, err)

	require.NoError(t, l.ApprovePayment(ctx, p.ID, "admin"))
	assert.ErrorIs(t, l.ApprovePayment(ctx, p.ID, "admin"), ErrAlreadyReviewed)
}

func TestApprovePaymentNotFound(t *testing.T) {
	l, _, _, _, _ := newTestLifecycle(t)
	assert.ErrorIs(t, l.ApprovePayment(context.Background(), 404, "admin"), ErrPaymentNotFound)
}

func TestDeclinePaymentLeavesPlanUntouched(t *testing.T) {
	l, payments, employers, _, _ := newTestLifecycle(t)
	ctx := context.Background()

	p, err := l.SubmitPayment(ctx, "emp@test.lk", "platinum", 14000, "r")
	require.NoError(t, err)

	require.NoError(t, l.DeclinePayment(ctx, p.ID, "admin", "receipt unreadable"))

	emp := employers.employers["emp@test.lk"]
	assert.Equal(t, "free", emp.CurrentPlan)
	assert.Zero(t, emp.BoostsRemaining)

	stored := payments.payments[p.ID]
	assert.Equal(t, models.PaymentStatusDeclined, stored.Status)
	require.NotNil(t, stored.DeclineReason)
	assert.Equal(t, "receipt unreadable", *stored.DeclineReason)
}

func TestDeclineThenApproveFails(t *testing.T) {
	l, _, _, _, _ := newTestLifecycle(t)
	ctx := context.Background()

	p, err := l.SubmitPayment(ctx, "emp@test.lk", "gold", 7500, "r")
	require.NoError(t, err)

	require.NoError(t, l.DeclinePayment(ctx, p.ID, "admin", "nope"))
	assert.ErrorIs(t, l.ApprovePayment(ctx, p.ID, "admin"), ErrAlreadyReviewed)
}

func TestDeclineClearsPendingSlot(t *testing.T) {
	l, _, _, _, _ := newTestLifecycle(t)
	ctx := context.Background()

	p, err := l.SubmitPayment(ctx, "emp@test.lk", "gold", 7500, "r")
	require.NoError(t, err)
	require.NoError(t, l.DeclinePayment(ctx, p.ID, "admin", "nope"))

	// A new submission is allowed once the previous one is terminal.
	_, err = l.SubmitPayment(ctx, "emp@test.lk", "gold", 7500, "r")
	assert.NoError(t, err)
}

func TestExpireDowngradesAndClosesExcess(t *testing.T) {
	l, _, employers, jobs, notifier := newTestLifecycle(t)
	ctx := context.Background()

	expiry := time.Now().Add(-time.Hour)
	employers.employers["emp@test.lk"].CurrentPlan = "gold"
	employers.employers["emp@test.lk"].BoostsRemaining = 2
	employers.employers["emp@test.lk"].SubscriptionExpiresAt = &expiry
	jobs.closeReturn = 5

	require.NoError(t, l.Expire(ctx, "emp@test.lk"))

	emp := employers.employers["emp@test.lk"]
	assert.Equal(t, "free", emp.CurrentPlan)
	assert.Zero(t, emp.BoostsRemaining)
	assert.Nil(t, emp.SubscriptionExpiresAt)

	// The free tier keeps the 2 newest Active jobs.
	require.Len(t, jobs.closedCalls, 1)
	assert.Equal(t, 2, jobs.closedCalls[0])
	assert.NotEmpty(t, notifier.notifications)
	assert.NotEmpty(t, notifier.emails)
}
