// Package subscription is the state machine that moves an employer
// between plans: payment submission, admin review, activation, and
// expiry back to the free tier.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/models"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/plan"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/store"
)

// Term is how long an approved subscription stays active.
const Term = 30 * 24 * time.Hour

// PaymentStore is the payments surface the lifecycle needs.
type PaymentStore interface {
	GetPayment(ctx context.Context, id int64) (*models.SubscriptionPayment, error)
	GetPendingPayment(ctx context.Context, employerEmail string) (*models.SubscriptionPayment, error)
	CreatePayment(ctx context.Context, p *models.SubscriptionPayment) (int64, error)
	// MarkPaymentApproved and MarkPaymentDeclined only touch rows still
	// in 'pending' status and report whether a row was updated, so two
	// concurrent reviews cannot both win.
	MarkPaymentApproved(ctx context.Context, id int64, reviewedBy string, reviewedAt time.Time) (bool, error)
	MarkPaymentDeclined(ctx context.Context, id int64, reviewedBy, reason string, reviewedAt time.Time) (bool, error)
}

// EmployerStore is the employers surface the lifecycle needs.
type EmployerStore interface {
	GetEmployerByEmail(ctx context.Context, email string) (*models.Employer, error)
	// ActivateSubscription overwrites the plan, the boost counter, and
	// the expiry in a single update. Boosts are overwritten, not added.
	ActivateSubscription(ctx context.Context, email, planType string, boosts int, expiresAt time.Time) error
	// DowngradeToFree resets plan to free, boosts to zero, and clears
	// the expiry in a single update.
	DowngradeToFree(ctx context.Context, email string) error
}

// JobStore is the jobs surface expiry needs to enforce the free cap.
type JobStore interface {
	// CloseJobsOverCap closes the employer's Active jobs beyond the
	// cap, keeping the newest by posted date. Returns how many closed.
	CloseJobsOverCap(ctx context.Context, employerEmail string, keep int) (int, error)
}

// Notifier delivers in-app notifications and email, best-effort.
type Notifier interface {
	Send(ctx context.Context, userEmail, message, notifType string)
	SendEmail(to, subject, body string)
}

// Lifecycle coordinates plan transitions. All notification and email
// dispatch is fire-and-forget: a dead mailer never fails a review.
type Lifecycle struct {
	payments  PaymentStore
	employers EmployerStore
	jobs      JobStore
	notifier  Notifier
	logger    *slog.Logger

	now func() time.Time
}

func NewLifecycle(payments PaymentStore, employers EmployerStore, jobs JobStore, notifier Notifier, logger *slog.Logger) *Lifecycle {
	return &Lifecycle{
		payments:  payments,
		employers: employers,
		jobs:      jobs,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// SubmitPayment records a pending plan-upgrade claim. Exactly one
// pending payment is permitted per employer at a time.
func (l *Lifecycle) SubmitPayment(ctx context.Context, employerEmail, planType string, amount float64, receiptURL string) (*models.SubscriptionPayment, error) {
	if _, err := l.employers.GetEmployerByEmail(ctx, employerEmail); err != nil {
		return nil, err
	}

	if !plan.IsKnown(planType) {
		return nil, ErrUnknownPlan
	}

	existing, err := l.payments.GetPendingPayment(ctx, employerEmail)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicatePending
	}

	payment := &models.SubscriptionPayment{
		EmployerEmail: employerEmail,
		PlanType:      strings.ToLower(planType),
		Amount:        amount,
		ReceiptURL:    receiptURL,
		Status:        models.PaymentStatusPending,
		SubmittedAt:   l.now(),
	}
	id, err := l.payments.CreatePayment(ctx, payment)
	if err != nil {
		return nil, err
	}
	payment.ID = id

	l.notifier.Send(ctx, employerEmail, "Payment submitted for review.", models.NotificationInfo)
	return payment, nil
}

// ApprovePayment activates the paid plan: the employer's plan is set,
// the boost counter is OVERWRITTEN with the plan's boost quota, and the
// subscription runs for one term from now. Re-approving a payment that
// is no longer pending is an error, not a no-op.
func (l *Lifecycle) ApprovePayment(ctx context.Context, paymentID int64, reviewedBy string) error {
	payment, err := l.payments.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPaymentNotFound
		}
		return err
	}
	if payment.Status != models.PaymentStatusPending {
		return ErrAlreadyReviewed
	}

	now := l.now()
	updated, err := l.payments.MarkPaymentApproved(ctx, paymentID, reviewedBy, now)
	if err != nil {
		return err
	}
	if !updated {
		// Another reviewer got there first.
		return ErrAlreadyReviewed
	}

	entitlement := plan.Lookup(payment.PlanType)
	if err := l.employers.ActivateSubscription(ctx, payment.EmployerEmail, entitlement.ID, entitlement.BoostQuota, now.Add(Term)); err != nil {
		return err
	}

	message := fmt.Sprintf("Subscription Active: %s", strings.ToUpper(entitlement.ID))
	l.notifier.Send(ctx, payment.EmployerEmail, message, models.NotificationSuccess)
	l.notifier.SendEmail(payment.EmployerEmail, "Subscription Activated",
		fmt.Sprintf("<p>Your %s is now active. It expires on %s.</p>", entitlement.Name, now.Add(Term).Format("2 Jan 2006")))
	return nil
}

// DeclinePayment marks the payment declined with the reviewer's reason.
// The employer's current plan is untouched.
func (l *Lifecycle) DeclinePayment(ctx context.Context, paymentID int64, reviewedBy, reason string) error {
	payment, err := l.payments.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPaymentNotFound
		}
		return err
	}
	if payment.Status != models.PaymentStatusPending {
		return ErrAlreadyReviewed
	}

	updated, err := l.payments.MarkPaymentDeclined(ctx, paymentID, reviewedBy, reason, l.now())
	if err != nil {
		return err
	}
	if !updated {
		return ErrAlreadyReviewed
	}

	l.notifier.Send(ctx, payment.EmployerEmail, "Subscription Payment Declined", models.NotificationError)
	l.notifier.SendEmail(payment.EmployerEmail, "Payment Declined",
		fmt.Sprintf("<p>Your subscription payment was declined. Reason: %s</p>", reason))
	return nil
}

// Expire downgrades an employer whose subscription has lapsed. It is
// invoked only by the reconciler sweep. The free-tier cap is enforced
// retroactively: the newest free-quota jobs stay Active and the rest
// are closed, so a downgraded employer keeps their most recent posts.
func (l *Lifecycle) Expire(ctx context.Context, employerEmail string) error {
	if err := l.employers.DowngradeToFree(ctx, employerEmail); err != nil {
		return err
	}

	freeCap := plan.Lookup(plan.FreeTier).PostQuota
	closed, err := l.jobs.CloseJobsOverCap(ctx, employerEmail, freeCap)
	if err != nil {
		return err
	}
	if closed > 0 {
		l.logger.Info("closed excess jobs after downgrade",
			"employer", employerEmail, "closed", closed, "kept", freeCap)
	}

	l.notifier.Send(ctx, employerEmail, "Subscription expired. Downgraded to Free Plan.", models.NotificationWarning)
	l.notifier.SendEmail(employerEmail, "Subscription Expired",
		"<p>Your subscription has expired and your account is back on the Free Plan.</p>")
	return nil
}
