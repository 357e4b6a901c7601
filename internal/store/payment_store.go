package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/models"
)

const paymentColumns = `
	id, employer_email, plan_type, amount, receipt_url, status,
	submitted_at, reviewed_by, reviewed_at, decline_reason`

func scanPayment(row interface{ Scan(...any) error }) (*models.SubscriptionPayment, error) {
	var p models.SubscriptionPayment
	err := row.Scan(
		&p.ID,
		&p.EmployerEmail,
		&p.PlanType,
		&p.Amount,
		&p.ReceiptURL,
		&p.Status,
		&p.SubmittedAt,
		&p.ReviewedBy,
		&p.ReviewedAt,
		&p.DeclineReason,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreatePayment(ctx context.Context, p *models.SubscriptionPayment) (int64, error) {
	query := `
		INSERT INTO subscription_payments
		(employer_email, plan_type, amount, receipt_url, status, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		p.EmployerEmail, p.PlanType, p.Amount, p.ReceiptURL, p.Status, p.SubmittedAt)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *Store) GetPayment(ctx context.Context, id int64) (*models.SubscriptionPayment, error) {
	query := `SELECT` + paymentColumns + ` FROM subscription_payments WHERE id = ?`
	return scanPayment(s.db.QueryRowContext(ctx, query, id))
}

// GetPendingPayment returns the employer's payment awaiting review, or
// ErrNotFound when there is none. At most one can exist at a time.
func (s *Store) GetPendingPayment(ctx context.Context, employerEmail string) (*models.SubscriptionPayment, error) {
	query := `SELECT` + paymentColumns + `
		FROM subscription_payments
		WHERE employer_email = ? AND status = ?
		ORDER BY submitted_at DESC
		LIMIT 1`
	return scanPayment(s.db.QueryRowContext(ctx, query, employerEmail, models.PaymentStatusPending))
}

// MarkPaymentApproved flips a pending payment to approved. The status
// guard in the WHERE clause makes the review terminal: two racing
// reviewers cannot both succeed. Returns whether this call won.
func (s *Store) MarkPaymentApproved(ctx context.Context, id int64, reviewedBy string, reviewedAt time.Time) (bool, error) {
	query := `
		UPDATE subscription_payments
		SET status = ?, reviewed_by = ?, reviewed_at = ?
		WHERE id = ? AND status = ?`

	result, err := s.db.ExecContext(ctx, query,
		models.PaymentStatusApproved, reviewedBy, reviewedAt, id, models.PaymentStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// MarkPaymentDeclined flips a pending payment to declined with the
// reviewer's reason, under the same status guard.
func (s *Store) MarkPaymentDeclined(ctx context.Context, id int64, reviewedBy, reason string, reviewedAt time.Time) (bool, error) {
	query := `
		UPDATE subscription_payments
		SET status = ?, reviewed_by = ?, decline_reason = ?, reviewed_at = ?
		WHERE id = ? AND status = ?`

	result, err := s.db.ExecContext(ctx, query,
		models.PaymentStatusDeclined, reviewedBy, reason, reviewedAt, id, models.PaymentStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListPayments returns every payment for the admin review queue,
// newest submissions first, with the employer's company name attached.
func (s *Store) ListPayments(ctx context.Context) ([]*models.SubscriptionPayment, error) {
	query := `
		SELECT sp.id, sp.employer_email, sp.plan_type, sp.amount,
			sp.receipt_url, sp.status, sp.submitted_at, sp.reviewed_by,
			sp.reviewed_at, sp.decline_reason, COALESCE(e.company_name, '')
		FROM subscription_payments sp
		LEFT JOIN employers e ON sp.employer_email = e.email
		ORDER BY sp.submitted_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.SubscriptionPayment
	for rows.Next() {
		var p models.SubscriptionPayment
		if err := rows.Scan(
			&p.ID, &p.EmployerEmail, &p.PlanType, &p.Amount, &p.ReceiptURL,
			&p.Status, &p.SubmittedAt, &p.ReviewedBy, &p.ReviewedAt,
			&p.DeclineReason, &p.CompanyName,
		); err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}
