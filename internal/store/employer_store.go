package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/models"
	"github.com/studentworkhubofficial/studentworkhub-backend/internal/plan"
)

// employerColumns is the full column list scanned by scanEmployer.
const employerColumns = `
	id, company_name, br_number, industry, address, city, email, phone,
	password_hash, role, logo, br_certificate, is_email_verified,
	otp_code, otp_created_at, is_address_verified, verified_by,
	rejection_reason, verification_methods, current_plan,
	subscription_expires_at, boosts_remaining, created_at`

func scanEmployer(row interface{ Scan(...any) error }) (*models.Employer, error) {
	var emp models.Employer
	err := row.Scan(
		&emp.ID,
		&emp.CompanyName,
		&emp.BRNumber,
		&emp.Industry,
		&emp.Address,
		&emp.City,
		&emp.Email,
		&emp.Phone,
		&emp.PasswordHash,
		&emp.Role,
		&emp.Logo,
		&emp.BRCertificate,
		&emp.IsEmailVerified,
		&emp.OTPCode,
		&emp.OTPCreatedAt,
		&emp.VerificationStatus,
		&emp.VerifiedBy,
		&emp.RejectionReason,
		&emp.VerificationMethods,
		&emp.CurrentPlan,
		&emp.SubscriptionExpiresAt,
		&emp.BoostsRemaining,
		&emp.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &emp, nil
}

// CreateEmployer inserts a freshly registered employer. New accounts
// start unverified on the free plan with no boosts.
func (s *Store) CreateEmployer(ctx context.Context, emp *models.Employer) (int64, error) {
	query := `
		INSERT INTO employers
		(company_name, br_number, industry, address, city, email, phone,
		 password_hash, role, br_certificate, otp_code, otp_created_at,
		 current_plan, boosts_remaining, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'employer', ?, ?, ?, ?, 0, ?)`

	result, err := s.db.ExecContext(ctx, query,
		emp.CompanyName, emp.BRNumber, emp.Industry, emp.Address, emp.City,
		emp.Email, emp.Phone, emp.PasswordHash, emp.BRCertificate,
		emp.OTPCode, emp.OTPCreatedAt, plan.FreeTier, time.Now())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *Store) GetEmployerByEmail(ctx context.Context, email string) (*models.Employer, error) {
	query := `SELECT` + employerColumns + ` FROM employers WHERE email = ?`
	return scanEmployer(s.db.QueryRowContext(ctx, query, email))
}

func (s *Store) GetEmployerByID(ctx context.Context, id int64) (*models.Employer, error) {
	query := `SELECT` + employerColumns + ` FROM employers WHERE id = ?`
	return scanEmployer(s.db.QueryRowContext(ctx, query, id))
}

// ListEmployersByVerification returns employers in one verification
// state for the admin dashboard.
func (s *Store) ListEmployersByVerification(ctx context.Context, status int) ([]*models.Employer, error) {
	query := `SELECT` + employerColumns + ` FROM employers WHERE is_address_verified = ? ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employers []*models.Employer
	for rows.Next() {
		emp, err := scanEmployer(rows)
		if err != nil {
			return nil, err
		}
		employers = append(employers, emp)
	}
	return employers, rows.Err()
}

// VerifyEmployer marks the account address-verified.
func (s *Store) VerifyEmployer(ctx context.Context, id int64, verifiedBy, methods string) error {
	query := `
		UPDATE employers
		SET is_address_verified = ?, verified_by = ?, verification_methods = ?
		WHERE id = ?`
	return s.execExpectingRow(ctx, query, models.VerificationVerified, verifiedBy, methods, id)
}

// DeclineEmployer marks the account declined with the admin's reason.
func (s *Store) DeclineEmployer(ctx context.Context, id int64, verifiedBy, reason string) error {
	query := `
		UPDATE employers
		SET is_address_verified = ?, verified_by = ?, rejection_reason = ?
		WHERE id = ?`
	return s.execExpectingRow(ctx, query, models.VerificationDeclined, verifiedBy, reason, id)
}

// ActivateSubscription switches the employer onto a paid plan. The
// boost counter is overwritten with the plan's allowance, never added
// to, so back-to-back approvals cannot stack boosts.
func (s *Store) ActivateSubscription(ctx context.Context, email, planType string, boosts int, expiresAt time.Time) error {
	query := `
		UPDATE employers
		SET current_plan = ?, boosts_remaining = ?, subscription_expires_at = ?
		WHERE email = ?`
	return s.execExpectingRow(ctx, query, planType, boosts, expiresAt, email)
}

// DowngradeToFree resets the subscription state in one update.
func (s *Store) DowngradeToFree(ctx context.Context, email string) error {
	query := `
		UPDATE employers
		SET current_plan = ?, boosts_remaining = 0, subscription_expires_at = NULL
		WHERE email = ?`
	return s.execExpectingRow(ctx, query, plan.FreeTier, email)
}

// DecrementBoosts takes one boost atomically. The WHERE clause is the
// guard: the counter can never go below zero no matter how many
// requests race on it. Returns false when no boost was available.
func (s *Store) DecrementBoosts(ctx context.Context, email string) (bool, error) {
	query := `
		UPDATE employers
		SET boosts_remaining = boosts_remaining - 1
		WHERE email = ? AND boosts_remaining > 0`

	result, err := s.db.ExecContext(ctx, query, email)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListExpiredSubscriptions returns employers on a paid plan whose
// subscription lapsed before now.
func (s *Store) ListExpiredSubscriptions(ctx context.Context, now time.Time) ([]string, error) {
	query := `
		SELECT email FROM employers
		WHERE subscription_expires_at IS NOT NULL
		  AND subscription_expires_at < ?
		  AND current_plan != ?`

	rows, err := s.db.QueryContext(ctx, query, now, plan.FreeTier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// UpdateEmployerProfile updates the editable contact fields. A nil
// logo leaves the current logo untouched.
func (s *Store) UpdateEmployerProfile(ctx context.Context, email, address, city, phone string, logo *string) error {
	if logo != nil {
		query := `UPDATE employers SET address = ?, city = ?, phone = ?, logo = ? WHERE email = ?`
		return s.execExpectingRow(ctx, query, address, city, phone, *logo, email)
	}
	query := `UPDATE employers SET address = ?, city = ?, phone = ? WHERE email = ?`
	return s.execExpectingRow(ctx, query, address, city, phone, email)
}

// DeleteEmployer removes the employer and all of their jobs.
func (s *Store) DeleteEmployer(ctx context.Context, id int64) error {
	emp, err := s.GetEmployerByID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE employer_email = ?`, emp.Email); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM employers WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// execExpectingRow runs an UPDATE that must touch exactly one row and
// converts "nothing matched" into ErrNotFound.
func (s *Store) execExpectingRow(ctx context.Context, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
