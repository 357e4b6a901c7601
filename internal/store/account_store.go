package store

import (
	"context"
	"database/sql"
	"time"
)

// AccountRole selects which account table an OTP or credential
// operation targets. Students and employers live in different tables;
// the role is an explicit enum and each implementation carries its own
// query text, so table names are never interpolated from request data.
type AccountRole int

const (
	RoleStudent AccountRole = iota
	RoleEmployer
)

// ParseAccountRole maps the wire-level role string to the enum.
func ParseAccountRole(role string) (AccountRole, bool) {
	switch role {
	case "student":
		return RoleStudent, true
	case "employer":
		return RoleEmployer, true
	}
	return 0, false
}

// OTPState is the verification snapshot shared by both account kinds.
type OTPState struct {
	Code      *string
	CreatedAt *time.Time
	Verified  bool
}

// AccountStore is the role-polymorphic surface for the OTP and
// email-change flows.
type AccountStore interface {
	GetOTPState(ctx context.Context, email string) (*OTPState, error)
	SetOTP(ctx context.Context, email, code string, createdAt time.Time) error
	MarkEmailVerified(ctx context.Context, email string) error
	GetPasswordHash(ctx context.Context, email string) (string, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	// ChangeEmail moves the account to a new address and resets
	// verification so the new address must confirm a fresh OTP.
	ChangeEmail(ctx context.Context, oldEmail, newEmail, otpCode string, otpCreatedAt time.Time) error
	// DeleteUnverified removes a stale half-registered row so the
	// email can register again.
	DeleteUnverified(ctx context.Context, email string) error
}

// Accounts returns the store for one account role.
func (s *Store) Accounts(role AccountRole) AccountStore {
	if role == RoleEmployer {
		return employerAccounts{db: s.db}
	}
	return studentAccounts{db: s.db}
}

//
// --- Student accounts ('users' table) ---
//

type studentAccounts struct {
	db *sql.DB
}

func (a studentAccounts) GetOTPState(ctx context.Context, email string) (*OTPState, error) {
	var st OTPState
	err := a.db.QueryRowContext(ctx,
		`SELECT otp_code, otp_created_at, is_email_verified FROM users WHERE email = ?`,
		email).Scan(&st.Code, &st.CreatedAt, &st.Verified)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}

func (a studentAccounts) SetOTP(ctx context.Context, email, code string, createdAt time.Time) error {
	return execOne(ctx, a.db,
		`UPDATE users SET otp_code = ?, otp_created_at = ? WHERE email = ?`,
		code, createdAt, email)
}

func (a studentAccounts) MarkEmailVerified(ctx context.Context, email string) error {
	return execOne(ctx, a.db,
		`UPDATE users SET is_email_verified = 1, otp_code = NULL WHERE email = ?`, email)
}

func (a studentAccounts) GetPasswordHash(ctx context.Context, email string) (string, error) {
	var hash string
	err := a.db.QueryRowContext(ctx,
		`SELECT password_hash FROM users WHERE email = ?`, email).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return hash, err
}

func (a studentAccounts) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	err := a.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&count)
	return count > 0, err
}

func (a studentAccounts) ChangeEmail(ctx context.Context, oldEmail, newEmail, otpCode string, otpCreatedAt time.Time) error {
	return execOne(ctx, a.db,
		`UPDATE users SET email = ?, otp_code = ?, otp_created_at = ?, is_email_verified = 0 WHERE email = ?`,
		newEmail, otpCode, otpCreatedAt, oldEmail)
}

func (a studentAccounts) DeleteUnverified(ctx context.Context, email string) error {
	_, err := a.db.ExecContext(ctx,
		`DELETE FROM users WHERE email = ? AND is_email_verified = 0`, email)
	return err
}

//
// --- Employer accounts ('employers' table) ---
//

type employerAccounts struct {
	db *sql.DB
}

func (a employerAccounts) GetOTPState(ctx context.Context, email string) (*OTPState, error) {
	var st OTPState
	err := a.db.QueryRowContext(ctx,
		`SELECT otp_code, otp_created_at, is_email_verified FROM employers WHERE email = ?`,
		email).Scan(&st.Code, &st.CreatedAt, &st.Verified)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}

func (a employerAccounts) SetOTP(ctx context.Context, email, code string, createdAt time.Time) error {
	return execOne(ctx, a.db,
		`UPDATE employers SET otp_code = ?, otp_created_at = ? WHERE email = ?`,
		code, createdAt, email)
}

func (a employerAccounts) MarkEmailVerified(ctx context.Context, email string) error {
	return execOne(ctx, a.db,
		`UPDATE employers SET is_email_verified = 1, otp_code = NULL WHERE email = ?`, email)
}

func (a employerAccounts) GetPasswordHash(ctx context.Context, email string) (string, error) {
	var hash string
	err := a.db.QueryRowContext(ctx,
		`SELECT password_hash FROM employers WHERE email = ?`, email).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return hash, err
}

func (a employerAccounts) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	err := a.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM employers WHERE email = ?`, email).Scan(&count)
	return count > 0, err
}

func (a employerAccounts) ChangeEmail(ctx context.Context, oldEmail, newEmail, otpCode string, otpCreatedAt time.Time) error {
	return execOne(ctx, a.db,
		`UPDATE employers SET email = ?, otp_code = ?, otp_created_at = ?, is_email_verified = 0 WHERE email = ?`,
		newEmail, otpCode, otpCreatedAt, oldEmail)
}

func (a employerAccounts) DeleteUnverified(ctx context.Context, email string) error {
	_, err := a.db.ExecContext(ctx,
		`DELETE FROM employers WHERE email = ? AND is_email_verified = 0`, email)
	return err
}

// execOne runs an UPDATE that must touch a row, mapping a zero-row
// result to ErrNotFound.
func execOne(ctx context.Context, db *sql.DB, query string, args ...any) error {
	result, err := db.ExecContext(ctx, query, args...)
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
