package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/models"
)

const userColumns = `
	id, first_name, last_name, email, phone, dob, city, password_hash,
	role, profile_pic, cv_file, education_level, is_email_verified,
	otp_code, otp_created_at, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.Phone,
		&u.DOB,
		&u.City,
		&u.PasswordHash,
		&u.Role,
		&u.ProfilePic,
		&u.CVFile,
		&u.EducationLevel,
		&u.IsEmailVerified,
		&u.OTPCode,
		&u.OTPCreatedAt,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	query := `
		INSERT INTO users
		(first_name, last_name, email, phone, dob, city, password_hash,
		 role, otp_code, otp_created_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 'student', ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		u.FirstName, u.LastName, u.Email, u.Phone, u.DOB, u.City,
		u.PasswordHash, u.OTPCode, u.OTPCreatedAt, time.Now())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(s.db.QueryRowContext(ctx, query, email))
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *Store) ListUsers(ctx context.Context) ([]*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.execExpectingRow(ctx, `DELETE FROM users WHERE id = ?`, id)
}

// UpdateUserProfile updates the editable profile fields. Nil file
// pointers leave the stored values untouched.
func (s *Store) UpdateUserProfile(ctx context.Context, email, firstName, lastName, phone, dob, city, educationLevel string, profilePic, cvFile *string) error {
	query := `
		UPDATE users
		SET first_name = ?, last_name = ?, phone = ?, dob = ?, city = ?,
			education_level = ?`
	args := []any{firstName, lastName, phone, dob, city, educationLevel}

	if profilePic != nil {
		query += `, profile_pic = ?`
		args = append(args, *profilePic)
	}
	if cvFile != nil {
		query += `, cv_file = ?`
		args = append(args, *cvFile)
	}
	query += ` WHERE email = ?`
	args = append(args, email)

	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *Store) ClearUserPhoto(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET profile_pic = NULL WHERE email = ?`, email)
	return err
}

func (s *Store) ClearUserCV(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET cv_file = NULL WHERE email = ?`, email)
	return err
}

// SuspendUser moves a student into suspended_users and deletes their
// account in one transaction. The email is blocked from re-registering
// for as long as the suspended row exists.
func (s *Store) SuspendUser(ctx context.Context, userID int64, reason, proofFiles string) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO suspended_users (email, name, reason, proof_files, suspended_at)
		VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insert,
		user.Email, user.FirstName+" "+user.LastName, reason, proofFiles, time.Now()); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return user, nil
}

// IsSuspended reports whether the email is permanently blocked.
func (s *Store) IsSuspended(ctx context.Context, email string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM suspended_users WHERE email = ?`, email).Scan(&count)
	return count > 0, err
}

// ListSuspended returns the suspension log, newest first.
func (s *Store) ListSuspended(ctx context.Context) ([]*models.SuspendedUser, error) {
	query := `
		SELECT id, email, name, reason, proof_files, suspended_at
		FROM suspended_users
		ORDER BY suspended_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suspended []*models.SuspendedUser
	for rows.Next() {
		var su models.SuspendedUser
		if err := rows.Scan(&su.ID, &su.Email, &su.Name, &su.Reason, &su.ProofFiles, &su.SuspendedAt); err != nil {
			return nil, err
		}
		suspended = append(suspended, &su)
	}
	return suspended, rows.Err()
}
