package store

import "context"

// schema is the minimal table set the server needs. Statements are
// idempotent so startup is safe against an already-provisioned
// database.
//
// Note: employers has no job_posts_remaining column. Remaining post
// capacity is always derived from the plan quota and the live Active
// count; a stored counter drifted in an earlier schema and was dropped.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		phone VARCHAR(20) NOT NULL,
		dob VARCHAR(20) NOT NULL DEFAULT '',
		city VARCHAR(100) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'student',
		profile_pic VARCHAR(500),
		cv_file VARCHAR(500),
		education_level VARCHAR(100),
		is_email_verified TINYINT NOT NULL DEFAULT 0,
		otp_code VARCHAR(10),
		otp_created_at DATETIME,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS employers (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		company_name VARCHAR(255) NOT NULL,
		br_number VARCHAR(100) NOT NULL,
		industry VARCHAR(100) NOT NULL DEFAULT '',
		address TEXT NOT NULL,
		city VARCHAR(100) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL UNIQUE,
		phone VARCHAR(20) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'employer',
		logo VARCHAR(500),
		br_certificate VARCHAR(500),
		is_email_verified TINYINT NOT NULL DEFAULT 0,
		otp_code VARCHAR(10),
		otp_created_at DATETIME,
		is_address_verified TINYINT NOT NULL DEFAULT 0,
		verified_by VARCHAR(100),
		rejection_reason TEXT,
		verification_methods TEXT,
		current_plan VARCHAR(50) NOT NULL DEFAULT 'free',
		subscription_expires_at DATETIME,
		boosts_remaining INT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		employer_email VARCHAR(255) NOT NULL,
		company_name VARCHAR(255) NOT NULL,
		job_title VARCHAR(255) NOT NULL,
		location VARCHAR(255) NOT NULL DEFAULT '',
		schedule VARCHAR(100) NOT NULL DEFAULT '',
		hours_per_day INT NOT NULL DEFAULT 1,
		pay_amount DECIMAL(10,2) NOT NULL DEFAULT 0,
		pay_frequency VARCHAR(50) NOT NULL DEFAULT '',
		description TEXT NOT NULL,
		category VARCHAR(100) NOT NULL DEFAULT '',
		is_premium TINYINT NOT NULL DEFAULT 0,
		promoted_at DATETIME,
		status VARCHAR(50) NOT NULL DEFAULT 'Active',
		deadline DATETIME NOT NULL,
		job_images TEXT,
		posted_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_jobs_employer_status (employer_email, status)
	)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		job_id BIGINT NOT NULL,
		student_email VARCHAR(255) NOT NULL,
		cv_file VARCHAR(500) NOT NULL,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_email VARCHAR(255) NOT NULL,
		message TEXT NOT NULL,
		type VARCHAR(50) NOT NULL DEFAULT 'info',
		is_read TINYINT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_notifications_user (user_email)
	)`,
	`CREATE TABLE IF NOT EXISTS subscription_payments (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		employer_email VARCHAR(255) NOT NULL,
		plan_type VARCHAR(50) NOT NULL,
		amount DECIMAL(10,2) NOT NULL DEFAULT 0,
		receipt_url VARCHAR(500) NOT NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'pending',
		submitted_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		reviewed_by VARCHAR(100),
		reviewed_at DATETIME,
		decline_reason TEXT,
		INDEX idx_payments_employer_status (employer_email, status)
	)`,
	`CREATE TABLE IF NOT EXISTS suspended_users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL,
		reason TEXT NOT NULL,
		proof_files TEXT,
		suspended_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// EnsureSchema creates any missing tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
