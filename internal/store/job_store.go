package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/models"
)

const jobColumns = `
	id, employer_email, company_name, job_title, location, schedule,
	hours_per_day, pay_amount, pay_frequency, description, category,
	is_premium, promoted_at, status, deadline, job_images, posted_date`

func scanJob(row interface{ Scan(...any) error }) (*models.Job, error) {
	var job models.Job
	err := row.Scan(
		&job.ID,
		&job.EmployerEmail,
		&job.CompanyName,
		&job.JobTitle,
		&job.Location,
		&job.Schedule,
		&job.HoursPerDay,
		&job.PayAmount,
		&job.PayFrequency,
		&job.Description,
		&job.Category,
		&job.IsPremium,
		&job.PromotedAt,
		&job.Status,
		&job.Deadline,
		&job.JobImages,
		&job.PostedDate,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (s *Store) CreateJob(ctx context.Context, job *models.Job) (int64, error) {
	query := `
		INSERT INTO jobs
		(employer_email, company_name, job_title, location, schedule,
		 hours_per_day, pay_amount, pay_frequency, description, category,
		 is_premium, promoted_at, status, deadline, job_images, posted_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		job.EmployerEmail, job.CompanyName, job.JobTitle, job.Location,
		job.Schedule, job.HoursPerDay, job.PayAmount, job.PayFrequency,
		job.Description, job.Category, job.IsPremium, job.PromotedAt,
		job.Status, job.Deadline, job.JobImages, job.PostedDate)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *Store) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	query := `SELECT` + jobColumns + ` FROM jobs WHERE id = ?`
	return scanJob(s.db.QueryRowContext(ctx, query, id))
}

// CountActiveJobs is the live count the quota engine derives remaining
// capacity from. There is deliberately no cached counter.
func (s *Store) CountActiveJobs(ctx context.Context, employerEmail string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM jobs WHERE employer_email = ? AND status = ?`
	err := s.db.QueryRowContext(ctx, query, employerEmail, models.JobStatusActive).Scan(&count)
	return count, err
}

// ListJobs returns the public browse listing: Active before Closed,
// premium first, then newest. The JOIN pulls the employer's badge data.
func (s *Store) ListJobs(ctx context.Context) ([]*models.Job, error) {
	query := `
		SELECT j.id, j.employer_email, j.company_name, j.job_title,
			j.location, j.schedule, j.hours_per_day, j.pay_amount,
			j.pay_frequency, j.description, j.category, j.is_premium,
			j.promoted_at, j.status, j.deadline, j.job_images, j.posted_date,
			e.is_address_verified, e.logo
		FROM jobs j
		LEFT JOIN employers e ON j.employer_email = e.email
		ORDER BY CASE WHEN j.status = 'Active' THEN 1 ELSE 2 END,
			j.is_premium DESC, j.posted_date DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		var job models.Job
		if err := rows.Scan(
			&job.ID, &job.EmployerEmail, &job.CompanyName, &job.JobTitle,
			&job.Location, &job.Schedule, &job.HoursPerDay, &job.PayAmount,
			&job.PayFrequency, &job.Description, &job.Category,
			&job.IsPremium, &job.PromotedAt, &job.Status, &job.Deadline,
			&job.JobImages, &job.PostedDate,
			&job.EmployerVerified, &job.EmployerLogo,
		); err != nil {
			return nil, err
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

// ListJobsByEmployer returns an employer's own jobs, newest first.
func (s *Store) ListJobsByEmployer(ctx context.Context, employerEmail string) ([]*models.Job, error) {
	query := `SELECT` + jobColumns + ` FROM jobs WHERE employer_email = ? ORDER BY posted_date DESC`
	rows, err := s.db.QueryContext(ctx, query, employerEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// UpdateJob overwrites the editable fields. Images are replaced only
// when a new value is supplied.
func (s *Store) UpdateJob(ctx context.Context, job *models.Job, replaceImages bool) error {
	query := `
		UPDATE jobs
		SET job_title = ?, location = ?, schedule = ?, hours_per_day = ?,
			pay_amount = ?, pay_frequency = ?, description = ?, category = ?,
			status = ?, deadline = ?`
	args := []any{
		job.JobTitle, job.Location, job.Schedule, job.HoursPerDay,
		job.PayAmount, job.PayFrequency, job.Description, job.Category,
		job.Status, job.Deadline,
	}
	if replaceImages {
		query += `, job_images = ?`
		args = append(args, job.JobImages)
	}
	query += ` WHERE id = ?`
	args = append(args, job.ID)

	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *Store) DeleteJob(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	return err
}

// PromoteJob stamps the boost onto the job. The boost counter is
// decremented separately by the guard before this runs.
func (s *Store) PromoteJob(ctx context.Context, id int64, promotedAt time.Time) error {
	query := `UPDATE jobs SET is_premium = 1, promoted_at = ? WHERE id = ?`
	return s.execExpectingRow(ctx, query, promotedAt, id)
}

// CloseJobsOverCap closes the employer's Active jobs beyond the cap,
// keeping the newest by posted date. The ordering is the whole policy:
// a downgraded employer keeps their most recent posts, not their
// oldest.
func (s *Store) CloseJobsOverCap(ctx context.Context, employerEmail string, keep int) (int, error) {
	query := `
		SELECT id FROM jobs
		WHERE employer_email = ? AND status = ?
		ORDER BY posted_date DESC`

	rows, err := s.db.QueryContext(ctx, query, employerEmail, models.JobStatusActive)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	if len(ids) <= keep {
		return 0, nil
	}

	closed := 0
	for _, id := range ids[keep:] {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE jobs SET status = ? WHERE id = ?`, models.JobStatusClosed, id); err != nil {
			return closed, err
		}
		closed++
	}
	return closed, nil
}

// CloseExpiredJobs closes every Active job whose deadline has passed.
func (s *Store) CloseExpiredJobs(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE jobs SET status = ? WHERE status = ? AND deadline < ?`
	result, err := s.db.ExecContext(ctx, query, models.JobStatusClosed, models.JobStatusActive, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ExpireStaleBoosts clears the premium flag on jobs promoted before the
// cutoff. Boost expiry is independent of the job's lifecycle status.
func (s *Store) ExpireStaleBoosts(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `UPDATE jobs SET is_premium = 0 WHERE is_premium = 1 AND promoted_at < ?`
	result, err := s.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteJobsByEmployer removes all of an employer's jobs.
func (s *Store) DeleteJobsByEmployer(ctx context.Context, employerEmail string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE employer_email = ?`, employerEmail)
	return err
}
