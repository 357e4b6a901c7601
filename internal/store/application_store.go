package store

import (
	"context"
	"time"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/models"
)

func (s *Store) CreateApplication(ctx context.Context, app *models.Application) (int64, error) {
	query := `
		INSERT INTO applications (job_id, student_email, cv_file, applied_at)
		VALUES (?, ?, ?, ?)`
	result, err := s.db.ExecContext(ctx, query, app.JobID, app.StudentEmail, app.CVFile, time.Now())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListApplicationsForEmployer returns every application across the
// employer's jobs, joined with the applicant's contact details.
func (s *Store) ListApplicationsForEmployer(ctx context.Context, employerEmail string) ([]*models.Application, error) {
	query := `
		SELECT a.id, a.job_id, a.student_email, a.cv_file, a.applied_at,
			u.first_name, u.last_name, u.phone, j.job_title
		FROM applications a
		JOIN jobs j ON a.job_id = j.id
		JOIN users u ON a.student_email = u.email
		WHERE j.employer_email = ?
		ORDER BY a.applied_at DESC`

	rows, err := s.db.QueryContext(ctx, query, employerEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		var a models.Application
		if err := rows.Scan(
			&a.ID, &a.JobID, &a.StudentEmail, &a.CVFile, &a.AppliedAt,
			&a.FirstName, &a.LastName, &a.Phone, &a.JobTitle,
		); err != nil {
			return nil, err
		}
		apps = append(apps, &a)
	}
	return apps, rows.Err()
}

// ListAppliedJobIDs returns the ids of jobs the student has applied to,
// so the frontend can grey out the apply button.
func (s *Store) ListAppliedJobIDs(ctx context.Context, studentEmail string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT job_id FROM applications WHERE student_email = ?`, studentEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CVRef points at one applicant's uploaded CV for the bulk download.
type CVRef struct {
	CVFile    string
	FirstName string
	LastName  string
}

// ListCVsForEmployer returns the CV references across the employer's
// jobs for the zip export.
func (s *Store) ListCVsForEmployer(ctx context.Context, employerEmail string) ([]CVRef, error) {
	query := `
		SELECT a.cv_file, u.first_name, u.last_name
		FROM applications a
		JOIN jobs j ON a.job_id = j.id
		JOIN users u ON a.student_email = u.email
		WHERE j.employer_email = ?`

	rows, err := s.db.QueryContext(ctx, query, employerEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []CVRef
	for rows.Next() {
		var ref CVRef
		if err := rows.Scan(&ref.CVFile, &ref.FirstName, &ref.LastName); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
