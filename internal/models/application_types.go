package models

import "time"

// Application defines the model for the 'applications' table
type Application struct {
	ID           int64     `json:"id" db:"id"`
	JobID        int64     `json:"jobId" db:"job_id"`
	StudentEmail string    `json:"studentEmail" db:"student_email"`
	CVFile       string    `json:"cvFile" db:"cv_file"`
	AppliedAt    time.Time `json:"appliedAt" db:"applied_at"`

	// Populated by the employer listing JOIN for the review view.
	FirstName string `json:"firstName,omitempty" db:"-"`
	LastName  string `json:"lastName,omitempty" db:"-"`
	Phone     string `json:"phone,omitempty" db:"-"`
	JobTitle  string `json:"jobTitle,omitempty" db:"-"`
}
