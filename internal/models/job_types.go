package models

import "time"

// Job lifecycle states. A Closed job never goes back to Active
// automatically; only an employer edit can reopen it.
const (
	JobStatusActive = "Active"
	JobStatusClosed = "Closed"
)

// Job defines the model for the 'jobs' table
type Job struct {
	ID            int64   `json:"id" db:"id"`
	EmployerEmail string  `json:"employerEmail" db:"employer_email"`
	CompanyName   string  `json:"companyName" db:"company_name"`
	JobTitle      string  `json:"jobTitle" db:"job_title"`
	Location      string  `json:"location" db:"location"`
	Schedule      string  `json:"schedule" db:"schedule"`
	HoursPerDay   int     `json:"hoursPerDay" db:"hours_per_day"`
	PayAmount     float64 `json:"payAmount" db:"pay_amount"`
	PayFrequency  string  `json:"payFrequency" db:"pay_frequency"`
	Description   string  `json:"description" db:"description"`
	Category      string  `json:"category" db:"category"`

	// Boost state. PromotedAt is set when a boost is spent on this job
	// and is what the reconciler uses to expire the boost after 10 days.
	IsPremium  bool       `json:"isPremium" db:"is_premium"`
	PromotedAt *time.Time `json:"promotedAt,omitempty" db:"promoted_at"`

	Status     string    `json:"status" db:"status"`
	Deadline   time.Time `json:"deadline" db:"deadline"`
	JobImages  string    `json:"jobImages" db:"job_images"`
	PostedDate time.Time `json:"postedDate" db:"posted_date"`

	// These fields are not in the 'jobs' table, but are populated
	// by the public listing JOIN for the browse view.
	EmployerVerified *int    `json:"employerVerified,omitempty" db:"-"`
	EmployerLogo     *string `json:"employerLogo,omitempty" db:"-"`
}
