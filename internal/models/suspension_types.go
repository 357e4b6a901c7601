package models

import "time"

// SuspendedUser defines the model for the 'suspended_users' table.
// Rows here permanently block the email from re-registering.
type SuspendedUser struct {
	ID          int64     `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	Name        string    `json:"name" db:"name"`
	Reason      string    `json:"reason" db:"reason"`
	ProofFiles  string    `json:"proofFiles" db:"proof_files"`
	SuspendedAt time.Time `json:"suspendedAt" db:"suspended_at"`
}
