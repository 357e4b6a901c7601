package models

import "time"

// Review states for a subscription payment. A payment is terminal once
// approved or declined; it is never reopened.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusDeclined = "declined"
)

// SubscriptionPayment defines the model for the 'subscription_payments' table.
// It is a pending claim by an employer to move to a target plan, reviewed
// manually by an admin against the uploaded bank receipt.
type SubscriptionPayment struct {
	ID            int64     `json:"id" db:"id"`
	EmployerEmail string    `json:"employerEmail" db:"employer_email"`
	PlanType      string    `json:"planType" db:"plan_type"`
	Amount        float64   `json:"amount" db:"amount"`
	ReceiptURL    string    `json:"receiptUrl" db:"receipt_url"`
	Status        string    `json:"status" db:"status"`
	SubmittedAt   time.Time `json:"submittedAt" db:"submitted_at"`

	ReviewedBy    *string    `json:"reviewedBy,omitempty" db:"reviewed_by"`
	ReviewedAt    *time.Time `json:"reviewedAt,omitempty" db:"reviewed_at"`
	DeclineReason *string    `json:"declineReason,omitempty" db:"decline_reason"`

	// Populated by the admin listing JOIN, not stored on this table.
	CompanyName string `json:"companyName,omitempty" db:"-"`
}
