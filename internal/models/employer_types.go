package models

import "time"

// Verification states for an employer account. Admins move accounts
// from Pending to Verified or Declined after reviewing the BR documents.
const (
	VerificationPending  = 0
	VerificationVerified = 1
	VerificationDeclined = 2
)

// Employer defines the model for the 'employers' table
type Employer struct {
	ID           int64  `json:"id" db:"id"`
	CompanyName  string `json:"companyName" db:"company_name"`
	BRNumber     string `json:"brNumber" db:"br_number"`
	Industry     string `json:"industry" db:"industry"`
	Address      string `json:"address" db:"address"`
	City         string `json:"city" db:"city"`
	Email        string `json:"email" db:"email"`
	Phone        string `json:"phone" db:"phone"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         string `json:"role" db:"role"`

	// --- Profile Fields (Pointers = Clean JSON) ---
	Logo          *string `json:"logo,omitempty" db:"logo"`
	BRCertificate *string `json:"brCertificate,omitempty" db:"br_certificate"`

	// Email verification (OTP)
	IsEmailVerified bool       `json:"-" db:"is_email_verified"`
	OTPCode         *string    `json:"-" db:"otp_code"`
	OTPCreatedAt    *time.Time `json:"-" db:"otp_created_at"`

	// Admin address verification
	VerificationStatus  int     `json:"isVerified" db:"is_address_verified"`
	VerifiedBy          *string `json:"verifiedBy,omitempty" db:"verified_by"`
	RejectionReason     *string `json:"rejectionReason,omitempty" db:"rejection_reason"`
	VerificationMethods *string `json:"verificationMethods,omitempty" db:"verification_methods"`

	// Subscription state. BoostsRemaining is a real counter, consumed one
	// boost at a time. The remaining job-post count is NOT stored here;
	// it is always derived from the plan quota and the live Active count.
	CurrentPlan           string     `json:"currentPlan" db:"current_plan"`
	SubscriptionExpiresAt *time.Time `json:"subscriptionExpiresAt,omitempty" db:"subscription_expires_at"`
	BoostsRemaining       int        `json:"boostsRemaining" db:"boosts_remaining"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
