package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User defines the model for the 'users' table (students)
type User struct {
	ID           int64  `json:"id" db:"id"`
	FirstName    string `json:"firstName" db:"first_name"`
	LastName     string `json:"lastName" db:"last_name"`
	Email        string `json:"email" db:"email"`
	Phone        string `json:"phone" db:"phone"`
	DOB          string `json:"dob" db:"dob"`
	City         string `json:"city" db:"city"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         string `json:"role" db:"role"`

	// --- Profile Fields (Pointers = Clean JSON) ---
	ProfilePic     *string `json:"profilePic,omitempty" db:"profile_pic"`
	CVFile         *string `json:"cvFile,omitempty" db:"cv_file"`
	EducationLevel *string `json:"educationLevel,omitempty" db:"education_level"`

	// Email verification (OTP)
	IsEmailVerified bool       `json:"-" db:"is_email_verified"`
	OTPCode         *string    `json:"-" db:"otp_code"`
	OTPCreatedAt    *time.Time `json:"-" db:"otp_created_at"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Password Helper (Standard)
type Password struct {
	Plaintext *string
	Hash      string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	p.Plaintext = &plaintextPassword
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
