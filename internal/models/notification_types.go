package models

import "time"

// Notification types control how the frontend renders the toast/badge.
const (
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationWarning = "warning"
	NotificationError   = "error"
)

// Notification defines the model for the 'notifications' table
type Notification struct {
	ID        int64     `json:"id" db:"id"`
	UserEmail string    `json:"userEmail" db:"user_email"`
	Message   string    `json:"message" db:"message"`
	Type      string    `json:"type" db:"type"`
	IsRead    bool      `json:"isRead" db:"is_read"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
