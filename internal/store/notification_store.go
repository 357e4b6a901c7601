package store

import (
	"context"
	"time"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/models"
)

// AddNotification writes one in-app notification row.
func (s *Store) AddNotification(ctx context.Context, userEmail, message, notifType string) error {
	query := `
		INSERT INTO notifications (user_email, message, type, is_read, created_at)
		VALUES (?, ?, ?, 0, ?)`
	_, err := s.db.ExecContext(ctx, query, userEmail, message, notifType, time.Now())
	return err
}

// ListNotifications returns a user's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, userEmail string) ([]*models.Notification, error) {
	query := `
		SELECT id, user_email, message, type, is_read, created_at
		FROM notifications
		WHERE user_email = ?
		ORDER BY created_at DESC
		LIMIT 50`

	rows, err := s.db.QueryContext(ctx, query, userEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserEmail, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flags one notification as read.
func (s *Store) MarkNotificationRead(ctx context.Context, id int64) error {
	return s.execExpectingRow(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
}
