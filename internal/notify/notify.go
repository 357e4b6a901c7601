// Package notify fans a single event out to the in-app notification
// table and email. Everything here is best-effort: failures are logged
// and swallowed so a dead mailer or a bad insert can never fail the
// operation that triggered it.
package notify

import (
	"context"
	"log/slog"

	"github.com/studentworkhubofficial/studentworkhub-backend/internal/email"
)

// RowWriter writes in-app notification rows. Satisfied by *store.Store.
type RowWriter interface {
	AddNotification(ctx context.Context, userEmail, message, notifType string) error
}

// Notifier is the single outbound channel for user-facing events.
type Notifier struct {
	rows   RowWriter
	mailer email.Sender
	logger *slog.Logger
}

func New(rows RowWriter, mailer email.Sender, logger *slog.Logger) *Notifier {
	return &Notifier{rows: rows, mailer: mailer, logger: logger}
}

// Send writes one in-app notification row. Errors are logged, never
// returned.
func (n *Notifier) Send(ctx context.Context, userEmail, message, notifType string) {
	if err := n.rows.AddNotification(ctx, userEmail, message, notifType); err != nil {
		n.logger.Error("notification insert failed",
			"user", userEmail, "type", notifType, "error", err)
	}
}

// SendEmail dispatches an email on its own goroutine so callers never
// wait on SMTP. Errors are logged, never returned.
func (n *Notifier) SendEmail(to, subject, htmlBody string) {
	go func() {
		if err := n.mailer.Send(to, subject, htmlBody); err != nil {
			n.logger.Error("email send failed", "to", to, "subject", subject, "error", err)
		}
	}()
}
