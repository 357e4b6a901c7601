// Package email sends transactional mail. Delivery is SMTP in
// production and a console logger in development, behind one Sender
// interface so callers never care which is wired.
package email

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Sender delivers one email. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// SMTPConfig holds the SMTP server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSender sends mail through a standard SMTP server. Works with
// Mailhog (no auth) in development and an authenticated relay in
// production.
type SMTPSender struct {
	config SMTPConfig
}

func NewSMTPSender(config SMTPConfig) *SMTPSender {
	if config.From == "" {
		config.From = "studentworkhubofficial@gmail.com"
	}
	if config.FromName == "" {
		config.FromName = "StudentWorkHub"
	}
	return &SMTPSender{config: config}
}

func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.config.FromName, s.config.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	if err := smtp.SendMail(addr, auth, s.config.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", to, err)
	}
	return nil
}

// LogSender writes emails to the log instead of delivering them. Used
// when no SMTP host is configured, so the rest of the system can run
// without a mail account.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(to, subject, htmlBody string) error {
	s.logger.Info("email (not delivered, no SMTP configured)",
		"to", to, "subject", subject, "body", htmlBody)
	return nil
}
