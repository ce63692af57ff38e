package notifications

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"shelfkeeper/internal/shared/config"
	"shelfkeeper/pkg/logger"
)

// Sender delivers one notification. The Kafka publisher and the mail senders
// all satisfy it, so the dispatcher does not care where a message goes next.
type Sender interface {
	Send(ctx context.Context, notification *EmailNotification) error
}

// SMTPSender delivers plain-text mail over STARTTLS.
type SMTPSender struct {
	cfg config.EmailConfig
}

func NewSMTPSender(cfg config.EmailConfig) (*SMTPSender, error) {
	if err := validateSMTPConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPSender{cfg: cfg}, nil
}

func validateSMTPConfig(cfg config.EmailConfig) error {
	if cfg.SMTPHost == "" {
		return errors.New("SMTP host is required")
	}
	if cfg.SMTPPort <= 0 || cfg.SMTPPort > 65535 {
		return errors.New("SMTP port must be between 1 and 65535")
	}
	if cfg.SMTPUsername == "" {
		return errors.New("SMTP username is required")
	}
	if cfg.FromEmail == "" {
		return errors.New("from email is required")
	}
	return nil
}

func (s *SMTPSender) Send(ctx context.Context, notification *EmailNotification) error {
	if notification.RecipientEmail == "" {
		return errors.New("notification has no recipient email")
	}

	message := buildMessage(s.cfg.FromName, s.cfg.FromEmail, notification, time.Now())
	addr := net.JoinHostPort(s.cfg.SMTPHost, fmt.Sprint(s.cfg.SMTPPort))
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)

	dialer := net.Dialer{Timeout: s.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	_ = conn.SetDeadline(time.Now().Add(s.cfg.Timeout))

	client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open SMTP session: %w", err)
	}
	defer client.Quit()

	if err = client.StartTLS(&tls.Config{ServerName: s.cfg.SMTPHost}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}
	if err = client.Mail(s.cfg.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(notification.RecipientEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return w.Close()
}

// buildMessage renders RFC 5322 headers followed by the text body. Header
// order is fixed so messages are reproducible.
func buildMessage(fromName, fromEmail string, notification *EmailNotification, now time.Time) []byte {
	var b strings.Builder
	from := fromEmail
	if fromName != "" {
		from = fmt.Sprintf("%s <%s>", fromName, fromEmail)
	}
	headers := [][2]string{
		{"From", from},
		{"To", notification.RecipientEmail},
		{"Subject", notification.Subject},
		{"Date", now.Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/plain; charset=UTF-8"},
		{"X-Notification-ID", notification.ID.String()},
	}
	for _, h := range headers {
		b.WriteString(h[0] + ": " + h[1] + "\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(notification.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// LoggingSender writes notifications to the log instead of mailing them. It is
// used when no SMTP credentials are configured.
type LoggingSender struct {
	log *logger.Logger
}

func NewLoggingSender(log *logger.Logger) *LoggingSender {
	if log == nil {
		log = logger.GetDefault()
	}
	return &LoggingSender{log: log.WithComponent("notifications")}
}

func (s *LoggingSender) Send(ctx context.Context, notification *EmailNotification) error {
	s.log.InfoWithContext(ctx, "Notification delivered to log", map[string]interface{}{
		"notification_id": notification.ID.String(),
		"type":            string(notification.Type),
		"recipient":       notification.RecipientEmail,
		"subject":         notification.Subject,
		"reservations":    len(notification.ReservationIDs),
	})
	return nil
}

// RetryPolicy bounds delivery attempts. Delays double after every failure.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, Backoff: time.Second}
}

// sendWithRetry tries sender until it succeeds, the policy is exhausted or ctx
// ends. The notification's status and retry count reflect the outcome.
func sendWithRetry(ctx context.Context, sender Sender, notification *EmailNotification, policy RetryPolicy) error {
	notification.Status = NotificationStatusSending

	var err error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		notification.RetryCount = attempt
		if err = sender.Send(ctx, notification); err == nil {
			notification.MarkSent()
			return nil
		}
		if attempt == policy.MaxRetries {
			break
		}

		delay := policy.Backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			notification.MarkFailed(ctx.Err())
			return ctx.Err()
		}
	}

	notification.MarkFailed(err)
	return err
}
