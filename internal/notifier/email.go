package notifier

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/akum32o/ncsl-ai-energy-watch/internal/config"
	"github.com/akum32o/ncsl-ai-energy-watch/internal/logger"
)

// Email sends the digest over authenticated SMTP submission. The default
// settings target Office 365: STARTTLS on port 587 with LOGIN auth.
type Email struct {
	cfg config.SMTPConfig
}

// NewEmail creates an email notifier from SMTP settings.
func NewEmail(cfg config.SMTPConfig) *Email {
	return &Email{cfg: cfg}
}

// Configured reports whether credentials and at least one recipient are set.
func (e *Email) Configured() bool {
	return e.cfg.Configured()
}

// Notify sends one plain-text message to all configured recipients.
func (e *Email) Notify(ctx context.Context, subject, body string) error {
	if !e.Configured() {
		return ErrNotConfigured
	}

	msg := mail.NewMsg()
	if err := msg.From(e.cfg.From); err != nil {
		return &SendError{Channel: "email", Err: fmt.Errorf("invalid sender %q: %w", e.cfg.From, err)}
	}
	if err := msg.To(e.cfg.To...); err != nil {
		return &SendError{Channel: "email", Err: fmt.Errorf("invalid recipients: %w", err)}
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(e.cfg.Host,
		mail.WithPort(e.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(e.cfg.User),
		mail.WithPassword(e.cfg.Pass),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(e.cfg.Timeout),
	)
	if err != nil {
		return &SendError{Channel: "email", Err: fmt.Errorf("smtp client: %w", err)}
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return &SendError{Channel: "email", Err: err}
	}

	logger.Info("digest emailed", logger.Fields{
		"recipients": len(e.cfg.To),
		"subject":    subject,
	})

	return nil
}
