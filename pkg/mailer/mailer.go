// Package mailer delivers transactional email through SendGrid.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/PrincipieCyupe/tyi/pkg/config"
)

// ErrNotConfigured is returned when no sender address is set.
var ErrNotConfigured = errors.New("mailer: sender not configured")

// Message is a single outbound HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
	ReplyTo string
}

// Mailer sends email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridMailer sends through the SendGrid v3 API.
type SendGridMailer struct {
	client   sendClient
	fromName string
	from     string
	logger   *zap.Logger
}

// New returns a SendGrid mailer when an API key is configured and a log-only mailer otherwise.
func New(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SendGridAPIKey == "" {
		logger.Warn("SENDGRID_API_KEY not set, emails will only be logged")
		return &LogMailer{logger: logger}
	}
	return newSendGridMailer(sendgrid.NewSendClient(cfg.SendGridAPIKey), cfg, logger)
}

func newSendGridMailer(client sendClient, cfg config.MailConfig, logger *zap.Logger) *SendGridMailer {
	return &SendGridMailer{client: client, fromName: cfg.FromName, from: cfg.FromEmail, logger: logger}
}

// Send delivers msg; any non-2xx status is an error.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if m.from == "" {
		return ErrNotConfigured
	}
	email := mail.NewSingleEmail(mail.NewEmail(m.fromName, m.from), msg.Subject, mail.NewEmail("", msg.To), "", msg.HTML)
	if msg.ReplyTo != "" {
		email.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sendgrid send: unexpected status %d", resp.StatusCode)
	}
	m.logger.Info("email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject), zap.Int("status", resp.StatusCode))
	return nil
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer builds a LogMailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// Send logs msg and never fails.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.Info("email not sent (log mailer)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("reply_to", msg.ReplyTo),
		zap.Int("html_bytes", len(msg.HTML)),
	)
	return nil
}
