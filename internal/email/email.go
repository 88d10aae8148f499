package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// Sender delivers one rendered account email: a verification link, a device
// OTP or a password reset link. Dispatcher owns subjects and bodies; a Sender
// only moves them. A non-nil error fails the auth flow that triggered it.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender writes each email to the log so OTP codes and links can be read
// from the server output while developing (ENV=local).
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.InfoContext(ctx, "account email not delivered (local)", "to", to, "subject", subject, "body", body)
	return nil
}

// ResendSender delivers account emails through the Resend API from the
// configured RESEND_FROM address.
type ResendSender struct {
	client *resend.Client
	from   string
	logger *slog.Logger
}

func (s *ResendSender) Send(ctx context.Context, to, subject, body string) error {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	})
	if err != nil {
		return fmt.Errorf("deliver %q email: %w", subject, err)
	}
	s.logger.DebugContext(ctx, "account email accepted", "subject", subject, "resend_id", sent.Id)
	return nil
}

// NewSender picks the delivery for env: the log in local, Resend everywhere else.
func NewSender(env, apiKey, from string, logger *slog.Logger) Sender {
	logger = logger.With("component", "email")
	if env == "local" {
		return &LogSender{logger: logger}
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger,
	}
}
