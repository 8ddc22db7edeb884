package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"dossiers/internal/config"
	"dossiers/internal/relance"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// EmailService sends reminders through the SendGrid v3 API
type EmailService struct {
	apiKey string
	host   string
	from   *mail.Email
}

var _ relance.Mailer = (*EmailService)(nil)

// NewEmailService creates a SendGrid-backed mailer
func NewEmailService(apiKey, fromEmail, fromName string) *EmailService {
	return &EmailService{
		apiKey: apiKey,
		host:   sendgridHost,
		from:   mail.NewEmail(fromName, fromEmail),
	}
}

// Send delivers one HTML email with a plain text alternative
func (s *EmailService) Send(ctx context.Context, to, subject, htmlBody string) error {
	message := mail.NewSingleEmail(s.from, subject, mail.NewEmail("", to), relance.StripTags(htmlBody), htmlBody)

	req := sendgrid.GetRequest(s.apiKey, sendgridEndpoint, s.host)
	req.Method = http.MethodPost
	req.Body = mail.GetRequestBody(message)

	response, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email to %s: %d %s", to, response.StatusCode, response.Body)
	}
	return nil
}

// ConsoleMailer logs reminders instead of sending them, for development
type ConsoleMailer struct {
	logger zerolog.Logger
}

// NewConsoleMailer creates a mailer writing to logger
func NewConsoleMailer(logger zerolog.Logger) *ConsoleMailer {
	return &ConsoleMailer{logger: logger}
}

// Send implements relance.Mailer
func (m *ConsoleMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	m.logger.Warn().
		Str("to", to).
		Str("subject", subject).
		Str("body", relance.StripTags(htmlBody)).
		Msg("SendGrid API key not configured - email not sent")
	return nil
}

// NewMailer picks SendGrid when an API key is configured, the console otherwise
func NewMailer(cfg *config.Config, logger zerolog.Logger) relance.Mailer {
	if cfg.SendGrid.APIKey == "" {
		return NewConsoleMailer(logger)
	}
	return NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
}
