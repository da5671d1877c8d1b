// Package mail delivers transactional email over SMTP.
package mail

import (
	"context"
	"fmt"
	"html"

	identityapp "github.com/fabmate/backend/internal/application/identity"
	infraconfig "github.com/fabmate/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Ensure SMTPMailer implements Mailer
var _ identityapp.Mailer = (*SMTPMailer)(nil)

// SMTPMailer sends invitation emails through an SMTP relay using gomail.
type SMTPMailer struct {
	dialer  *gomail.Dialer
	from    string
	baseURL string
	logger  *zap.Logger
}

// SMTPMailerOption is a functional option for configuring SMTPMailer
type SMTPMailerOption func(*SMTPMailer)

// WithMailerLogger sets the logger for the mailer
func WithMailerLogger(logger *zap.Logger) SMTPMailerOption {
	return func(m *SMTPMailer) {
		m.logger = logger
	}
}

// WithInviteBaseURL sets the web app URL embedded in invitation links
func WithInviteBaseURL(baseURL string) SMTPMailerOption {
	return func(m *SMTPMailer) {
		m.baseURL = baseURL
	}
}

// NewSMTPMailer creates a mailer from SMTP configuration
func NewSMTPMailer(cfg *infraconfig.MailConfig, opts ...SMTPMailerOption) (*SMTPMailer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mail configuration is required")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("mail host is required")
	}

	mailer := &SMTPMailer{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		baseURL: "http://localhost:3000",
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(mailer)
	}

	return mailer, nil
}

// SendInvitation emails an invitation link to join a company workspace.
// DialAndSend opens a fresh SMTP connection per message, which is fine at
// invitation volume.
func (m *SMTPMailer) SendInvitation(ctx context.Context, email, token, companyName, role string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	acceptURL := fmt.Sprintf("%s/invitations/accept?token=%s", m.baseURL, token)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", fmt.Sprintf("You have been invited to join %s", companyName))
	msg.SetBody("text/html", invitationBody(companyName, role, acceptURL))

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("Failed to send invitation email",
			zap.String("email", email),
			zap.Error(err))
		return fmt.Errorf("failed to send invitation email: %w", err)
	}

	m.logger.Info("Invitation email sent",
		zap.String("email", email),
		zap.String("company", companyName))

	return nil
}

func invitationBody(companyName, role, acceptURL string) string {
	return fmt.Sprintf(`
		<p>You have been invited to join <strong>%s</strong> as a %s.</p>
		<p><a href="%s">Accept the invitation</a> to set up your account.</p>
		<p>The invitation expires in 7 days. If you were not expecting this email you can ignore it.</p>`,
		html.EscapeString(companyName),
		html.EscapeString(role),
		acceptURL,
	)
}

// NoopMailer discards invitation emails. Used when mail delivery is disabled,
// for example in development without an SMTP relay.
type NoopMailer struct {
	logger *zap.Logger
}

// NewNoopMailer creates a mailer that logs instead of sending
func NewNoopMailer(logger *zap.Logger) *NoopMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoopMailer{logger: logger}
}

// Ensure NoopMailer implements Mailer
var _ identityapp.Mailer = (*NoopMailer)(nil)

// SendInvitation logs the invitation instead of delivering it
func (m *NoopMailer) SendInvitation(ctx context.Context, email, token, companyName, role string) error {
	m.logger.Info("Mail delivery disabled, skipping invitation email",
		zap.String("email", email),
		zap.String("company", companyName),
		zap.String("role", role))
	return nil
}
