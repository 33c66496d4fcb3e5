package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

// SMTPMailerImpl implements domain.Mailer over SMTP
type SMTPMailerImpl struct {
	client *mail.Client
	from   string
	send   func(ctx context.Context, msg *mail.Msg) error
}

// NewMailer returns an SMTP mailer, or a log-only mailer when host is empty
func NewMailer(host string, port int, username, password, from string, log zerolog.Logger) (domain.Mailer, error) {
	if host == "" {
		return NewLogMailer(log), nil
	}

	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(10 * time.Second),
	}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}
	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	m := &SMTPMailerImpl{client: client, from: from}
	m.send = func(ctx context.Context, msg *mail.Msg) error {
		return m.client.DialAndSendWithContext(ctx, msg)
	}
	return m, nil
}

// SendOTP implements domain.Mailer
func (m *SMTPMailerImpl) SendOTP(ctx context.Context, email, code string, purpose domain.OTPPurpose, ttl time.Duration) error {
	msg, err := m.buildMessage(email, code, purpose, ttl)
	if err != nil {
		return err
	}
	if err := m.send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmailSendFailed, err)
	}
	return nil
}

func (m *SMTPMailerImpl) buildMessage(email, code string, purpose domain.OTPPurpose, ttl time.Duration) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(email); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidEmail, err)
	}
	subject, body := renderOTP(code, purpose, ttl)
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

func renderOTP(code string, purpose domain.OTPPurpose, ttl time.Duration) (string, string) {
	action := "sign in"
	if purpose == domain.OTPPurposeRegister {
		action = "complete your registration"
	}
	subject := "Your verification code"
	body := fmt.Sprintf(
		"Use the code %s to %s.\n\nThe code expires in %d minutes and can only be used once.\n"+
			"If you did not request it you can ignore this email.\n",
		code, action, int(ttl.Minutes()),
	)
	return subject, body
}
