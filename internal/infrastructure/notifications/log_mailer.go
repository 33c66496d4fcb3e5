package notifications

import (
	"context"
	"time"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/rs/zerolog"
)

// LogMailerImpl implements domain.Mailer by writing the code to the log.
// Used for local development when no SMTP host is configured.
type LogMailerImpl struct {
	log zerolog.Logger
}

// NewLogMailer creates a log-only mailer
func NewLogMailer(log zerolog.Logger) domain.Mailer {
	return &LogMailerImpl{log: log}
}

// SendOTP implements domain.Mailer
func (m *LogMailerImpl) SendOTP(_ context.Context, email, code string, purpose domain.OTPPurpose, ttl time.Duration) error {
	m.log.Info().
		Str("email", email).
		Str("code", code).
		Str("purpose", string(purpose)).
		Dur("ttl", ttl).
		Msg("[MOCK EMAIL] otp delivery")
	return nil
}
