package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OTPServiceImpl implements domain.OTPService on top of an atomic domain.OTPStore
type OTPServiceImpl struct {
	store  domain.OTPStore
	hasher domain.CodeHasher
	mailer domain.Mailer
	audit  domain.AuditLogger
	log    zerolog.Logger
	config OTPConfig
	now    func() time.Time
}

type OTPConfig struct {
	Length      int
	TTL         time.Duration
	MaxAttempts int
}

// NewOTPService creates a new OTP engine
func NewOTPService(
	store domain.OTPStore,
	hasher domain.CodeHasher,
	mailer domain.Mailer,
	audit domain.AuditLogger,
	log zerolog.Logger,
	config OTPConfig,
) domain.OTPService {
	return &OTPServiceImpl{
		store:  store,
		hasher: hasher,
		mailer: mailer,
		audit:  audit,
		log:    log.With().Str("component", "otp").Logger(),
		config: config,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Issue implements domain.OTPService. A live code for the email is never overwritten.
// When delivery fails the just-created record is removed so the user can ask again.
func (s *OTPServiceImpl) Issue(ctx context.Context, email string, purpose domain.OTPPurpose) (*domain.OTPRecord, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if !purpose.Valid() {
		return nil, fmt.Errorf("%w: unknown otp purpose %q", domain.ErrValidation, purpose)
	}

	code, err := s.generateSecureCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP code: %w", err)
	}
	codeHash, err := s.hasher.Hash(code)
	if err != nil {
		return nil, fmt.Errorf("failed to hash OTP code: %w", err)
	}

	record := &domain.OTPRecord{
		ID:        uuid.NewString(),
		Email:     email,
		Code:      code,
		CodeHash:  codeHash,
		Purpose:   purpose,
		ExpiresAt: s.now().Add(s.config.TTL),
	}
	if err := s.store.Create(ctx, record, s.config.TTL); err != nil {
		s.auditIssueFailure(ctx, email, purpose, err)
		return nil, err
	}

	if err := s.mailer.SendOTP(ctx, email, code, purpose, s.config.TTL); err != nil {
		// only remove our own record, never a newer one
		if _, delErr := s.store.Consume(ctx, email, record.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("email", email).Msg("failed to remove undelivered otp")
		}
		s.log.Error().Err(err).Str("email", email).Msg("otp delivery failed")
		s.auditIssueFailure(ctx, email, purpose, err)
		if errors.Is(err, domain.ErrEmailSendFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrEmailSendFailed, err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.OTPIssuedEvent).
		WithEmail(email).
		WithMetadata("purpose", string(purpose)))
	return record, nil
}

// Verify implements domain.OTPService. The attempt is counted in the store before the
// code is compared; a match consumes the record so it verifies exactly once.
func (s *OTPServiceImpl) Verify(ctx context.Context, email, code string) (*domain.VerificationResult, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateCode(code, s.config.Length); err != nil {
		return nil, err
	}

	record, err := s.store.RecordAttempt(ctx, email, s.now(), s.config.MaxAttempts)
	if err != nil {
		s.auditVerifyFailure(ctx, email, err, 0)
		return nil, err
	}

	if !s.hasher.Verify(record.CodeHash, code) {
		if record.Attempts >= s.config.MaxAttempts {
			if _, err := s.store.Consume(ctx, email, record.ID); err != nil {
				return nil, fmt.Errorf("failed to remove exhausted otp: %w", err)
			}
			s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.OTPAttemptsExhaustedEvent).
				WithEmail(email).
				WithError(domain.ErrOTPMaxAttempts))
			return nil, domain.ErrOTPMaxAttempts
		}
		s.auditVerifyFailure(ctx, email, domain.ErrOTPInvalid, record.Attempts)
		return nil, domain.ErrOTPInvalid
	}

	consumed, err := s.store.Consume(ctx, email, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to consume otp: %w", err)
	}
	if !consumed {
		// a concurrent verify already used it
		s.auditVerifyFailure(ctx, email, domain.ErrOTPNotFound, record.Attempts)
		return nil, domain.ErrOTPNotFound
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.OTPVerifiedEvent).
		WithEmail(email).
		WithMetadata("purpose", string(record.Purpose)).
		WithMetadata("attempts", record.Attempts))
	return &domain.VerificationResult{Email: email, Purpose: record.Purpose}, nil
}

// HasLive implements domain.OTPService
func (s *OTPServiceImpl) HasLive(ctx context.Context, email string) (bool, error) {
	record, err := s.store.Get(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrOTPNotFound) {
			return false, nil
		}
		return false, err
	}
	return !record.Expired(s.now()), nil
}

// generateSecureCode draws uniformly from [10^(n-1), 10^n)
func (s *OTPServiceImpl) generateSecureCode() (string, error) {
	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(s.config.Length-1)), nil)
	span := new(big.Int).Mul(low, big.NewInt(9))

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	return n.Add(n, low).String(), nil
}

func (s *OTPServiceImpl) auditIssueFailure(ctx context.Context, email string, purpose domain.OTPPurpose, err error) {
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.OTPIssueFailureEvent).
		WithEmail(email).
		WithMetadata("purpose", string(purpose)).
		WithError(err))
}

func (s *OTPServiceImpl) auditVerifyFailure(ctx context.Context, email string, err error, attempts int) {
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.OTPVerifyFailureEvent).
		WithEmail(email).
		WithMetadata("attempts", attempts).
		WithError(err))
}
