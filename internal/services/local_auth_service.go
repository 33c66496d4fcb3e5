package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LocalAuthServiceImpl implements domain.LocalAuthService (email + OTP)
type LocalAuthServiceImpl struct {
	identities domain.IdentityRepository
	otpSvc     domain.OTPService
	pending    domain.PendingRegistrationStore
	sessions   domain.SessionDirectory
	audit      domain.AuditLogger
	log        zerolog.Logger
	config     SessionConfig
}

// SessionConfig carries the lifetimes the auth flows hand out
type SessionConfig struct {
	SessionTTL      time.Duration
	RegistrationTTL time.Duration
}

// NewLocalAuthService creates a new local auth service
func NewLocalAuthService(
	identities domain.IdentityRepository,
	otpSvc domain.OTPService,
	pending domain.PendingRegistrationStore,
	sessions domain.SessionDirectory,
	audit domain.AuditLogger,
	log zerolog.Logger,
	config SessionConfig,
) domain.LocalAuthService {
	return &LocalAuthServiceImpl{
		identities: identities,
		otpSvc:     otpSvc,
		pending:    pending,
		sessions:   sessions,
		audit:      audit,
		log:        log.With().Str("component", "local_auth").Logger(),
		config:     config,
	}
}

// LocalLogin implements domain.LocalAuthService
func (s *LocalAuthServiceImpl) LocalLogin(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}

	if _, err := s.identities.FindByEmail(ctx, email); err != nil {
		return err
	}
	if err := s.ensureNoLiveOTP(ctx, email); err != nil {
		return err
	}

	_, err := s.otpSvc.Issue(ctx, email, domain.OTPPurposeLogin)
	return err
}

// LocalRegister implements domain.LocalAuthService. The identity is not created until the
// registration code is verified; until then the sign-up data waits as a pending registration.
func (s *LocalAuthServiceImpl) LocalRegister(ctx context.Context, reg domain.Registration) error {
	email := normalizeEmail(reg.Email)
	if err := validateEmail(email); err != nil {
		return err
	}
	fullName := strings.TrimSpace(reg.FullName)
	if fullName == "" {
		return fmt.Errorf("%w: full name is required", domain.ErrValidation)
	}

	_, err := s.identities.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.ErrUserAlreadyExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return err
	}
	if err := s.ensureNoLiveOTP(ctx, email); err != nil {
		return err
	}

	// the pending record is the registration lock: whoever creates it owns the code issued next
	pending := &domain.PendingRegistration{Email: email, FullName: fullName, CreatedAt: time.Now().UTC()}
	if err := s.pending.Save(ctx, pending, s.config.RegistrationTTL); err != nil {
		if errors.Is(err, domain.ErrOTPAlreadyPending) {
			return err
		}
		return fmt.Errorf("failed to save pending registration: %w", err)
	}

	if _, err := s.otpSvc.Issue(ctx, email, domain.OTPPurposeRegister); err != nil {
		s.dropPending(ctx, email)
		return err
	}
	return nil
}

func (s *LocalAuthServiceImpl) dropPending(ctx context.Context, email string) {
	if err := s.pending.Delete(ctx, email); err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("failed to remove pending registration")
	}
}

// VerifyOTP implements domain.LocalAuthService
func (s *LocalAuthServiceImpl) VerifyOTP(ctx context.Context, email, code string) (*domain.AuthResult, error) {
	result, err := s.otpSvc.Verify(ctx, email, code)
	if err != nil {
		if errors.Is(err, domain.ErrOTPMaxAttempts) {
			// the exhausted code is gone, so any sign-up waiting on it is orphaned
			s.dropPending(ctx, normalizeEmail(email))
		}
		return nil, err
	}

	var identity *domain.Identity
	switch result.Purpose {
	case domain.OTPPurposeRegister:
		identity, err = s.completeRegistration(ctx, result.Email)
	case domain.OTPPurposeLogin:
		identity, err = s.completeLogin(ctx, result.Email)
	default:
		err = fmt.Errorf("%w: unknown otp purpose %q", domain.ErrValidation, result.Purpose)
	}
	if err != nil {
		return nil, err
	}

	binding, err := bindNewSession(ctx, s.sessions, s.audit, identity, s.config.SessionTTL)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{
		Identity:  identity,
		SessionID: binding.SessionID,
		ExpiresAt: binding.ExpiresAt,
		Purpose:   result.Purpose,
	}, nil
}

func (s *LocalAuthServiceImpl) completeRegistration(ctx context.Context, email string) (*domain.Identity, error) {
	pending, err := s.pending.Take(ctx, email)
	if err != nil {
		return nil, err
	}
	identity, err := s.identities.CreateFromRegistration(ctx, domain.Registration{Email: email, FullName: pending.FullName})
	if err != nil {
		return nil, err
	}
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.IdentityRegisteredEvent).
		WithEmail(email).
		WithIdentity(identity.ID))
	return identity, nil
}

func (s *LocalAuthServiceImpl) completeLogin(ctx context.Context, email string) (*domain.Identity, error) {
	if err := s.identities.MarkEmailVerified(ctx, email); err != nil {
		return nil, err
	}
	return s.identities.FindByEmail(ctx, email)
}

func (s *LocalAuthServiceImpl) ensureNoLiveOTP(ctx context.Context, email string) error {
	live, err := s.otpSvc.HasLive(ctx, email)
	if err != nil {
		return err
	}
	if live {
		return domain.ErrOTPAlreadyPending
	}
	return nil
}

// bindNewSession binds a fresh server-generated session id to identity
func bindNewSession(ctx context.Context, sessions domain.SessionDirectory, audit domain.AuditLogger, identity *domain.Identity, ttl time.Duration) (*domain.SessionBinding, error) {
	binding, err := sessions.Bind(ctx, uuid.NewString(), identity.ID, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to bind session: %w", err)
	}
	audit.LogEvent(ctx, domain.NewAuditEvent(domain.SessionBoundEvent).
		WithEmail(identity.Email).
		WithIdentity(identity.ID).
		WithSession(binding.SessionID))
	return binding, nil
}
