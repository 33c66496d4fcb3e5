package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/rs/zerolog"
)

// OAuthServiceImpl implements domain.OAuthService
type OAuthServiceImpl struct {
	providers  map[string]domain.OAuthProvider
	identities domain.IdentityRepository
	sessions   domain.SessionDirectory
	audit      domain.AuditLogger
	log        zerolog.Logger
	config     SessionConfig
}

// NewOAuthService creates a new OAuth login service over the given providers
func NewOAuthService(
	identities domain.IdentityRepository,
	sessions domain.SessionDirectory,
	audit domain.AuditLogger,
	log zerolog.Logger,
	config SessionConfig,
	providers ...domain.OAuthProvider,
) domain.OAuthService {
	byName := make(map[string]domain.OAuthProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &OAuthServiceImpl{
		providers:  byName,
		identities: identities,
		sessions:   sessions,
		audit:      audit,
		log:        log.With().Str("component", "oauth").Logger(),
		config:     config,
	}
}

// Login implements domain.OAuthService
func (s *OAuthServiceImpl) Login(ctx context.Context, provider, code string) (*domain.AuthResult, error) {
	p, ok := s.providers[strings.ToLower(provider)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, provider)
	}

	profile, err := p.Exchange(ctx, code)
	if err != nil {
		s.log.Warn().Err(err).Str("provider", p.Name()).Msg("provider exchange failed")
		var coded *domain.CodedError
		if errors.As(err, &coded) {
			return nil, err
		}
		return nil, domain.NewCodedError(providerCode(p.Name()), "", fmt.Errorf("%w: %v", domain.ErrAuthProvider, err))
	}

	profile.Email = normalizeEmail(profile.Email)
	if validateEmail(profile.Email) != nil {
		return nil, domain.NewCodedError(providerCode(p.Name()), "", fmt.Errorf("%w: provider returned no usable email", domain.ErrAuthProvider))
	}
	if !profile.EmailVerified {
		return nil, domain.NewCodedError(providerCode(p.Name()), "", fmt.Errorf("%w: provider email is not verified", domain.ErrAuthProvider))
	}

	identity, err := s.identities.UpsertFromOAuth(ctx, *profile)
	if err != nil {
		return nil, err
	}
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.IdentityUpsertedEvent).
		WithEmail(identity.Email).
		WithIdentity(identity.ID).
		WithMetadata("provider", p.Name()))

	binding, err := bindNewSession(ctx, s.sessions, s.audit, identity, s.config.SessionTTL)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{
		Identity:  identity,
		SessionID: binding.SessionID,
		ExpiresAt: binding.ExpiresAt,
	}, nil
}

func providerCode(name string) domain.Code {
	switch name {
	case "google":
		return domain.CodeGoogleAuthError
	case "apple":
		return domain.CodeAppleAuthError
	}
	return domain.CodeAuthProviderError
}
