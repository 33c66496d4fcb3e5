package services

import (
	"context"
	"time"

	"github.com/alirezazamanidev/project-microservice/domain"
)

// SessionServiceImpl implements domain.SessionService
type SessionServiceImpl struct {
	sessions   domain.SessionDirectory
	identities domain.IdentityRepository
	audit      domain.AuditLogger
	ttl        time.Duration
}

// NewSessionService creates a new session service
func NewSessionService(sessions domain.SessionDirectory, identities domain.IdentityRepository, audit domain.AuditLogger, ttl time.Duration) domain.SessionService {
	return &SessionServiceImpl{sessions: sessions, identities: identities, audit: audit, ttl: ttl}
}

// Logout implements domain.SessionService. Logging out twice is not an error.
func (s *SessionServiceImpl) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Unbind(ctx, sessionID); err != nil {
		return err
	}
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.SessionUnboundEvent).WithSession(sessionID))
	return nil
}

// Refresh implements domain.SessionService
func (s *SessionServiceImpl) Refresh(ctx context.Context, sessionID string) (*domain.SessionBinding, error) {
	if sessionID == "" {
		return nil, domain.ErrNoSession
	}
	return s.sessions.Touch(ctx, sessionID, s.ttl)
}

// GetUserInfo implements domain.SessionService
func (s *SessionServiceImpl) GetUserInfo(ctx context.Context, identityRef string) (*domain.Identity, error) {
	return s.identities.FindByID(ctx, identityRef)
}
