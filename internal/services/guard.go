package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/alirezazamanidev/project-microservice/domain"
)

// GuardImpl implements domain.Guard. It only reads.
type GuardImpl struct {
	sessions   domain.SessionDirectory
	identities domain.IdentityRepository
}

// NewGuard creates a new authentication guard
func NewGuard(sessions domain.SessionDirectory, identities domain.IdentityRepository) domain.Guard {
	return &GuardImpl{sessions: sessions, identities: identities}
}

// Authenticate implements domain.Guard.
// No session id is ErrNoSession; an unknown, expired or stale session is ErrSessionNotFound.
func (g *GuardImpl) Authenticate(ctx context.Context, sessionID string) (*domain.AuthenticatedIdentity, error) {
	if sessionID == "" {
		return nil, domain.ErrNoSession
	}

	ref, err := g.sessions.Resolve(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	identity, err := g.identities.FindByID(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}

	return &domain.AuthenticatedIdentity{
		SessionID:   sessionID,
		IdentityRef: ref,
		Identity:    identity,
	}, nil
}
