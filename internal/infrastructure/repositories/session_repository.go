package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/redis/go-redis/v9"
)

// SessionRepositoryImpl implements domain.SessionDirectory using Redis
type SessionRepositoryImpl struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewSessionRepository creates a new session directory
func NewSessionRepository(client *redis.Client) domain.SessionDirectory {
	return &SessionRepositoryImpl{
		client: client,
		prefix: "sess:",
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Bind implements domain.SessionDirectory. Any prior binding for the id is overwritten.
func (r *SessionRepositoryImpl) Bind(ctx context.Context, sessionID, identityRef string, ttl time.Duration) (*domain.SessionBinding, error) {
	if sessionID == "" {
		return nil, domain.ErrNoSession
	}
	now := r.now()
	binding := &domain.SessionBinding{
		SessionID:   sessionID,
		IdentityRef: identityRef,
		BoundAt:     now,
		ExpiresAt:   now.Add(ttl),
	}
	data, err := json.Marshal(binding)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(sessionID), data, ttl).Err(); err != nil {
		return nil, err
	}
	return binding, nil
}

// Resolve implements domain.SessionDirectory. Expired and never-bound ids both yield
// domain.ErrSessionNotFound.
func (r *SessionRepositoryImpl) Resolve(ctx context.Context, sessionID string) (string, error) {
	binding, err := r.get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return binding.IdentityRef, nil
}

// Touch implements domain.SessionDirectory
func (r *SessionRepositoryImpl) Touch(ctx context.Context, sessionID string, ttl time.Duration) (*domain.SessionBinding, error) {
	binding, err := r.get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	binding.ExpiresAt = r.now().Add(ttl)
	data, err := json.Marshal(binding)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	// XX: a concurrent unbind wins
	ok, err := r.client.SetXX(ctx, r.key(sessionID), data, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return binding, nil
}

// Unbind implements domain.SessionDirectory. Unbinding an unknown id is not an error.
func (r *SessionRepositoryImpl) Unbind(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return r.client.Del(ctx, r.key(sessionID)).Err()
}

func (r *SessionRepositoryImpl) get(ctx context.Context, sessionID string) (*domain.SessionBinding, error) {
	if sessionID == "" {
		return nil, domain.ErrSessionNotFound
	}
	data, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var binding domain.SessionBinding
	if err := json.Unmarshal(data, &binding); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &binding, nil
}

func (r *SessionRepositoryImpl) key(sessionID string) string {
	return r.prefix + sessionID
}
