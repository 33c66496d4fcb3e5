package mocks

import (
	"context"
	"time"

	"github.com/alirezazamanidev/project-microservice/domain"
)

// MockSessionDirectory implements domain.SessionDirectory interface for testing
type MockSessionDirectory struct {
	BindFunc    func(ctx context.Context, sessionID, identityRef string, ttl time.Duration) (*domain.SessionBinding, error)
	ResolveFunc func(ctx context.Context, sessionID string) (string, error)
	TouchFunc   func(ctx context.Context, sessionID string, ttl time.Duration) (*domain.SessionBinding, error)
	UnbindFunc  func(ctx context.Context, sessionID string) error
}

// NewMockSessionDirectory creates a new MockSessionDirectory with default behaviors
func NewMockSessionDirectory() *MockSessionDirectory {
	return &MockSessionDirectory{}
}

// Bind binds a session
func (m *MockSessionDirectory) Bind(ctx context.Context, sessionID, identityRef string, ttl time.Duration) (*domain.SessionBinding, error) {
	if m.BindFunc != nil {
		return m.BindFunc(ctx, sessionID, identityRef, ttl)
	}
	now := time.Now().UTC()
	return &domain.SessionBinding{SessionID: sessionID, IdentityRef: identityRef, BoundAt: now, ExpiresAt: now.Add(ttl)}, nil
}

// Resolve resolves a session
func (m *MockSessionDirectory) Resolve(ctx context.Context, sessionID string) (string, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, sessionID)
	}
	// Default behavior: not found
	return "", domain.ErrSessionNotFound
}

// Touch extends a session
func (m *MockSessionDirectory) Touch(ctx context.Context, sessionID string, ttl time.Duration) (*domain.SessionBinding, error) {
	if m.TouchFunc != nil {
		return m.TouchFunc(ctx, sessionID, ttl)
	}
	return nil, domain.ErrSessionNotFound
}

// Unbind removes a session
func (m *MockSessionDirectory) Unbind(ctx context.Context, sessionID string) error {
	if m.UnbindFunc != nil {
		return m.UnbindFunc(ctx, sessionID)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.SessionDirectory = (*MockSessionDirectory)(nil)
