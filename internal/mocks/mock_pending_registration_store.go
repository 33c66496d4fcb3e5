package mocks

import (
	"context"
	"time"

	"github.com/alirezazamanidev/project-microservice/domain"
)

// MockPendingRegistrationStore implements domain.PendingRegistrationStore interface for testing
type MockPendingRegistrationStore struct {
	SaveFunc   func(ctx context.Context, pending *domain.PendingRegistration, ttl time.Duration) error
	TakeFunc   func(ctx context.Context, email string) (*domain.PendingRegistration, error)
	DeleteFunc func(ctx context.Context, email string) error
}

// NewMockPendingRegistrationStore creates a new MockPendingRegistrationStore with default behaviors
func NewMockPendingRegistrationStore() *MockPendingRegistrationStore {
	return &MockPendingRegistrationStore{}
}

// Save stores a pending registration
func (m *MockPendingRegistrationStore) Save(ctx context.Context, pending *domain.PendingRegistration, ttl time.Duration) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, pending, ttl)
	}
	return nil
}

// Take reads and removes a pending registration
func (m *MockPendingRegistrationStore) Take(ctx context.Context, email string) (*domain.PendingRegistration, error) {
	if m.TakeFunc != nil {
		return m.TakeFunc(ctx, email)
	}
	return nil, domain.ErrRegistrationExpired
}

// Delete removes a pending registration
func (m *MockPendingRegistrationStore) Delete(ctx context.Context, email string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, email)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.PendingRegistrationStore = (*MockPendingRegistrationStore)(nil)
