package mocks

import (
	"context"
	"time"

	"github.com/alirezazamanidev/project-microservice/domain"
)

// MockOTPStore implements domain.OTPStore interface for testing
type MockOTPStore struct {
	CreateFunc        func(ctx context.Context, record *domain.OTPRecord, ttl time.Duration) error
	RecordAttemptFunc func(ctx context.Context, email string, now time.Time, maxAttempts int) (*domain.OTPRecord, error)
	ConsumeFunc       func(ctx context.Context, email, recordID string) (bool, error)
	GetFunc           func(ctx context.Context, email string) (*domain.OTPRecord, error)
	DeleteFunc        func(ctx context.Context, email string) error
}

// NewMockOTPStore creates a new MockOTPStore with default behaviors
func NewMockOTPStore() *MockOTPStore {
	return &MockOTPStore{}
}

// Create stores a record
func (m *MockOTPStore) Create(ctx context.Context, record *domain.OTPRecord, ttl time.Duration) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, record, ttl)
	}
	return nil
}

// RecordAttempt consumes one attempt
func (m *MockOTPStore) RecordAttempt(ctx context.Context, email string, now time.Time, maxAttempts int) (*domain.OTPRecord, error) {
	if m.RecordAttemptFunc != nil {
		return m.RecordAttemptFunc(ctx, email, now, maxAttempts)
	}
	// Default behavior: nothing pending
	return nil, domain.ErrOTPNotFound
}

// Consume deletes the record if it still matches recordID
func (m *MockOTPStore) Consume(ctx context.Context, email, recordID string) (bool, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, email, recordID)
	}
	return true, nil
}

// Get returns the current record
func (m *MockOTPStore) Get(ctx context.Context, email string) (*domain.OTPRecord, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, email)
	}
	return nil, domain.ErrOTPNotFound
}

// Delete removes the record
func (m *MockOTPStore) Delete(ctx context.Context, email string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, email)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.OTPStore = (*MockOTPStore)(nil)
