package mocks

import (
	"context"

	"github.com/alirezazamanidev/project-microservice/domain"
)

// MockIdentityRepository implements domain.IdentityRepository interface for testing
type MockIdentityRepository struct {
	UpsertFromOAuthFunc        func(ctx context.Context, profile domain.OAuthProfile) (*domain.Identity, error)
	CreateFromRegistrationFunc func(ctx context.Context, reg domain.Registration) (*domain.Identity, error)
	FindByEmailFunc            func(ctx context.Context, email string) (*domain.Identity, error)
	FindByIDFunc               func(ctx context.Context, id string) (*domain.Identity, error)
	MarkEmailVerifiedFunc      func(ctx context.Context, email string) error
}

// NewMockIdentityRepository creates a new MockIdentityRepository with default behaviors
func NewMockIdentityRepository() *MockIdentityRepository {
	return &MockIdentityRepository{}
}

// UpsertFromOAuth creates or updates an identity from a provider profile
func (m *MockIdentityRepository) UpsertFromOAuth(ctx context.Context, profile domain.OAuthProfile) (*domain.Identity, error) {
	if m.UpsertFromOAuthFunc != nil {
		return m.UpsertFromOAuthFunc(ctx, profile)
	}
	return &domain.Identity{ID: "mock-id", Email: profile.Email, FullName: profile.FullName, EmailVerified: true}, nil
}

// CreateFromRegistration creates an identity from a local registration
func (m *MockIdentityRepository) CreateFromRegistration(ctx context.Context, reg domain.Registration) (*domain.Identity, error) {
	if m.CreateFromRegistrationFunc != nil {
		return m.CreateFromRegistrationFunc(ctx, reg)
	}
	return &domain.Identity{ID: "mock-id", Email: reg.Email, FullName: reg.FullName, EmailVerified: true}, nil
}

// FindByEmail finds an identity by email
func (m *MockIdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByID finds an identity by id
func (m *MockIdentityRepository) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// MarkEmailVerified promotes the verified flag
func (m *MockIdentityRepository) MarkEmailVerified(ctx context.Context, email string) error {
	if m.MarkEmailVerifiedFunc != nil {
		return m.MarkEmailVerifiedFunc(ctx, email)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.IdentityRepository = (*MockIdentityRepository)(nil)
