package mocks

import (
	"context"

	"github.com/alirezazamanidev/project-microservice/domain"
)

// MockLocalAuthService implements domain.LocalAuthService interface for testing
type MockLocalAuthService struct {
	LocalLoginFunc    func(ctx context.Context, email string) error
	LocalRegisterFunc func(ctx context.Context, reg domain.Registration) error
	VerifyOTPFunc     func(ctx context.Context, email, code string) (*domain.AuthResult, error)
}

// NewMockLocalAuthService creates a new MockLocalAuthService with default behaviors
func NewMockLocalAuthService() *MockLocalAuthService {
	return &MockLocalAuthService{}
}

// LocalLogin starts a login
func (m *MockLocalAuthService) LocalLogin(ctx context.Context, email string) error {
	if m.LocalLoginFunc != nil {
		return m.LocalLoginFunc(ctx, email)
	}
	return nil
}

// LocalRegister starts a registration
func (m *MockLocalAuthService) LocalRegister(ctx context.Context, reg domain.Registration) error {
	if m.LocalRegisterFunc != nil {
		return m.LocalRegisterFunc(ctx, reg)
	}
	return nil
}

// VerifyOTP completes a login or registration
func (m *MockLocalAuthService) VerifyOTP(ctx context.Context, email, code string) (*domain.AuthResult, error) {
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, email, code)
	}
	return nil, domain.ErrOTPNotFound
}

// MockOAuthService implements domain.OAuthService interface for testing
type MockOAuthService struct {
	LoginFunc func(ctx context.Context, provider, code string) (*domain.AuthResult, error)
}

// NewMockOAuthService creates a new MockOAuthService with default behaviors
func NewMockOAuthService() *MockOAuthService {
	return &MockOAuthService{}
}

// Login completes a provider login
func (m *MockOAuthService) Login(ctx context.Context, provider, code string) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, provider, code)
	}
	return nil, domain.ErrAuthProvider
}

// MockSessionService implements domain.SessionService interface for testing
type MockSessionService struct {
	LogoutFunc      func(ctx context.Context, sessionID string) error
	RefreshFunc     func(ctx context.Context, sessionID string) (*domain.SessionBinding, error)
	GetUserInfoFunc func(ctx context.Context, identityRef string) (*domain.Identity, error)
}

// NewMockSessionService creates a new MockSessionService with default behaviors
func NewMockSessionService() *MockSessionService {
	return &MockSessionService{}
}

// Logout ends a session
func (m *MockSessionService) Logout(ctx context.Context, sessionID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, sessionID)
	}
	return nil
}

// Refresh extends a session
func (m *MockSessionService) Refresh(ctx context.Context, sessionID string) (*domain.SessionBinding, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, sessionID)
	}
	return nil, domain.ErrSessionNotFound
}

// GetUserInfo loads the identity for a session
func (m *MockSessionService) GetUserInfo(ctx context.Context, identityRef string) (*domain.Identity, error) {
	if m.GetUserInfoFunc != nil {
		return m.GetUserInfoFunc(ctx, identityRef)
	}
	return nil, domain.ErrUserNotFound
}

// MockGuard implements domain.Guard interface for testing
type MockGuard struct {
	AuthenticateFunc func(ctx context.Context, sessionID string) (*domain.AuthenticatedIdentity, error)
}

// NewMockGuard creates a new MockGuard with default behaviors
func NewMockGuard() *MockGuard {
	return &MockGuard{}
}

// Authenticate resolves a session
func (m *MockGuard) Authenticate(ctx context.Context, sessionID string) (*domain.AuthenticatedIdentity, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, sessionID)
	}
	if sessionID == "" {
		return nil, domain.ErrNoSession
	}
	return nil, domain.ErrSessionNotFound
}

// Compile-time interface compliance verification
var (
	_ domain.LocalAuthService = (*MockLocalAuthService)(nil)
	_ domain.OAuthService     = (*MockOAuthService)(nil)
	_ domain.SessionService   = (*MockSessionService)(nil)
	_ domain.Guard            = (*MockGuard)(nil)
)
