package mocks

import (
	"context"

	"github.com/alirezazamanidev/project-microservice/domain"
)

// MockOTPService implements domain.OTPService interface for testing
type MockOTPService struct {
	IssueFunc   func(ctx context.Context, email string, purpose domain.OTPPurpose) (*domain.OTPRecord, error)
	VerifyFunc  func(ctx context.Context, email, code string) (*domain.VerificationResult, error)
	HasLiveFunc func(ctx context.Context, email string) (bool, error)
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

// Issue issues a code
func (m *MockOTPService) Issue(ctx context.Context, email string, purpose domain.OTPPurpose) (*domain.OTPRecord, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, email, purpose)
	}
	return &domain.OTPRecord{Email: email, Code: "123456", Purpose: purpose}, nil
}

// Verify verifies a code
func (m *MockOTPService) Verify(ctx context.Context, email, code string) (*domain.VerificationResult, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, email, code)
	}
	return nil, domain.ErrOTPNotFound
}

// HasLive reports whether a code is pending
func (m *MockOTPService) HasLive(ctx context.Context, email string) (bool, error) {
	if m.HasLiveFunc != nil {
		return m.HasLiveFunc(ctx, email)
	}
	return false, nil
}

// Compile-time interface compliance verification
var _ domain.OTPService = (*MockOTPService)(nil)
