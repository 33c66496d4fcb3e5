package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/alirezazamanidev/project-microservice/domain"
)

// MockCodeHasher implements domain.CodeHasher interface for testing.
// The default "hash" is the code with a prefix so tests can compare cheaply.
type MockCodeHasher struct {
	HashFunc   func(code string) (string, error)
	VerifyFunc func(hash, code string) bool
}

// NewMockCodeHasher creates a new MockCodeHasher with default behaviors
func NewMockCodeHasher() *MockCodeHasher {
	return &MockCodeHasher{}
}

// Hash hashes a code
func (m *MockCodeHasher) Hash(code string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(code)
	}
	return "hashed_" + code, nil
}

// Verify compares a code to a hash
func (m *MockCodeHasher) Verify(hash, code string) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(hash, code)
	}
	return hash == "hashed_"+code
}

// MockMailer implements domain.Mailer interface for testing and records what was sent
type MockMailer struct {
	SendOTPFunc func(ctx context.Context, email, code string, purpose domain.OTPPurpose, ttl time.Duration) error

	mu   sync.Mutex
	sent map[string]string
}

// NewMockMailer creates a new MockMailer with default behaviors
func NewMockMailer() *MockMailer {
	return &MockMailer{sent: make(map[string]string)}
}

// SendOTP delivers a code
func (m *MockMailer) SendOTP(ctx context.Context, email, code string, purpose domain.OTPPurpose, ttl time.Duration) error {
	if m.SendOTPFunc != nil {
		if err := m.SendOTPFunc(ctx, email, code, purpose, ttl); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sent == nil {
		m.sent = make(map[string]string)
	}
	m.sent[email] = code
	return nil
}

// LastCode returns the last code delivered to email
func (m *MockMailer) LastCode(email string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.sent[email]
	return code, ok
}

// MockOAuthProvider implements domain.OAuthProvider interface for testing
type MockOAuthProvider struct {
	NameValue    string
	ExchangeFunc func(ctx context.Context, code string) (*domain.OAuthProfile, error)
}

// NewMockOAuthProvider creates a new MockOAuthProvider named name
func NewMockOAuthProvider(name string) *MockOAuthProvider {
	return &MockOAuthProvider{NameValue: name}
}

// Name returns the provider name
func (m *MockOAuthProvider) Name() string { return m.NameValue }

// Exchange exchanges a code for a profile
func (m *MockOAuthProvider) Exchange(ctx context.Context, code string) (*domain.OAuthProfile, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code)
	}
	return nil, domain.ErrAuthProvider
}

// MockAuditLogger implements domain.AuditLogger interface for testing and keeps every event
type MockAuditLogger struct {
	mu     sync.Mutex
	Events []*domain.AuditEvent
}

// NewMockAuditLogger creates a new MockAuditLogger
func NewMockAuditLogger() *MockAuditLogger {
	return &MockAuditLogger{}
}

// LogEvent records an event
func (m *MockAuditLogger) LogEvent(_ context.Context, event *domain.AuditEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

// Types returns the recorded event types in order
func (m *MockAuditLogger) Types() []domain.AuditEventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]domain.AuditEventType, 0, len(m.Events))
	for _, e := range m.Events {
		types = append(types, e.EventType)
	}
	return types
}

// Compile-time interface compliance verification
var (
	_ domain.CodeHasher    = (*MockCodeHasher)(nil)
	_ domain.Mailer        = (*MockMailer)(nil)
	_ domain.OAuthProvider = (*MockOAuthProvider)(nil)
	_ domain.AuditLogger   = (*MockAuditLogger)(nil)
)
