package domain

import (
	"context"
	"time"
)

// OTPStore defines OTP record persistence. Every mutation is a single atomic store operation.
type OTPStore interface {
	Create(ctx context.Context, record *OTPRecord, ttl time.Duration) error
	RecordAttempt(ctx context.Context, email string, now time.Time, maxAttempts int) (*OTPRecord, error)
	Consume(ctx context.Context, email, recordID string) (bool, error)
	Get(ctx context.Context, email string) (*OTPRecord, error)
	Delete(ctx context.Context, email string) error
}

// OTPService defines OTP issuance and verification
type OTPService interface {
	Issue(ctx context.Context, email string, purpose OTPPurpose) (*OTPRecord, error)
	Verify(ctx context.Context, email, code string) (*VerificationResult, error)
	HasLive(ctx context.Context, email string) (bool, error)
}

// IdentityRepository defines identity data access operations
type IdentityRepository interface {
	UpsertFromOAuth(ctx context.Context, profile OAuthProfile) (*Identity, error)
	CreateFromRegistration(ctx context.Context, reg Registration) (*Identity, error)
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	FindByID(ctx context.Context, id string) (*Identity, error)
	MarkEmailVerified(ctx context.Context, email string) error
}

// SessionDirectory defines session binding operations
type SessionDirectory interface {
	Bind(ctx context.Context, sessionID, identityRef string, ttl time.Duration) (*SessionBinding, error)
	Resolve(ctx context.Context, sessionID string) (string, error)
	Touch(ctx context.Context, sessionID string, ttl time.Duration) (*SessionBinding, error)
	Unbind(ctx context.Context, sessionID string) error
}

// PendingRegistrationStore holds sign-up data between OTP issue and verification.
// Save creates only; it fails with ErrOTPAlreadyPending when a record already exists.
type PendingRegistrationStore interface {
	Save(ctx context.Context, pending *PendingRegistration, ttl time.Duration) error
	Take(ctx context.Context, email string) (*PendingRegistration, error)
	Delete(ctx context.Context, email string) error
}

// CodeHasher hashes OTP codes at rest
type CodeHasher interface {
	Hash(code string) (string, error)
	Verify(hash, code string) bool
}

// Mailer delivers OTP codes
type Mailer interface {
	SendOTP(ctx context.Context, email, code string, purpose OTPPurpose, ttl time.Duration) error
}

// OAuthProvider exchanges an authorization code for a verified profile
type OAuthProvider interface {
	Name() string
	Exchange(ctx context.Context, code string) (*OAuthProfile, error)
}

// LocalAuthService defines the email + OTP flows
type LocalAuthService interface {
	LocalLogin(ctx context.Context, email string) error
	LocalRegister(ctx context.Context, reg Registration) error
	VerifyOTP(ctx context.Context, email, code string) (*AuthResult, error)
}

// OAuthService defines the provider login flow
type OAuthService interface {
	Login(ctx context.Context, provider, code string) (*AuthResult, error)
}

// SessionService defines session lifecycle operations outside of login
type SessionService interface {
	Logout(ctx context.Context, sessionID string) error
	Refresh(ctx context.Context, sessionID string) (*SessionBinding, error)
	GetUserInfo(ctx context.Context, identityRef string) (*Identity, error)
}

// Guard resolves a session id to a live identity
type Guard interface {
	Authenticate(ctx context.Context, sessionID string) (*AuthenticatedIdentity, error)
}
