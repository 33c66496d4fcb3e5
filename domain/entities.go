package domain

import (
	"strings"
	"time"
)

// OTPPurpose tells the verifier which flow an OTP completes
type OTPPurpose string

const (
	OTPPurposeLogin    OTPPurpose = "login"
	OTPPurposeRegister OTPPurpose = "register"
)

// Valid reports whether p is a known purpose
func (p OTPPurpose) Valid() bool {
	return p == OTPPurposeLogin || p == OTPPurposeRegister
}

// OTPRecord is the single live one-time code held for an email.
// Code is only populated on the record returned from issuance; the store keeps CodeHash.
type OTPRecord struct {
	ID        string
	Email     string
	Code      string
	CodeHash  string
	Purpose   OTPPurpose
	ExpiresAt time.Time
	Attempts  int
}

// Expired reports whether the record is past its expiry at now
func (r *OTPRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// VerificationResult is returned by a successful OTP verification
type VerificationResult struct {
	Email   string     `json:"email"`
	Purpose OTPPurpose `json:"purpose"`
}

// Identity represents a verified user account
type Identity struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	PictureURL    string    `json:"pictureUrl,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// OAuthProfile is what an OAuth provider exchange yields
type OAuthProfile struct {
	Email         string `json:"email"`
	FullName      string `json:"fullName"`
	Picture       string `json:"picture,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

// DisplayName is the name the provider sent, or the email's local part when it sent none.
// Apple only shares a name on first consent.
func (p OAuthProfile) DisplayName() string {
	if name := strings.TrimSpace(p.FullName); name != "" {
		return name
	}
	local, _, _ := strings.Cut(p.Email, "@")
	return local
}

// Registration carries the fields for a local sign-up
type Registration struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// PendingRegistration holds sign-up data until the registration OTP is verified
type PendingRegistration struct {
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionBinding maps an opaque session id to the identity it authenticates
type SessionBinding struct {
	SessionID   string    `json:"sessionId"`
	IdentityRef string    `json:"identityRef"`
	BoundAt     time.Time `json:"boundAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// AuthResult represents a completed authentication
type AuthResult struct {
	Identity  *Identity  `json:"identity"`
	SessionID string     `json:"sessionId"`
	ExpiresAt time.Time  `json:"expiresAt"`
	Purpose   OTPPurpose `json:"purpose,omitempty"`
}

// AuthenticatedIdentity is what the guard attaches to a request
type AuthenticatedIdentity struct {
	SessionID   string    `json:"sessionId"`
	IdentityRef string    `json:"identityRef"`
	Identity    *Identity `json:"identity"`
}
