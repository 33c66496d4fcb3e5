package domain

import "errors"

// Identity errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// OTP errors
var (
	ErrOTPAlreadyPending = errors.New("otp already pending")
	ErrOTPNotFound       = errors.New("otp not found")
	ErrOTPExpired        = errors.New("otp has expired")
	ErrOTPInvalid        = errors.New("invalid otp code")
	ErrOTPMaxAttempts    = errors.New("maximum otp attempts exceeded")
	ErrInvalidOTPFormat  = errors.New("otp code has invalid format")
)

// Registration errors
var (
	ErrRegistrationExpired = errors.New("pending registration expired")
)

// Session errors
var (
	ErrNoSession       = errors.New("no session presented")
	ErrSessionNotFound = errors.New("session not found")
)

// Collaborator errors
var (
	ErrEmailSendFailed = errors.New("failed to deliver otp email")
	ErrAuthProvider    = errors.New("oauth provider exchange failed")
	ErrUnknownProvider = errors.New("unknown oauth provider")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrValidation      = errors.New("validation failed")
)

// Transport errors
var (
	ErrUpstreamTimeout     = errors.New("upstream call timed out")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)
