package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "already pending", err: ErrOTPAlreadyPending, expected: CodeOTPAlreadySent},
		{name: "not found collapses to expired", err: ErrOTPNotFound, expected: CodeOTPExpired},
		{name: "expired", err: ErrOTPExpired, expected: CodeOTPExpired},
		{name: "attempts exceeded", err: ErrOTPMaxAttempts, expected: CodeMaxOTPAttempts},
		{name: "invalid code", err: ErrOTPInvalid, expected: CodeOTPInvalid},
		{name: "user exists", err: ErrUserAlreadyExists, expected: CodeUserAlreadyExists},
		{name: "user missing", err: ErrUserNotFound, expected: CodeAccountNotFound},
		{name: "no session", err: ErrNoSession, expected: CodeUnauthorized},
		{name: "session missing", err: ErrSessionNotFound, expected: CodeUnauthorized},
		{name: "wrapped sentinel", err: fmt.Errorf("verify: %w", ErrOTPInvalid), expected: CodeOTPInvalid},
		{name: "unknown error", err: errors.New("connection reset by peer"), expected: CodeInternal},
		{
			name:     "coded error wins over sentinel",
			err:      NewCodedError(CodeGoogleAuthError, "", ErrAuthProvider),
			expected: CodeGoogleAuthError,
		},
		{
			name:     "wrapped coded error",
			err:      fmt.Errorf("login: %w", NewCodedError(CodeAppleAuthError, "", ErrAuthProvider)),
			expected: CodeAppleAuthError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.expected {
				t.Errorf("expected code %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestEveryMappedCodeHasTableEntry(t *testing.T) {
	for _, ec := range errorCodes {
		info, ok := Lookup(ec.code)
		if !ok {
			t.Errorf("code %s for %v has no table entry", ec.code, ec.err)
			continue
		}
		if info.Status < 400 || info.Status >= 600 {
			t.Errorf("code %s has non-error status %d", ec.code, info.Status)
		}
		if info.Message == "" {
			t.Errorf("code %s has empty message", ec.code)
		}
	}
}

func TestInfoOf_UnknownFallsBackToInternal(t *testing.T) {
	info := InfoOf(Code("SOMETHING_NEW"))
	if info.Status != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", info.Status)
	}
	if info != InfoOf(CodeInternal) {
		t.Error("expected internal error entry")
	}
}

func TestIsBusiness(t *testing.T) {
	tests := []struct {
		err      error
		expected bool
	}{
		{ErrOTPAlreadyPending, true},
		{ErrUserAlreadyExists, true},
		{ErrOTPInvalid, true},
		{ErrUpstreamTimeout, false},
		{ErrUpstreamUnavailable, false},
		{errors.New("boom"), false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := IsBusiness(tt.err); got != tt.expected {
			t.Errorf("IsBusiness(%v) = %v, expected %v", tt.err, got, tt.expected)
		}
	}
}

func TestCodedError(t *testing.T) {
	err := NewCodedError(CodeGoogleAuthError, "token exchange failed", ErrAuthProvider).
		WithDetails(map[string]any{"provider": "google"})

	if !errors.Is(err, ErrAuthProvider) {
		t.Error("coded error should unwrap to its sentinel")
	}
	if err.Error() != "GOOGLE_AUTH_ERROR: oauth provider exchange failed" {
		t.Errorf("unexpected error string %q", err.Error())
	}
	if err.Details["provider"] != "google" {
		t.Errorf("details not attached: %+v", err.Details)
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	all := []error{
		ErrUserNotFound, ErrUserAlreadyExists, ErrOTPAlreadyPending, ErrOTPNotFound,
		ErrOTPExpired, ErrOTPInvalid, ErrOTPMaxAttempts, ErrInvalidOTPFormat,
		ErrRegistrationExpired, ErrNoSession, ErrSessionNotFound, ErrEmailSendFailed,
		ErrAuthProvider, ErrUnknownProvider, ErrInvalidEmail, ErrValidation,
		ErrUpstreamTimeout, ErrUpstreamUnavailable,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}
