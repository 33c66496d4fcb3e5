package domain

import (
	"testing"
	"time"
)

func TestOTPPurpose_Valid(t *testing.T) {
	tests := []struct {
		purpose  OTPPurpose
		expected bool
	}{
		{OTPPurposeLogin, true},
		{OTPPurposeRegister, true},
		{OTPPurpose(""), false},
		{OTPPurpose("reset"), false},
	}

	for _, tt := range tests {
		if got := tt.purpose.Valid(); got != tt.expected {
			t.Errorf("%q.Valid() = %v, expected %v", tt.purpose, got, tt.expected)
		}
	}
}

func TestOTPRecord_Expired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rec := &OTPRecord{ExpiresAt: now.Add(5 * time.Minute)}

	if rec.Expired(now) {
		t.Error("record should be live before expiry")
	}
	if !rec.Expired(now.Add(5 * time.Minute)) {
		t.Error("record should be expired exactly at expiry")
	}
	if !rec.Expired(now.Add(time.Hour)) {
		t.Error("record should be expired after expiry")
	}
}

func TestAuditEvent_Builders(t *testing.T) {
	event := NewAuditEvent(OTPVerifyFailureEvent).
		WithEmail("a@x.com").
		WithIdentity("id-1").
		WithSession("sess-1").
		WithMetadata("attempts", 2).
		WithError(ErrOTPInvalid)

	if event.EventType != OTPVerifyFailureEvent {
		t.Errorf("unexpected event type %s", event.EventType)
	}
	if event.Success {
		t.Error("WithError should mark the event unsuccessful")
	}
	if event.ErrorMsg != ErrOTPInvalid.Error() {
		t.Errorf("unexpected error message %q", event.ErrorMsg)
	}
	if event.Email != "a@x.com" || event.IdentityID != "id-1" || event.SessionID != "sess-1" {
		t.Errorf("fields not set: %+v", event)
	}
	if event.Metadata["attempts"] != 2 {
		t.Errorf("metadata not set: %+v", event.Metadata)
	}
	if event.Timestamp.Location() != time.UTC {
		t.Error("timestamp should be UTC")
	}
}

func TestAuditEvent_WithNilError(t *testing.T) {
	event := NewAuditEvent(OTPIssueFailureEvent).WithError(nil)
	if event.Success {
		t.Error("event should be unsuccessful")
	}
	if event.ErrorMsg != "" {
		t.Errorf("expected empty message, got %q", event.ErrorMsg)
	}
}

func TestOAuthProfile_DisplayName(t *testing.T) {
	tests := []struct {
		profile  OAuthProfile
		expected string
	}{
		{OAuthProfile{Email: "jane@x.com", FullName: "Jane Doe"}, "Jane Doe"},
		{OAuthProfile{Email: "jane@x.com", FullName: "  Jane  "}, "Jane"},
		{OAuthProfile{Email: "jane@x.com"}, "jane"},
		{OAuthProfile{Email: "jane@x.com", FullName: "   "}, "jane"},
		{OAuthProfile{}, ""},
	}

	for _, tt := range tests {
		if got := tt.profile.DisplayName(); got != tt.expected {
			t.Errorf("%+v.DisplayName() = %q, expected %q", tt.profile, got, tt.expected)
		}
	}
}
