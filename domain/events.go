package domain

import (
	"context"
	"time"
)

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	// OTP events
	OTPIssuedEvent            AuditEventType = "OTP_ISSUED"
	OTPIssueFailureEvent      AuditEventType = "OTP_ISSUE_FAILED"
	OTPVerifiedEvent          AuditEventType = "OTP_VERIFIED"
	OTPVerifyFailureEvent     AuditEventType = "OTP_VERIFICATION_FAILED"
	OTPAttemptsExhaustedEvent AuditEventType = "OTP_ATTEMPTS_EXHAUSTED"

	// Identity events
	IdentityRegisteredEvent AuditEventType = "IDENTITY_REGISTERED"
	IdentityUpsertedEvent   AuditEventType = "IDENTITY_UPSERTED"

	// Session events
	SessionBoundEvent   AuditEventType = "SESSION_BOUND"
	SessionUnboundEvent AuditEventType = "SESSION_UNBOUND"
)

// AuditEvent represents a business event that occurred in the system
type AuditEvent struct {
	EventType     AuditEventType `json:"event_type"`
	Email         string         `json:"email,omitempty"`
	IdentityID    string         `json:"identity_id,omitempty"`
	SessionID     string         `json:"session_id,omitempty"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	ErrorMsg      string         `json:"error_msg,omitempty"`
	Success       bool           `json:"success"`
}

// AuditLogger records audit events
type AuditLogger interface {
	LogEvent(ctx context.Context, event *AuditEvent)
}

// NewAuditEvent creates a new audit event with common fields populated
func NewAuditEvent(eventType AuditEventType) *AuditEvent {
	return &AuditEvent{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]any),
		Success:   true,
	}
}

// WithError sets error information on the audit event
func (e *AuditEvent) WithError(err error) *AuditEvent {
	e.Success = false
	if err != nil {
		e.ErrorMsg = err.Error()
	}
	return e
}

// WithEmail sets the email field
func (e *AuditEvent) WithEmail(email string) *AuditEvent {
	e.Email = email
	return e
}

// WithIdentity sets the identity id
func (e *AuditEvent) WithIdentity(identityID string) *AuditEvent {
	e.IdentityID = identityID
	return e
}

// WithSession sets the session id
func (e *AuditEvent) WithSession(sessionID string) *AuditEvent {
	e.SessionID = sessionID
	return e
}

// WithMetadata adds metadata to the event
func (e *AuditEvent) WithMetadata(key string, value any) *AuditEvent {
	e.Metadata[key] = value
	return e
}
