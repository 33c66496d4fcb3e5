package audit

import (
	"context"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/alirezazamanidev/project-microservice/internal/requestctx"
	"github.com/rs/zerolog"
)

// LoggerImpl implements domain.AuditLogger by emitting one structured log line per event
type LoggerImpl struct {
	log zerolog.Logger
}

// NewLogger creates a new audit logger
func NewLogger(log zerolog.Logger) domain.AuditLogger {
	return &LoggerImpl{log: log.With().Str("component", "audit").Logger()}
}

// LogEvent implements domain.AuditLogger
func (l *LoggerImpl) LogEvent(ctx context.Context, event *domain.AuditEvent) {
	if event == nil {
		return
	}
	if event.CorrelationID == "" {
		event.CorrelationID = requestctx.CorrelationIDFromContext(ctx)
	}

	e := l.log.Info()
	if !event.Success {
		e = l.log.Warn()
	}
	e = e.Str("event_type", string(event.EventType)).
		Bool("success", event.Success).
		Time("event_time", event.Timestamp)
	if event.Email != "" {
		e = e.Str("email", event.Email)
	}
	if event.IdentityID != "" {
		e = e.Str("identity_id", event.IdentityID)
	}
	if event.SessionID != "" {
		e = e.Str("session_id", maskSession(event.SessionID))
	}
	if event.CorrelationID != "" {
		e = e.Str("correlation_id", event.CorrelationID)
	}
	if event.ErrorMsg != "" {
		e = e.Str("error", event.ErrorMsg)
	}
	if len(event.Metadata) > 0 {
		e = e.Fields(event.Metadata)
	}
	e.Msg("audit event")
}

// session ids are bearer credentials; only a prefix is logged
func maskSession(id string) string {
	if len(id) <= 8 {
		return "****"
	}
	return id[:8] + "****"
}
