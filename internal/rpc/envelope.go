package rpc

import (
	"encoding/json"
	"time"
)

// HeaderCorrelationID carries the correlation id next to the trace context
const HeaderCorrelationID = "X-Correlation-Id"

// Request is the envelope every call puts on the bus
type Request struct {
	CorrelationID string          `json:"correlationId"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// Reply is the envelope every handler answers with. Exactly one of Data and Error is set.
type Reply struct {
	CorrelationID string          `json:"correlationId"`
	Data          json.RawMessage `json:"data,omitempty"`
	Error         *ErrorBody      `json:"error,omitempty"`
}

// ErrorBody is the structured failure a worker returns
type ErrorBody struct {
	Code       string         `json:"code"`
	StatusCode int            `json:"statusCode,omitempty"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}
