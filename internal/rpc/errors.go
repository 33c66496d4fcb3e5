package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/nats-io/nats.go"
)

// CodeUnknown is used when a worker error carries a usable status but no code
const CodeUnknown domain.Code = "UNKNOWN_ERROR"

// Error is a classified call failure, ready to be written to a client
type Error struct {
	Code    domain.Code
	Status  int
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%d): %v", e.Code, e.Status, e.Err)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// Unwrap exposes the transport sentinel, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Classify turns a worker error body into an Error.
// A status in the HTTP error range with a message is surfaced as is. Otherwise a known
// code gets its table status and message, and anything else becomes a generic internal error.
func Classify(body *ErrorBody) *Error {
	if body == nil {
		return internalError(nil)
	}

	code := domain.Code(body.Code)
	if body.StatusCode >= 400 && body.StatusCode < 600 && body.Message != "" {
		if code == "" {
			code = CodeUnknown
		}
		return &Error{Code: code, Status: body.StatusCode, Message: body.Message, Details: body.Details}
	}

	if info, ok := domain.Lookup(code); ok {
		return &Error{Code: code, Status: info.Status, Message: info.Message, Details: body.Details}
	}
	return internalError(nil)
}

// classifyTransport maps a bus failure to the upstream timeout or unavailable outcome
func classifyTransport(err error) *Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, nats.ErrTimeout):
		return fromSentinel(domain.CodeUpstreamTimeout, domain.ErrUpstreamTimeout)
	case errors.Is(err, nats.ErrNoResponders),
		errors.Is(err, nats.ErrConnectionClosed),
		errors.Is(err, nats.ErrConnectionDraining),
		errors.Is(err, nats.ErrConnectionReconnecting),
		errors.Is(err, nats.ErrDisconnected),
		errors.Is(err, nats.ErrInvalidConnection):
		return fromSentinel(domain.CodeUpstreamUnavailable, domain.ErrUpstreamUnavailable)
	}
	return internalError(err)
}

func fromSentinel(code domain.Code, sentinel error) *Error {
	info := domain.InfoOf(code)
	return &Error{Code: code, Status: info.Status, Message: info.Message, Err: sentinel}
}

func internalError(err error) *Error {
	info := domain.InfoOf(domain.CodeInternal)
	return &Error{Code: domain.CodeInternal, Status: http.StatusInternalServerError, Message: info.Message, Err: err}
}

// errorBody builds the reply body for a handler error. Details of unrecognised errors
// never leave the worker.
func errorBody(err error) *ErrorBody {
	code := domain.CodeOf(err)
	info := domain.InfoOf(code)
	body := &ErrorBody{Code: string(code), StatusCode: info.Status, Message: info.Message}

	var coded *domain.CodedError
	if errors.As(err, &coded) {
		if coded.Message != "" {
			body.Message = coded.Message
		}
		body.Details = coded.Details
	}
	return body
}
