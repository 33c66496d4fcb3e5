package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/alirezazamanidev/project-microservice/internal/requestctx"
	"github.com/alirezazamanidev/project-microservice/internal/rpc"
	"github.com/gin-gonic/gin"
)

// ErrorDetail is the client-facing description of a failure
type ErrorDetail struct {
	Code          string         `json:"code"`
	Message       string         `json:"message"`
	Details       map[string]any `json:"details"`
	Timestamp     time.Time      `json:"timestamp"`
	Path          string         `json:"path"`
	CorrelationID string         `json:"correlationId,omitempty"`
}

// ErrorBody is written for every failed request
type ErrorBody struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// SuccessBody is written for every successful request
type SuccessBody struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK writes data with status 200
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, SuccessBody{Success: true, Data: data})
}

// Message writes a bare success message with status 200
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessBody{Success: true, Message: message})
}

// Error writes err using its classified code, status and message.
// Errors that were not classified by the rpc client are mapped through the domain code table.
func Error(c *gin.Context, err error) {
	rerr := classify(err)
	c.JSON(rerr.Status, ErrorBody{
		Success: false,
		Error: ErrorDetail{
			Code:          string(rerr.Code),
			Message:       rerr.Message,
			Details:       rerr.Details,
			Timestamp:     time.Now().UTC(),
			Path:          c.Request.URL.Path,
			CorrelationID: requestctx.CorrelationIDFromContext(c.Request.Context()),
		},
	})
}

// Abort writes err and stops the handler chain
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// CodeFor returns the code err would be written with
func CodeFor(err error) domain.Code {
	return classify(err).Code
}

func classify(err error) *rpc.Error {
	var rerr *rpc.Error
	if errors.As(err, &rerr) {
		return rerr
	}

	code := domain.CodeOf(err)
	info := domain.InfoOf(code)
	out := &rpc.Error{Code: code, Status: info.Status, Message: info.Message, Err: err}
	var coded *domain.CodedError
	if errors.As(err, &coded) {
		if coded.Message != "" {
			out.Message = coded.Message
		}
		out.Details = coded.Details
	}
	return out
}
