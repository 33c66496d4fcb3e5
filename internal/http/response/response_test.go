package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/alirezazamanidev/project-microservice/internal/requestctx"
	"github.com/alirezazamanidev/project-microservice/internal/rpc"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedCode    string
		expectedMessage string
	}{
		{
			name:            "classified rpc error is written as is",
			err:             &rpc.Error{Code: domain.CodeOTPAlreadySent, Status: http.StatusTooManyRequests, Message: "wait"},
			expectedStatus:  http.StatusTooManyRequests,
			expectedCode:    "OTP_ALREADY_SENT",
			expectedMessage: "wait",
		},
		{
			name:            "local sentinel uses the table",
			err:             fmt.Errorf("bind: %w", domain.ErrValidation),
			expectedStatus:  http.StatusBadRequest,
			expectedCode:    "VALIDATION_ERROR",
			expectedMessage: domain.InfoOf(domain.CodeValidation).Message,
		},
		{
			name:            "no session",
			err:             domain.ErrNoSession,
			expectedStatus:  http.StatusUnauthorized,
			expectedCode:    "UNAUTHORIZED",
			expectedMessage: domain.InfoOf(domain.CodeUnauthorized).Message,
		},
		{
			name:            "unknown error never leaks",
			err:             errors.New("runtime error: index out of range"),
			expectedStatus:  http.StatusInternalServerError,
			expectedCode:    "INTERNAL_ERROR",
			expectedMessage: domain.InfoOf(domain.CodeInternal).Message,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			c.Request = req.WithContext(requestctx.WithCorrelationID(req.Context(), "corr-1"))

			Error(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var body ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.expectedCode, body.Error.Code)
			assert.Equal(t, tt.expectedMessage, body.Error.Message)
			assert.Equal(t, "/auth/me", body.Error.Path)
			assert.Equal(t, "corr-1", body.Error.CorrelationID)
			assert.False(t, body.Error.Timestamp.IsZero())
		})
	}
}
