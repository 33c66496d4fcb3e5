package middleware

import (
	"github.com/alirezazamanidev/project-microservice/internal/requestctx"
	"github.com/alirezazamanidev/project-microservice/internal/rpc"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextCorrelationID is the gin context key holding the request's correlation id
const ContextCorrelationID = "correlation_id"

const maxCorrelationIDLength = 128

// Correlation tags every request with a correlation id. A client supplied id is kept when it
// looks sane, otherwise a new one is generated. The id is echoed in the response header.
func Correlation() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(rpc.HeaderCorrelationID)
		if id == "" || len(id) > maxCorrelationIDLength {
			id = uuid.NewString()
		}

		c.Set(ContextCorrelationID, id)
		c.Request = c.Request.WithContext(requestctx.WithCorrelationID(c.Request.Context(), id))
		c.Header(rpc.HeaderCorrelationID, id)
		c.Next()
	}
}
