package handlers

import (
	"net/http"
	"time"

	"github.com/alirezazamanidev/project-microservice/internal/rpc"
	"github.com/gin-gonic/gin"
)

// HealthHandlers reports the gateway's view of the workers
type HealthHandlers struct {
	rpc rpc.Caller
}

// NewHealthHandlers creates health handlers. caller should carry the short health timeout.
func NewHealthHandlers(caller rpc.Caller) *HealthHandlers {
	return &HealthHandlers{rpc: caller}
}

// Health pings the auth worker
func (h *HealthHandlers) Health(c *gin.Context) {
	var reply rpc.HealthReply
	auth := "up"
	if err := h.rpc.Call(c.Request.Context(), rpc.SubjectHealthCheck, nil, &reply); err != nil {
		auth = "down"
	} else if reply.Status != "ok" {
		auth = reply.Status
	}

	status, code := "ok", http.StatusOK
	switch auth {
	case "up":
	case "down":
		status, code = "error", http.StatusServiceUnavailable
	default:
		status = "degraded"
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"services": gin.H{
			"auth": gin.H{"status": auth, "checks": reply.Checks},
		},
	})
}
