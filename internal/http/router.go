package httpx

import (
	"github.com/alirezazamanidev/project-microservice/internal/http/handlers"
	"github.com/alirezazamanidev/project-microservice/internal/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// BuildRouter wires the gateway routes. /auth/me, /auth/session/refresh and /auth/logout need a session.
func BuildRouter(ah *handlers.AuthHandlers, hh *handlers.HealthHandlers, sessions *middleware.SessionMW, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Correlation(), middleware.RequestLogger(log), middleware.Recovery(log))

	r.GET("/health", hh.Health)

	auth := r.Group("/auth")
	auth.POST("/local/login", ah.LocalLogin)
	auth.POST("/local/register", ah.LocalRegister)
	auth.POST("/otp/verify", ah.VerifyOTP)
	auth.GET("/google/login", ah.GoogleLogin)
	auth.GET("/google/callback", ah.GoogleCallback)
	auth.GET("/apple/login", ah.AppleLogin)
	auth.POST("/apple/callback", ah.AppleCallback)

	guarded := auth.Group("", sessions.RequireSession())
	guarded.GET("/me", ah.Me)
	guarded.POST("/session/refresh", ah.Refresh)
	guarded.POST("/logout", ah.Logout)

	return r
}
