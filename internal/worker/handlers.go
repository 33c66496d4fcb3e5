package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/alirezazamanidev/project-microservice/internal/rpc"
)

// ServiceName identifies the worker in health replies
const ServiceName = "auth-service"

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// Handlers maps worker subjects onto the auth services
type Handlers struct {
	local    domain.LocalAuthService
	oauth    domain.OAuthService
	sessions domain.SessionService
	guard    domain.Guard
	checks   map[string]HealthCheck
}

// NewHandlers creates the subject handlers. checks are run by the health subject.
func NewHandlers(
	local domain.LocalAuthService,
	oauth domain.OAuthService,
	sessions domain.SessionService,
	guard domain.Guard,
	checks map[string]HealthCheck,
) *Handlers {
	return &Handlers{
		local:    local,
		oauth:    oauth,
		sessions: sessions,
		guard:    guard,
		checks:   checks,
	}
}

// Register adds every auth subject to srv
func (h *Handlers) Register(srv *rpc.Server) {
	srv.Handle(rpc.SubjectLocalLogin, rpc.Bind(h.localLogin))
	srv.Handle(rpc.SubjectLocalRegister, rpc.Bind(h.localRegister))
	srv.Handle(rpc.SubjectVerifyOTP, rpc.Bind(h.verifyOTP))
	srv.Handle(rpc.SubjectGoogleLogin, rpc.Bind(h.oauthLogin("google")))
	srv.Handle(rpc.SubjectAppleLogin, rpc.Bind(h.oauthLogin("apple")))
	srv.Handle(rpc.SubjectAuthenticate, rpc.Bind(h.authenticate))
	srv.Handle(rpc.SubjectGetUserInfo, rpc.Bind(h.getUserInfo))
	srv.Handle(rpc.SubjectLogout, rpc.Bind(h.logout))
	srv.Handle(rpc.SubjectRefreshSession, rpc.Bind(h.refreshSession))
	srv.Handle(rpc.SubjectHealthCheck, rpc.Bind(h.health))
}

func (h *Handlers) localLogin(ctx context.Context, req rpc.LocalLoginRequest) (any, error) {
	if err := h.local.LocalLogin(ctx, req.Email); err != nil {
		return nil, err
	}
	return rpc.MessageReply{Message: "Verification code sent to your email."}, nil
}

func (h *Handlers) localRegister(ctx context.Context, req rpc.LocalRegisterRequest) (any, error) {
	err := h.local.LocalRegister(ctx, domain.Registration{Email: req.Email, FullName: req.FullName})
	if err != nil {
		return nil, err
	}
	return rpc.MessageReply{Message: "Verification code sent to your email. Complete registration by verifying it."}, nil
}

func (h *Handlers) verifyOTP(ctx context.Context, req rpc.VerifyOTPRequest) (any, error) {
	return h.local.VerifyOTP(ctx, req.Email, strings.TrimSpace(req.OTP))
}

func (h *Handlers) oauthLogin(provider string) func(context.Context, rpc.OAuthLoginRequest) (any, error) {
	return func(ctx context.Context, req rpc.OAuthLoginRequest) (any, error) {
		if req.Code == "" {
			return nil, fmt.Errorf("%w: authorization code is required", domain.ErrValidation)
		}
		return h.oauth.Login(ctx, provider, req.Code)
	}
}

func (h *Handlers) authenticate(ctx context.Context, req rpc.SessionRequest) (any, error) {
	return h.guard.Authenticate(ctx, req.SessionID)
}

func (h *Handlers) getUserInfo(ctx context.Context, req rpc.UserInfoRequest) (any, error) {
	if req.IdentityRef == "" {
		return nil, domain.ErrNoSession
	}
	return h.sessions.GetUserInfo(ctx, req.IdentityRef)
}

func (h *Handlers) logout(ctx context.Context, req rpc.SessionRequest) (any, error) {
	if req.SessionID == "" {
		return nil, domain.ErrNoSession
	}
	if err := h.sessions.Logout(ctx, req.SessionID); err != nil {
		return nil, err
	}
	return rpc.MessageReply{Message: "Logged out."}, nil
}

func (h *Handlers) refreshSession(ctx context.Context, req rpc.SessionRequest) (any, error) {
	return h.sessions.Refresh(ctx, req.SessionID)
}

// health reports "ok" only when every dependency answers
func (h *Handlers) health(ctx context.Context, _ struct{}) (any, error) {
	reply := rpc.HealthReply{
		Status:    "ok",
		Service:   ServiceName,
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]string, len(h.checks)),
	}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			reply.Status = "degraded"
			reply.Checks[name] = "down"
			continue
		}
		reply.Checks[name] = "up"
	}
	return reply, nil
}
