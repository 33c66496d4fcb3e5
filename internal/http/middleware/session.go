package middleware

import (
	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/alirezazamanidev/project-microservice/internal/http/response"
	"github.com/alirezazamanidev/project-microservice/internal/requestctx"
	"github.com/alirezazamanidev/project-microservice/internal/rpc"
	"github.com/gin-gonic/gin"
)

// Context keys set by RequireSession
const (
	ContextSessionID   = "session_id"
	ContextIdentityRef = "identity_ref"
	ContextIdentity    = "identity"
)

// HeaderSessionID lets non-browser clients present a session without a cookie
const HeaderSessionID = "X-Session-Id"

// SessionMW guards routes with the worker's session check
type SessionMW struct {
	rpc        rpc.Caller
	cookieName string
}

// NewSessionMW creates new session middleware
func NewSessionMW(caller rpc.Caller, cookieName string) *SessionMW {
	return &SessionMW{rpc: caller, cookieName: cookieName}
}

// SessionID returns the session id presented with the request, cookie first
func (mw *SessionMW) SessionID(c *gin.Context) string {
	if id, err := c.Cookie(mw.cookieName); err == nil && id != "" {
		return id
	}
	return c.GetHeader(HeaderSessionID)
}

// RequireSession rejects requests without a live session. A request presenting no session
// is refused without calling the worker.
func (mw *SessionMW) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := mw.SessionID(c)
		if sessionID == "" {
			response.Abort(c, domain.ErrNoSession)
			return
		}

		var authed domain.AuthenticatedIdentity
		err := mw.rpc.Call(c.Request.Context(), rpc.SubjectAuthenticate, rpc.SessionRequest{SessionID: sessionID}, &authed)
		if err != nil {
			response.Abort(c, err)
			return
		}

		ctx := requestctx.WithSessionID(c.Request.Context(), sessionID)
		ctx = requestctx.WithIdentityRef(ctx, authed.IdentityRef)
		c.Request = c.Request.WithContext(ctx)
		c.Set(ContextSessionID, sessionID)
		c.Set(ContextIdentityRef, authed.IdentityRef)
		if authed.Identity != nil {
			c.Set(ContextIdentity, authed.Identity)
		}
		c.Next()
	}
}
