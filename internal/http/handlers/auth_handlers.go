package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/alirezazamanidev/project-microservice/internal/http/middleware"
	"github.com/alirezazamanidev/project-microservice/internal/http/response"
	"github.com/alirezazamanidev/project-microservice/internal/rpc"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	stateCookieName = "oauth_state"
	stateCookieTTL  = 10 * time.Minute
)

// ConsentURLer builds a provider's consent page URL
type ConsentURLer interface {
	AuthCodeURL(state string) string
}

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string
	Domain string
	Secure bool
	MaxAge time.Duration
}

// AuthHandlers forwards authentication requests to the auth worker
type AuthHandlers struct {
	rpc         rpc.Caller
	cookie      CookieConfig
	frontendURL string
	providers   map[string]ConsentURLer
}

// NewAuthHandlers creates new auth handlers. providers maps "google" and "apple" to their
// consent URL builders; a missing provider disables its login redirect.
func NewAuthHandlers(caller rpc.Caller, cookie CookieConfig, frontendURL string, providers map[string]ConsentURLer) *AuthHandlers {
	return &AuthHandlers{
		rpc:         caller,
		cookie:      cookie,
		frontendURL: frontendURL,
		providers:   providers,
	}
}

// LocalLoginRequest represents a login request
type LocalLoginRequest struct {
	Email string `json:"email" binding:"required"`
}

// LocalRegisterRequest represents a registration request
type LocalRegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	FullName string `json:"fullName" binding:"required"`
}

// VerifyOTPRequest represents an OTP verification request
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

// LocalLogin sends a login code to an existing account
func (h *AuthHandlers) LocalLogin(c *gin.Context) {
	var req LocalLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	var reply rpc.MessageReply
	if err := h.rpc.Call(c.Request.Context(), rpc.SubjectLocalLogin, rpc.LocalLoginRequest{Email: req.Email}, &reply); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, reply.Message)
}

// LocalRegister starts a registration and sends its code
func (h *AuthHandlers) LocalRegister(c *gin.Context) {
	var req LocalRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	var reply rpc.MessageReply
	payload := rpc.LocalRegisterRequest{Email: req.Email, FullName: req.FullName}
	if err := h.rpc.Call(c.Request.Context(), rpc.SubjectLocalRegister, payload, &reply); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, reply.Message)
}

// VerifyOTP completes a login or registration and sets the session cookie
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	var result domain.AuthResult
	if err := h.rpc.Call(c.Request.Context(), rpc.SubjectVerifyOTP, rpc.VerifyOTPRequest{Email: req.Email, OTP: req.OTP}, &result); err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, result.SessionID, result.ExpiresAt)
	response.OK(c, gin.H{
		"user":      result.Identity,
		"purpose":   result.Purpose,
		"expiresAt": result.ExpiresAt,
	})
}

// GoogleLogin redirects the browser to Google's consent page
func (h *AuthHandlers) GoogleLogin(c *gin.Context) {
	h.startOAuth(c, "google")
}

// AppleLogin redirects the browser to Apple's consent page
func (h *AuthHandlers) AppleLogin(c *gin.Context) {
	h.startOAuth(c, "apple")
}

// GoogleCallback finishes a Google login and redirects to the frontend
func (h *AuthHandlers) GoogleCallback(c *gin.Context) {
	h.finishOAuth(c, rpc.SubjectGoogleLogin, c.Query("code"), c.Query("state"))
}

// AppleCallback finishes an Apple login. Apple posts the code as a form.
func (h *AuthHandlers) AppleCallback(c *gin.Context) {
	h.finishOAuth(c, rpc.SubjectAppleLogin, c.PostForm("code"), c.PostForm("state"))
}

// Me returns the identity behind the current session
func (h *AuthHandlers) Me(c *gin.Context) {
	var identity domain.Identity
	req := rpc.UserInfoRequest{IdentityRef: c.GetString(middleware.ContextIdentityRef)}
	if err := h.rpc.Call(c.Request.Context(), rpc.SubjectGetUserInfo, req, &identity); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, identity)
}

// Refresh extends the current session and re-issues the cookie
func (h *AuthHandlers) Refresh(c *gin.Context) {
	sessionID := c.GetString(middleware.ContextSessionID)

	var binding domain.SessionBinding
	if err := h.rpc.Call(c.Request.Context(), rpc.SubjectRefreshSession, rpc.SessionRequest{SessionID: sessionID}, &binding); err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookie(c, sessionID, binding.ExpiresAt)
	response.OK(c, gin.H{"expiresAt": binding.ExpiresAt})
}

// Logout ends the current session and clears the cookie
func (h *AuthHandlers) Logout(c *gin.Context) {
	sessionID := c.GetString(middleware.ContextSessionID)

	var reply rpc.MessageReply
	if err := h.rpc.Call(c.Request.Context(), rpc.SubjectLogout, rpc.SessionRequest{SessionID: sessionID}, &reply); err != nil {
		response.Error(c, err)
		return
	}

	h.clearCookie(c, h.cookie.Name)
	response.Message(c, reply.Message)
}

func (h *AuthHandlers) startOAuth(c *gin.Context, provider string) {
	consent, ok := h.providers[provider]
	if !ok {
		response.Error(c, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, provider))
		return
	}

	state := uuid.NewString()
	h.setStateCookie(c, state)
	c.Redirect(http.StatusFound, consent.AuthCodeURL(state))
}

// finishOAuth checks the state against the cookie set by startOAuth, runs the login on the
// worker and redirects to the frontend. Failures are reported to the frontend by code.
func (h *AuthHandlers) finishOAuth(c *gin.Context, subject, code, state string) {
	expected, _ := c.Cookie(stateCookieName)
	h.clearCookie(c, stateCookieName)

	if code == "" || state == "" || state != expected {
		h.redirectToFrontend(c, domain.CodeValidation)
		return
	}

	var result domain.AuthResult
	if err := h.rpc.Call(c.Request.Context(), subject, rpc.OAuthLoginRequest{Code: code}, &result); err != nil {
		h.redirectToFrontend(c, response.CodeFor(err))
		return
	}

	h.setSessionCookie(c, result.SessionID, result.ExpiresAt)
	h.redirectToFrontend(c, "")
}

func (h *AuthHandlers) redirectToFrontend(c *gin.Context, code domain.Code) {
	target := h.frontendURL
	if code != "" {
		if u, err := url.Parse(h.frontendURL); err == nil {
			q := u.Query()
			q.Set("error", string(code))
			u.RawQuery = q.Encode()
			target = u.String()
		}
	}
	c.Redirect(http.StatusFound, target)
}

func (h *AuthHandlers) setSessionCookie(c *gin.Context, sessionID string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = int(h.cookie.MaxAge.Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, sessionID, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}

// setStateCookie must survive Apple's cross-site form post, which needs SameSite=None
// and therefore a secure cookie.
func (h *AuthHandlers) setStateCookie(c *gin.Context, state string) {
	if h.cookie.Secure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(stateCookieName, state, int(stateCookieTTL.Seconds()), "/auth", h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandlers) clearCookie(c *gin.Context, name string) {
	path := "/"
	if name == stateCookieName {
		path = "/auth"
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, path, h.cookie.Domain, h.cookie.Secure, true)
}

func bindError(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}
