package oauth

import (
	"context"
	"net/http"
	"time"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/alirezazamanidev/project-microservice/internal/infrastructure/auth"
	"golang.org/x/oauth2"
)

var appleEndpoint = oauth2.Endpoint{
	AuthURL:   "https://appleid.apple.com/auth/authorize",
	TokenURL:  "https://appleid.apple.com/auth/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// AppleConfig describes the Sign in with Apple client. Endpoint defaults to Apple's.
type AppleConfig struct {
	ClientID    string
	RedirectURL string
	Signer      *auth.AppleSecretSigner
	Endpoint    oauth2.Endpoint
	HTTPClient  *http.Client
}

// AppleProvider implements domain.OAuthProvider for Sign in with Apple
type AppleProvider struct {
	cfg        oauth2.Config
	signer     *auth.AppleSecretSigner
	httpClient *http.Client
	now        func() time.Time
}

// NewAppleProvider creates a new Apple provider
func NewAppleProvider(c AppleConfig) domain.OAuthProvider {
	endpoint := c.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = appleEndpoint
	}
	return &AppleProvider{
		cfg: oauth2.Config{
			ClientID:    c.ClientID,
			RedirectURL: c.RedirectURL,
			Endpoint:    endpoint,
			Scopes:      []string{"name", "email"},
		},
		signer:     c.Signer,
		httpClient: c.HTTPClient,
		now:        time.Now,
	}
}

// Name implements domain.OAuthProvider
func (p *AppleProvider) Name() string { return "apple" }

// AuthCodeURL returns the consent page. Apple posts the result back as a form when
// name or email scopes are requested.
func (p *AppleProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("response_mode", "form_post"))
}

// Exchange implements domain.OAuthProvider. Apple carries the profile in the id_token;
// the display name is only posted to the redirect on first consent and is not part of it.
func (p *AppleProvider) Exchange(ctx context.Context, code string) (*domain.OAuthProfile, error) {
	if code == "" {
		return nil, providerError(domain.CodeAppleAuthError, "missing authorization code")
	}
	if p.signer == nil {
		return nil, providerError(domain.CodeAppleAuthError, "apple sign in is not configured")
	}
	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}

	secret, err := p.signer.Sign(p.now())
	if err != nil {
		return nil, providerError(domain.CodeAppleAuthError, "sign client secret: %v", err)
	}
	cfg := p.cfg
	cfg.ClientSecret = secret

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, providerError(domain.CodeAppleAuthError, "token exchange: %v", err)
	}
	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return nil, providerError(domain.CodeAppleAuthError, "token response has no id_token")
	}

	claims, err := auth.ParseAppleIDToken(idToken, p.cfg.ClientID, p.now())
	if err != nil {
		return nil, providerError(domain.CodeAppleAuthError, "%v", err)
	}

	return &domain.OAuthProfile{
		Email:         claims.Email,
		EmailVerified: claims.Verified(),
	}, nil
}
