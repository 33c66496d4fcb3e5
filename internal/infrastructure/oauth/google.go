package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/alirezazamanidev/project-microservice/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleConfig describes the Google OAuth client. Endpoint and UserInfoURL default to Google's.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint
	UserInfoURL  string
	HTTPClient   *http.Client
}

// GoogleProvider implements domain.OAuthProvider for Google
type GoogleProvider struct {
	cfg         *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

// NewGoogleProvider creates a new Google provider
func NewGoogleProvider(c GoogleConfig) domain.OAuthProvider {
	endpoint := c.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	userInfoURL := c.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = googleUserInfoURL
	}
	return &GoogleProvider{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: userInfoURL,
		httpClient:  c.HTTPClient,
	}
}

// Name implements domain.OAuthProvider
func (p *GoogleProvider) Name() string { return "google" }

// AuthCodeURL returns the consent page a browser is sent to
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange implements domain.OAuthProvider
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*domain.OAuthProfile, error) {
	if code == "" {
		return nil, providerError(domain.CodeGoogleAuthError, "missing authorization code")
	}
	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}

	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, providerError(domain.CodeGoogleAuthError, "token exchange: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, providerError(domain.CodeGoogleAuthError, "userinfo request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, providerError(domain.CodeGoogleAuthError, "userinfo status %d", resp.StatusCode)
	}

	var payload struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, providerError(domain.CodeGoogleAuthError, "decode userinfo: %v", err)
	}

	return &domain.OAuthProfile{
		Email:         payload.Email,
		FullName:      payload.Name,
		Picture:       payload.Picture,
		EmailVerified: payload.EmailVerified,
	}, nil
}

func providerError(code domain.Code, format string, args ...any) error {
	return domain.NewCodedError(code, "", fmt.Errorf("%w: "+format, append([]any{domain.ErrAuthProvider}, args...)...))
}
