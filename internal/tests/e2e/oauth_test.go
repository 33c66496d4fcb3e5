package e2e

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alirezazamanidev/project-microservice/domain"
)

// startOAuth follows the gateway's redirect to the consent page and returns the state it chose
func startOAuth(t *testing.T, browser *Browser, provider string) string {
	t.Helper()
	w := browser.Get("/auth/" + provider + "/login")
	require.Equal(t, http.StatusFound, w.Code)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	assert.Equal(t, state, browser.Cookie("oauth_state"))
	return state
}

func redirectError(t *testing.T, w *http.Response) string {
	t.Helper()
	loc, err := url.Parse(w.Header.Get("Location"))
	require.NoError(t, err)
	return loc.Query().Get("error")
}

func TestGoogleLoginFlow(t *testing.T) {
	suite := NewTestSuite(t)
	suite.Google.ExchangeFunc = func(_ context.Context, code string) (*domain.OAuthProfile, error) {
		if code != "google-code" {
			return nil, errors.New("unexpected code " + code)
		}
		return &domain.OAuthProfile{Email: "G.User@Example.com", FullName: "G User", EmailVerified: true}, nil
	}
	browser := suite.NewBrowser(t)

	state := startOAuth(t, browser, "google")
	w := browser.Get("/auth/google/callback?code=google-code&state=" + state)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, frontendURL, w.Header().Get("Location"))
	assert.NotEmpty(t, browser.Cookie("sessionId"))
	assert.Empty(t, browser.Cookie("oauth_state"), "state cookie is single use")

	w = browser.Get("/auth/me")
	require.Equal(t, http.StatusOK, w.Code)
	var me domain.Identity
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &me))
	assert.Equal(t, "g.user@example.com", me.Email)
	assert.Equal(t, "G User", me.FullName)
}

func TestAppleLoginFlow(t *testing.T) {
	suite := NewTestSuite(t)
	suite.Apple.ExchangeFunc = func(context.Context, string) (*domain.OAuthProfile, error) {
		return &domain.OAuthProfile{Email: "apple@example.com", EmailVerified: true}, nil
	}
	browser := suite.NewBrowser(t)

	state := startOAuth(t, browser, "apple")
	w := browser.PostForm("/auth/apple/callback", url.Values{"code": {"apple-code"}, "state": {state}}.Encode())

	require.Equal(t, http.StatusFound, w.Code)
	assert.Empty(t, redirectError(t, w.Result()))
	assert.NotEmpty(t, browser.Cookie("sessionId"))

	w = browser.Get("/auth/me")
	require.Equal(t, http.StatusOK, w.Code)
	var me domain.Identity
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &me))
	assert.Equal(t, "apple", me.FullName)
}

func TestOAuthLoginFlow_Failures(t *testing.T) {
	tests := []struct {
		name          string
		exchange      func(context.Context, string) (*domain.OAuthProfile, error)
		forgeState    bool
		expectedError domain.Code
	}{
		{
			name: "provider rejects the code",
			exchange: func(context.Context, string) (*domain.OAuthProfile, error) {
				return nil, errors.New("invalid_grant")
			},
			expectedError: domain.CodeGoogleAuthError,
		},
		{
			name: "unverified provider email",
			exchange: func(context.Context, string) (*domain.OAuthProfile, error) {
				return &domain.OAuthProfile{Email: "unverified@example.com"}, nil
			},
			expectedError: domain.CodeGoogleAuthError,
		},
		{
			name:          "forged state never reaches the provider",
			forgeState:    true,
			expectedError: domain.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suite := NewTestSuite(t)
			called := false
			suite.Google.ExchangeFunc = func(ctx context.Context, code string) (*domain.OAuthProfile, error) {
				called = true
				return tt.exchange(ctx, code)
			}
			browser := suite.NewBrowser(t)

			state := startOAuth(t, browser, "google")
			if tt.forgeState {
				state += "-forged"
			}
			w := browser.Get("/auth/google/callback?code=c&state=" + state)

			require.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, string(tt.expectedError), redirectError(t, w.Result()))
			assert.Empty(t, browser.Cookie("sessionId"))
			assert.Equal(t, !tt.forgeState, called)
		})
	}
}

// A provider login and a local login for one email resolve to one identity
func TestOAuthThenLocalLoginShareIdentity(t *testing.T) {
	suite := NewTestSuite(t)
	email := "both@example.com"
	suite.Google.ExchangeFunc = func(context.Context, string) (*domain.OAuthProfile, error) {
		return &domain.OAuthProfile{Email: email, FullName: "Both Ways", EmailVerified: true}, nil
	}

	viaGoogle := suite.NewBrowser(t)
	state := startOAuth(t, viaGoogle, "google")
	require.Equal(t, http.StatusFound, viaGoogle.Get("/auth/google/callback?code=c&state="+state).Code)

	w := viaGoogle.Get("/auth/me")
	require.Equal(t, http.StatusOK, w.Code)
	var googleIdentity domain.Identity
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &googleIdentity))

	viaEmail := suite.NewBrowser(t)
	require.Equal(t, http.StatusOK, viaEmail.PostJSON("/auth/local/login", map[string]string{"email": email}).Code)
	w = viaEmail.PostJSON("/auth/otp/verify", map[string]string{"email": email, "otp": suite.LastCode(t, email)})
	require.Equal(t, http.StatusOK, w.Code)

	w = viaEmail.Get("/auth/me")
	require.Equal(t, http.StatusOK, w.Code)
	var localIdentity domain.Identity
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &localIdentity))

	assert.Equal(t, googleIdentity.ID, localIdentity.ID)
	assert.NotEqual(t, viaGoogle.Cookie("sessionId"), viaEmail.Cookie("sessionId"))

	var count int64
	require.NoError(t, suite.DB.Table("identities").Where("email = ?", email).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
