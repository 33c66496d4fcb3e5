package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newGoogleTestServer(t *testing.T, userInfo map[string]any, userInfoStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "google-tok",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer google-tok" {
			t.Errorf("wrong auth header: %q", auth)
		}
		if userInfoStatus != http.StatusOK {
			w.WriteHeader(userInfoStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(userInfo)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestGoogleProvider(server *httptest.Server) domain.OAuthProvider {
	return NewGoogleProvider(GoogleConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/auth/google/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: server.URL + "/auth", TokenURL: server.URL + "/token"},
		UserInfoURL:  server.URL + "/userinfo",
		HTTPClient:   server.Client(),
	})
}

func TestGoogleProvider_Exchange(t *testing.T) {
	server := newGoogleTestServer(t, map[string]any{
		"email":          "alice@example.com",
		"email_verified": true,
		"name":           "Alice",
		"picture":        "https://p/alice.png",
	}, http.StatusOK)
	provider := newTestGoogleProvider(server)

	assert.Equal(t, "google", provider.Name())

	profile, err := provider.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, &domain.OAuthProfile{
		Email:         "alice@example.com",
		FullName:      "Alice",
		Picture:       "https://p/alice.png",
		EmailVerified: true,
	}, profile)
}

func TestGoogleProvider_ExchangeFailures(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		status int
	}{
		{name: "empty code", code: "", status: http.StatusOK},
		{name: "rejected code", code: "bad-code", status: http.StatusOK},
		{name: "userinfo failure", code: "good-code", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newGoogleTestServer(t, map[string]any{"email": "a@x.com"}, tt.status)
			provider := newTestGoogleProvider(server)

			_, err := provider.Exchange(context.Background(), tt.code)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrAuthProvider)
			assert.Equal(t, domain.CodeGoogleAuthError, domain.CodeOf(err))

			var coded *domain.CodedError
			require.True(t, errors.As(err, &coded))
			assert.Empty(t, coded.Message, "provider detail must not become the client message")
		})
	}
}
