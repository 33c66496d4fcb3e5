package repositories

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates an in-memory Redis instance for testing
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestSessionRepositoryImpl_Bind(t *testing.T) {
	tests := []struct {
		name          string
		sessionID     string
		identityRef   string
		ttl           time.Duration
		expectedError error
		validateData  func(t *testing.T, mr *miniredis.Miniredis, binding *domain.SessionBinding)
	}{
		{
			name:        "stores binding with ttl",
			sessionID:   "sess-1",
			identityRef: "id-1",
			ttl:         time.Hour,
			validateData: func(t *testing.T, mr *miniredis.Miniredis, binding *domain.SessionBinding) {
				assert.True(t, mr.Exists("sess:sess-1"))
				assert.Equal(t, time.Hour, mr.TTL("sess:sess-1"))

				raw, err := mr.Get("sess:sess-1")
				require.NoError(t, err)
				var stored domain.SessionBinding
				require.NoError(t, json.Unmarshal([]byte(raw), &stored))
				assert.Equal(t, "id-1", stored.IdentityRef)
				assert.Equal(t, binding.ExpiresAt.Sub(binding.BoundAt), time.Hour)
			},
		},
		{
			name:          "empty session id",
			sessionID:     "",
			identityRef:   "id-1",
			ttl:           time.Hour,
			expectedError: domain.ErrNoSession,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr, client := setupTestRedis(t)
			repo := NewSessionRepository(client)

			binding, err := repo.Bind(context.Background(), tt.sessionID, tt.identityRef, tt.ttl)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			if tt.validateData != nil {
				tt.validateData(t, mr, binding)
			}
		})
	}
}

func TestSessionRepositoryImpl_RebindOverwrites(t *testing.T) {
	_, client := setupTestRedis(t)
	repo := NewSessionRepository(client)
	ctx := context.Background()

	_, err := repo.Bind(ctx, "sess-1", "id-1", time.Hour)
	require.NoError(t, err)
	_, err = repo.Bind(ctx, "sess-1", "id-2", time.Hour)
	require.NoError(t, err)

	ref, err := repo.Resolve(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "id-2", ref)
}

func TestSessionRepositoryImpl_Resolve(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewSessionRepository(client)
	ctx := context.Background()

	_, err := repo.Resolve(ctx, "never-bound")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = repo.Bind(ctx, "sess-1", "id-1", time.Second)
	require.NoError(t, err)

	ref, err := repo.Resolve(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "id-1", ref)

	mr.FastForward(2 * time.Second)

	_, expiredErr := repo.Resolve(ctx, "sess-1")
	_, neverErr := repo.Resolve(ctx, "never-bound")
	assert.ErrorIs(t, expiredErr, domain.ErrSessionNotFound)
	assert.Equal(t, neverErr, expiredErr, "expired and never-bound must be indistinguishable")
}

func TestSessionRepositoryImpl_Touch(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewSessionRepository(client)
	ctx := context.Background()

	_, err := repo.Touch(ctx, "missing", time.Hour)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = repo.Bind(ctx, "sess-1", "id-1", 10*time.Second)
	require.NoError(t, err)
	mr.FastForward(8 * time.Second)

	binding, err := repo.Touch(ctx, "sess-1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "id-1", binding.IdentityRef)
	assert.Equal(t, time.Minute, mr.TTL("sess:sess-1"))

	mr.FastForward(30 * time.Second)
	ref, err := repo.Resolve(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "id-1", ref)
}

func TestSessionRepositoryImpl_Unbind(t *testing.T) {
	_, client := setupTestRedis(t)
	repo := NewSessionRepository(client)
	ctx := context.Background()

	_, err := repo.Bind(ctx, "sess-1", "id-1", time.Hour)
	require.NoError(t, err)

	require.NoError(t, repo.Unbind(ctx, "sess-1"))
	_, err = repo.Resolve(ctx, "sess-1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// idempotent
	assert.NoError(t, repo.Unbind(ctx, "sess-1"))
	assert.NoError(t, repo.Unbind(ctx, "never-bound"))
}
