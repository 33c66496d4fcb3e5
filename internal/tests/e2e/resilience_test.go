package e2e

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/alirezazamanidev/project-microservice/internal/config"
	"github.com/alirezazamanidev/project-microservice/internal/rpc"
)

func TestCorrelationIDReachesWorker(t *testing.T) {
	suite := NewTestSuite(t)
	browser := suite.NewBrowser(t)
	browser.SetHeader(rpc.HeaderCorrelationID, "e2e-corr-1")

	w := browser.PostJSON("/auth/local/login", map[string]string{"email": "ghost@example.com"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "e2e-corr-1", w.Header().Get(rpc.HeaderCorrelationID))
	assert.Equal(t, "e2e-corr-1", decode(t, w).Error.CorrelationID)

	found := false
	for _, entry := range suite.WorkerLogs(t) {
		if entry["correlation_id"] == "e2e-corr-1" && entry["subject"] == rpc.SubjectLocalLogin {
			found = true
			assert.Equal(t, string(domain.CodeAccountNotFound), entry["code"])
		}
	}
	assert.True(t, found, "worker never logged the gateway's correlation id")
}

// A call that outlives its deadline is reported as a timeout and is not retried. The worker
// still finishes the work it started.
func TestUpstreamTimeout(t *testing.T) {
	suite := NewTestSuite(t, func(c *config.Config) { c.NATS.RPCTimeout = 100 * time.Millisecond })
	email := "patient@example.com"
	registerUser(t, suite, suite.NewBrowser(t), email, "Patient")

	release := make(chan struct{})
	var releaseOnce sync.Once
	unblock := func() { releaseOnce.Do(func() { close(release) }) }
	t.Cleanup(unblock)
	delivered := make(chan string, 1)
	suite.Mailer.SendOTPFunc = func(_ context.Context, _, code string, _ domain.OTPPurpose, _ time.Duration) error {
		<-release
		delivered <- code
		return nil
	}

	browser := suite.NewBrowser(t)
	w := browser.PostJSON("/auth/local/login", map[string]string{"email": email})
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, string(domain.CodeUpstreamTimeout), decode(t, w).Error.Code)

	// the worker created the code before it stalled; a retry would be refused
	w = browser.PostJSON("/auth/local/login", map[string]string{"email": email})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	unblock()
	var code string
	select {
	case code = <-delivered:
	case <-time.After(5 * time.Second):
		t.Fatal("worker never finished the timed out call")
	}

	w = browser.PostJSON("/auth/otp/verify", map[string]string{"email": email, "otp": code})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUpstreamUnavailable(t *testing.T) {
	suite := NewTestSuite(t)
	suite.Worker.Stop()
	browser := suite.NewBrowser(t)

	w := browser.PostJSON("/auth/local/login", map[string]string{"email": "anyone@example.com"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, string(domain.CodeUpstreamUnavailable), decode(t, w).Error.Code)

	w = browser.Get("/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"error"`)
}

func TestHealth(t *testing.T) {
	suite := NewTestSuite(t, func(c *config.Config) { c.NATS.HealthTimeout = 3 * time.Second })
	browser := suite.NewBrowser(t)

	w := browser.Get("/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"redis":"up"`)
	assert.Contains(t, w.Body.String(), `"postgres":"up"`)

	suite.Redis.Close()
	w = browser.Get("/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	assert.Contains(t, w.Body.String(), `"redis":"down"`)
}
