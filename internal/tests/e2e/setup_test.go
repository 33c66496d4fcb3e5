package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/alirezazamanidev/project-microservice/internal/app"
	"github.com/alirezazamanidev/project-microservice/internal/config"
	"github.com/alirezazamanidev/project-microservice/internal/http/handlers"
	"github.com/alirezazamanidev/project-microservice/internal/infrastructure/database"
	"github.com/alirezazamanidev/project-microservice/internal/mocks"
	"github.com/alirezazamanidev/project-microservice/internal/rpc"
)

const frontendURL = "http://localhost:3000/"

// TestSuite runs the gateway and the auth worker in one process: gateway router → rpc client →
// in-memory bus → worker server → real services on miniredis and in-memory SQLite.
type TestSuite struct {
	Config    *config.Config
	Redis     *miniredis.Miniredis
	DB        *gorm.DB
	Bus       *rpc.MemoryBus
	Container *app.Container
	Worker    *rpc.Server
	Router    *gin.Engine
	Mailer    *mocks.MockMailer
	Google    *mocks.MockOAuthProvider
	Apple     *mocks.MockOAuthProvider
	Logs      *syncBuffer
}

// NewTestSuite builds an isolated suite for one test
func NewTestSuite(t *testing.T, opts ...func(*config.Config)) *TestSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.OTP.BcryptCost = bcrypt.MinCost
	cfg.NATS.RPCTimeout = 2 * time.Second
	cfg.NATS.HealthTimeout = 500 * time.Millisecond
	cfg.App.FrontendURL = frontendURL
	for _, opt := range opts {
		opt(cfg)
	}
	require.NoError(t, cfg.Validate())

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	logs := &syncBuffer{}
	log := zerolog.New(logs).Level(zerolog.DebugLevel).With().Timestamp().Logger()

	s := &TestSuite{
		Config: cfg,
		Redis:  mr,
		DB:     db,
		Bus:    rpc.NewMemoryBus(),
		Mailer: mocks.NewMockMailer(),
		Google: mocks.NewMockOAuthProvider("google"),
		Apple:  mocks.NewMockOAuthProvider("apple"),
		Logs:   logs,
	}

	s.Container = &app.Container{
		Config:      cfg,
		Log:         log,
		DB:          db,
		RedisClient: rdb,
		Mailer:      s.Mailer,
		Providers:   []domain.OAuthProvider{s.Google, s.Apple},
	}
	s.Container.Wire()

	s.Worker = app.NewWorkerServer(s.Bus, s.Container)
	require.NoError(t, s.Worker.Start())
	t.Cleanup(s.Worker.Stop)

	s.Router = app.NewGatewayRouter(s.Bus, cfg, log, map[string]handlers.ConsentURLer{
		"google": consentStub("https://accounts.google.test/auth"),
		"apple":  consentStub("https://appleid.apple.test/auth"),
	})
	return s
}

// NewBrowser returns a cookie-keeping client for the suite's gateway
func (s *TestSuite) NewBrowser(t *testing.T) *Browser {
	return &Browser{t: t, handler: s.Router, cookies: make(map[string]*http.Cookie)}
}

// LastCode returns the code most recently mailed to email
func (s *TestSuite) LastCode(t *testing.T, email string) string {
	t.Helper()
	code, ok := s.Mailer.LastCode(email)
	require.True(t, ok, "no code mailed to %s", email)
	return code
}

// WorkerLogs returns the decoded log lines the worker's rpc server wrote while handling requests
func (s *TestSuite) WorkerLogs(t *testing.T) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range s.Logs.Lines() {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if _, handled := entry["correlation_id"]; handled && entry["component"] == "rpc_server" {
			out = append(out, entry)
		}
	}
	return out
}

type consentStub string

func (c consentStub) AuthCodeURL(state string) string { return string(c) + "?state=" + state }

// Browser replays cookies the gateway sets, like a browser would
type Browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
	header  http.Header
}

// Do sends a request and records the cookies in the response
func (b *Browser) Do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	for k, v := range b.header {
		req.Header[k] = v
	}

	w := httptest.NewRecorder()
	b.handler.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

// PostJSON sends body as JSON to path
func (b *Browser) PostJSON(path string, body any) *httptest.ResponseRecorder {
	b.t.Helper()
	data, err := json.Marshal(body)
	require.NoError(b.t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return b.Do(req)
}

// Get sends a GET to path
func (b *Browser) Get(path string) *httptest.ResponseRecorder {
	b.t.Helper()
	return b.Do(httptest.NewRequest(http.MethodGet, path, nil))
}

// PostForm sends form to path url-encoded
func (b *Browser) PostForm(path, form string) *httptest.ResponseRecorder {
	b.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.Do(req)
}

// SetHeader adds a header to every later request
func (b *Browser) SetHeader(key, value string) {
	if b.header == nil {
		b.header = make(http.Header)
	}
	b.header.Set(key, value)
}

// Cookie returns the stored cookie value, or "" when absent
func (b *Browser) Cookie(name string) string {
	if c, ok := b.cookies[name]; ok {
		return c.Value
	}
	return ""
}

// syncBuffer is a goroutine-safe log sink
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Split(strings.TrimSpace(b.buf.String()), "\n")
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code          string         `json:"code"`
		Message       string         `json:"message"`
		Details       map[string]any `json:"details"`
		Path          string         `json:"path"`
		CorrelationID string         `json:"correlationId"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	return env
}
