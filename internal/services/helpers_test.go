package services

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/alirezazamanidev/project-microservice/internal/infrastructure/repositories"
	"github.com/alirezazamanidev/project-microservice/internal/mocks"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testOTPLength = 6

func testOTPConfig() OTPConfig {
	return OTPConfig{Length: testOTPLength, TTL: 5 * time.Minute, MaxAttempts: 3}
}

func testSessionConfig() SessionConfig {
	return SessionConfig{SessionTTL: 7 * 24 * time.Hour, RegistrationTTL: 5 * time.Minute}
}

// testStack wires the services over real stores backed by miniredis and in-memory SQLite
type testStack struct {
	mr         *miniredis.Miniredis
	identities domain.IdentityRepository
	otpStore   domain.OTPStore
	sessions   domain.SessionDirectory
	pending    domain.PendingRegistrationStore
	mailer     *mocks.MockMailer
	audit      *mocks.MockAuditLogger

	otp     domain.OTPService
	local   domain.LocalAuthService
	session domain.SessionService
	guard   domain.Guard
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&repositories.DBIdentity{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	s := &testStack{
		mr:         mr,
		identities: repositories.NewIdentityRepository(db),
		otpStore:   repositories.NewOTPRepository(client),
		sessions:   repositories.NewSessionRepository(client),
		pending:    repositories.NewPendingRegistrationRepository(client),
		mailer:     mocks.NewMockMailer(),
		audit:      mocks.NewMockAuditLogger(),
	}
	s.otp = NewOTPService(s.otpStore, mocks.NewMockCodeHasher(), s.mailer, s.audit, zerolog.Nop(), testOTPConfig())
	s.local = NewLocalAuthService(s.identities, s.otp, s.pending, s.sessions, s.audit, zerolog.Nop(), testSessionConfig())
	s.session = NewSessionService(s.sessions, s.identities, s.audit, testSessionConfig().SessionTTL)
	s.guard = NewGuard(s.sessions, s.identities)
	return s
}

// lastCode returns the code most recently mailed to email
func (s *testStack) lastCode(t *testing.T, email string) string {
	t.Helper()
	code, ok := s.mailer.LastCode(email)
	if !ok {
		t.Fatalf("no code was mailed to %s", email)
	}
	return code
}

// wrongCode returns a well-formed code that differs from code
func wrongCode(code string) string {
	if code == "999999" {
		return "111111"
	}
	return "999999"
}

func createValidIdentity(t *testing.T) *domain.Identity {
	t.Helper()

	return &domain.Identity{
		ID:            "0b6c0d0e-2f44-4a8a-9d0b-6a1f3e7c2b11",
		Email:         "test@example.com",
		FullName:      "Test User",
		EmailVerified: true,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
}
