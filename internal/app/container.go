package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/alirezazamanidev/project-microservice/domain"
	"github.com/alirezazamanidev/project-microservice/internal/config"
	"github.com/alirezazamanidev/project-microservice/internal/infrastructure/audit"
	"github.com/alirezazamanidev/project-microservice/internal/infrastructure/auth"
	"github.com/alirezazamanidev/project-microservice/internal/infrastructure/database"
	"github.com/alirezazamanidev/project-microservice/internal/infrastructure/notifications"
	"github.com/alirezazamanidev/project-microservice/internal/infrastructure/oauth"
	"github.com/alirezazamanidev/project-microservice/internal/infrastructure/repositories"
	"github.com/alirezazamanidev/project-microservice/internal/services"
	"github.com/alirezazamanidev/project-microservice/internal/worker"
)

// Container holds the auth worker's dependencies
type Container struct {
	// Config
	Config *config.Config
	Log    zerolog.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client

	// Collaborators
	Mailer    domain.Mailer
	Hasher    domain.CodeHasher
	Audit     domain.AuditLogger
	Providers []domain.OAuthProvider

	// Repositories
	Identities domain.IdentityRepository
	OTPStore   domain.OTPStore
	Sessions   domain.SessionDirectory
	Pending    domain.PendingRegistrationStore

	// Services
	OTPSvc     domain.OTPService
	LocalAuth  domain.LocalAuthService
	OAuthSvc   domain.OAuthService
	SessionSvc domain.SessionService
	Guard      domain.Guard
}

// NewContainer connects to Postgres and Redis and wires every service
func NewContainer(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Log: log}

	if err := c.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := c.initRedis(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := c.initCollaborators(); err != nil {
		_ = c.Close()
		return nil, err
	}

	c.Wire()
	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	db, err := database.Open(ctx, c.Config.Database.DSN, c.Log)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	c.DB = db
	return nil
}

func (c *Container) initRedis(ctx context.Context) error {
	rdb, err := database.NewRedis(ctx, c.Config.Redis.Addr, c.Config.Redis.Password, c.Config.Redis.DB, c.Log)
	if err != nil {
		return err
	}
	c.RedisClient = rdb
	return nil
}

func (c *Container) initCollaborators() error {
	smtp := c.Config.SMTP
	mailer, err := notifications.NewMailer(smtp.Host, smtp.Port, smtp.Username, smtp.Password, smtp.From, c.Log)
	if err != nil {
		return err
	}
	c.Mailer = mailer

	providers, err := BuildProviders(c.Config)
	if err != nil {
		return err
	}
	c.Providers = providers
	return nil
}

// Wire builds repositories and services on top of DB, RedisClient and the collaborators.
// Collaborators left nil get their production implementation.
func (c *Container) Wire() {
	if c.Hasher == nil {
		c.Hasher = auth.NewCodeHasher(c.Config.OTP.BcryptCost)
	}
	if c.Audit == nil {
		c.Audit = audit.NewLogger(c.Log)
	}
	if c.Mailer == nil {
		c.Mailer = notifications.NewLogMailer(c.Log)
	}

	c.Identities = repositories.NewIdentityRepository(c.DB)
	c.OTPStore = repositories.NewOTPRepository(c.RedisClient)
	c.Sessions = repositories.NewSessionRepository(c.RedisClient)
	c.Pending = repositories.NewPendingRegistrationRepository(c.RedisClient)

	otpConfig := services.OTPConfig{
		Length:      c.Config.OTP.Length,
		TTL:         c.Config.OTP.TTL,
		MaxAttempts: c.Config.OTP.MaxAttempts,
	}
	sessionConfig := services.SessionConfig{
		SessionTTL:      c.Config.Session.TTL,
		RegistrationTTL: c.Config.PendingRegistrationTTL(),
	}

	c.OTPSvc = services.NewOTPService(c.OTPStore, c.Hasher, c.Mailer, c.Audit, c.Log, otpConfig)
	c.LocalAuth = services.NewLocalAuthService(c.Identities, c.OTPSvc, c.Pending, c.Sessions, c.Audit, c.Log, sessionConfig)
	c.OAuthSvc = services.NewOAuthService(c.Identities, c.Sessions, c.Audit, c.Log, sessionConfig, c.Providers...)
	c.SessionSvc = services.NewSessionService(c.Sessions, c.Identities, c.Audit, c.Config.Session.TTL)
	c.Guard = services.NewGuard(c.Sessions, c.Identities)
}

// Handlers returns the worker's subject handlers
func (c *Container) Handlers() *worker.Handlers {
	return worker.NewHandlers(c.LocalAuth, c.OAuthSvc, c.SessionSvc, c.Guard, c.HealthChecks())
}

// HealthChecks probes the stores the worker cannot serve without
func (c *Container) HealthChecks() map[string]worker.HealthCheck {
	return map[string]worker.HealthCheck{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := c.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return c.RedisClient.Ping(ctx).Err()
		},
	}
}

// Close closes all connections
func (c *Container) Close() error {
	var errs []error
	if c.RedisClient != nil {
		errs = append(errs, c.RedisClient.Close())
	}
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			errs = append(errs, err)
		} else {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

// BuildProviders creates the OAuth providers that have credentials configured
func BuildProviders(cfg *config.Config) ([]domain.OAuthProvider, error) {
	var providers []domain.OAuthProvider

	if g := cfg.Google; g.ClientID != "" {
		providers = append(providers, oauth.NewGoogleProvider(oauth.GoogleConfig{
			ClientID:     g.ClientID,
			ClientSecret: g.ClientSecret,
			RedirectURL:  g.RedirectURL,
		}))
	}

	if a := cfg.Apple; a.ClientID != "" {
		signer, err := auth.NewAppleSecretSigner(a.TeamID, a.ClientID, a.KeyID, a.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("apple client secret: %w", err)
		}
		providers = append(providers, oauth.NewAppleProvider(oauth.AppleConfig{
			ClientID:    a.ClientID,
			RedirectURL: a.RedirectURL,
			Signer:      signer,
		}))
	}

	return providers, nil
}
