package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks for the YAML file when no path is given
const DefaultPath = "config/config.yml"

type AppConfig struct {
	Env          string `yaml:"env" env:"ENV"`
	LogLevel     string `yaml:"log_level" env:"LOG_LEVEL"`
	HTTPAddr     string `yaml:"http_addr" env:"HTTP_ADDR"`
	FrontendURL  string `yaml:"frontend_url" env:"FRONTEND_URL"`
	CookieDomain string `yaml:"cookie_domain" env:"COOKIE_DOMAIN"`
	CookieSecure bool   `yaml:"cookie_secure" env:"COOKIE_SECURE"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"DSN"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

type NATSConfig struct {
	URL           string        `yaml:"url" env:"URL"`
	QueueGroup    string        `yaml:"queue_group" env:"QUEUE_GROUP"`
	RPCTimeout    time.Duration `yaml:"rpc_timeout" env:"RPC_TIMEOUT"`
	HealthTimeout time.Duration `yaml:"health_timeout" env:"HEALTH_TIMEOUT"`
}

type OTPConfig struct {
	Length      int           `yaml:"length" env:"LENGTH"`
	TTL         time.Duration `yaml:"ttl" env:"TTL"`
	MaxAttempts int           `yaml:"max_attempts" env:"MAX_ATTEMPTS"`
	BcryptCost  int           `yaml:"bcrypt_cost" env:"BCRYPT_COST"`
}

type SessionConfig struct {
	TTL time.Duration `yaml:"ttl" env:"TTL"`
	// RegistrationTTL bounds a pending sign-up. Zero follows otp.ttl.
	RegistrationTTL time.Duration `yaml:"registration_ttl" env:"REGISTRATION_TTL"`
	CookieName      string        `yaml:"cookie_name" env:"COOKIE_NAME"`
}

type SMTPConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	Username string `yaml:"username" env:"USERNAME"`
	Password string `yaml:"password" env:"PASSWORD"`
	From     string `yaml:"from" env:"FROM"`
}

type GoogleConfig struct {
	ClientID     string `yaml:"client_id" env:"CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"CLIENT_SECRET"`
	RedirectURL  string `yaml:"redirect_url" env:"REDIRECT_URL"`
}

type AppleConfig struct {
	ClientID    string `yaml:"client_id" env:"CLIENT_ID"`
	TeamID      string `yaml:"team_id" env:"TEAM_ID"`
	KeyID       string `yaml:"key_id" env:"KEY_ID"`
	PrivateKey  string `yaml:"private_key" env:"PRIVATE_KEY"`
	RedirectURL string `yaml:"redirect_url" env:"REDIRECT_URL"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"EXPORTER_OTLP_ENDPOINT"`
}

type Config struct {
	App       AppConfig       `yaml:"app" envPrefix:"APP_"`
	Database  DatabaseConfig  `yaml:"database" envPrefix:"DB_"`
	Redis     RedisConfig     `yaml:"redis" envPrefix:"REDIS_"`
	NATS      NATSConfig      `yaml:"nats" envPrefix:"NATS_"`
	OTP       OTPConfig       `yaml:"otp" envPrefix:"OTP_"`
	Session   SessionConfig   `yaml:"session" envPrefix:"SESSION_"`
	SMTP      SMTPConfig      `yaml:"smtp" envPrefix:"SMTP_"`
	Google    GoogleConfig    `yaml:"google" envPrefix:"GOOGLE_"`
	Apple     AppleConfig     `yaml:"apple" envPrefix:"APPLE_"`
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"OTEL_"`
}

// Default returns the configuration used when neither file nor environment override a value
func Default() *Config {
	return &Config{
		App: AppConfig{
			Env:         "local",
			LogLevel:    "info",
			HTTPAddr:    ":8080",
			FrontendURL: "http://localhost:3000",
		},
		Database: DatabaseConfig{
			DSN: "host=localhost user=postgres password=postgres dbname=auth port=5432 sslmode=disable",
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		NATS: NATSConfig{
			URL:           "nats://localhost:4222",
			QueueGroup:    "auth-service",
			RPCTimeout:    60 * time.Second,
			HealthTimeout: 5 * time.Second,
		},
		OTP: OTPConfig{
			Length:      6,
			TTL:         5 * time.Minute,
			MaxAttempts: 3,
			BcryptCost:  10,
		},
		Session: SessionConfig{
			TTL:        7 * 24 * time.Hour,
			CookieName: "sessionId",
		},
		SMTP: SMTPConfig{Port: 587, From: "no-reply@localhost"},
	}
}

// Load reads the YAML file at path (skipped when absent), then .env, then the process
// environment. Later sources win.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	cfg := Default()

	if err := loadConfigFile(path, cfg); err != nil {
		return nil, err
	}

	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	bytes, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not read config file at %s: %w", path, err)
	}
	if err := yaml.Unmarshal(bytes, cfg); err != nil {
		return fmt.Errorf("could not parse config yaml: %w", err)
	}
	return nil
}

// PendingRegistrationTTL is how long sign-up data waits for its code
func (c *Config) PendingRegistrationTTL() time.Duration {
	if c.Session.RegistrationTTL > 0 {
		return c.Session.RegistrationTTL
	}
	return c.OTP.TTL
}

// Validate rejects values no component can run with
func (c *Config) Validate() error {
	var errs []error
	if c.OTP.Length < 4 || c.OTP.Length > 10 {
		errs = append(errs, fmt.Errorf("otp.length must be between 4 and 10, got %d", c.OTP.Length))
	}
	if c.OTP.TTL <= 0 {
		errs = append(errs, errors.New("otp.ttl must be positive"))
	}
	if c.OTP.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("otp.max_attempts must be at least 1, got %d", c.OTP.MaxAttempts))
	}
	if c.OTP.BcryptCost < 4 || c.OTP.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("otp.bcrypt_cost out of range: %d", c.OTP.BcryptCost))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if c.Session.RegistrationTTL != 0 && c.Session.RegistrationTTL < c.OTP.TTL {
		errs = append(errs, errors.New("session.registration_ttl must outlive otp.ttl"))
	}
	if c.Session.CookieName == "" {
		errs = append(errs, errors.New("session.cookie_name is required"))
	}
	if c.NATS.RPCTimeout <= 0 {
		errs = append(errs, errors.New("nats.rpc_timeout must be positive"))
	}
	if c.NATS.HealthTimeout <= 0 {
		errs = append(errs, errors.New("nats.health_timeout must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
