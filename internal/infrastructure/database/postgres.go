package database

import (
	"context"
	"fmt"
	"time"

	"github.com/alirezazamanidev/project-microservice/internal/infrastructure/repositories"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open creates a new database connection, retrying while the server comes up
func Open(ctx context.Context, dsn string, log zerolog.Logger) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	var db *gorm.DB
	op := func() error {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), config)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return backoff.Permanent(err)
		}
		return sqlDB.PingContext(ctx)
	}
	if err := retry(ctx, op, "postgres", log); err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// AutoMigrate performs database migration for all required tables
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&repositories.DBIdentity{}); err != nil {
		return fmt.Errorf("failed to migrate identities table: %w", err)
	}
	return nil
}

func retry(ctx context.Context, op backoff.Operation, target string, log zerolog.Logger) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 30 * time.Second

	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("target", target).Dur("retry_in", wait).Msg("connection attempt failed")
	}
	return backoff.RetryNotify(op, backoff.WithContext(bo, ctx), notify)
}
