package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/alirezazamanidev/project-microservice/internal/config"
	"github.com/alirezazamanidev/project-microservice/internal/infrastructure/database"
	"github.com/alirezazamanidev/project-microservice/internal/logging"
)

// Preflight check: connects to every store the auth worker needs, using the worker's settings
func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	timeout := flag.Duration("timeout", 30*time.Second, "give up after this long")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.App.Env, cfg.App.LogLevel, "test-db")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Println("Auth worker preflight")
	fmt.Println("=====================")

	failed := false
	check := func(name string, fn func() error) {
		if err := fn(); err != nil {
			fmt.Printf("✗ %s: %v\n", name, err)
			failed = true
			return
		}
		fmt.Printf("✓ %s\n", name)
	}

	check("postgres", func() error {
		db, err := database.Open(ctx, cfg.Database.DSN, logger)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		var count int64
		if err := db.Table("identities").Count(&count).Error; err != nil {
			return fmt.Errorf("query identities: %w", err)
		}
		fmt.Printf("  identities table accessible (current count: %d)\n", count)
		return nil
	})

	check("redis", func() error {
		rdb, err := database.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			return err
		}
		return rdb.Close()
	})

	check("nats", func() error {
		nc, err := database.ConnectNATS(ctx, cfg.NATS.URL, "test-db", logger)
		if err != nil {
			return err
		}
		defer nc.Close()
		return nc.FlushWithContext(ctx)
	})

	if failed {
		os.Exit(1)
	}
	fmt.Println("\nAll dependencies reachable.")
}
