package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/alirezazamanidev/project-microservice/internal/app"
	"github.com/alirezazamanidev/project-microservice/internal/config"
	"github.com/alirezazamanidev/project-microservice/internal/logging"
	"github.com/alirezazamanidev/project-microservice/internal/telemetry"
	"github.com/alirezazamanidev/project-microservice/internal/worker"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.App.Env, cfg.App.LogLevel, worker.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, worker.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		logger.Warn().Err(err).Msg("tracing disabled")
	}
	defer func() { _ = shutdown(context.Background()) }()

	if err := app.RunWorker(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("auth worker stopped")
	}
}
