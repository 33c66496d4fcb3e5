package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/alirezazamanidev/project-microservice/internal/config"
	httpx "github.com/alirezazamanidev/project-microservice/internal/http"
	"github.com/alirezazamanidev/project-microservice/internal/http/handlers"
	"github.com/alirezazamanidev/project-microservice/internal/http/middleware"
	"github.com/alirezazamanidev/project-microservice/internal/infrastructure/database"
	"github.com/alirezazamanidev/project-microservice/internal/rpc"
	"github.com/alirezazamanidev/project-microservice/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// RunWorker serves the auth subjects on NATS until ctx is cancelled
func RunWorker(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	c, err := NewContainer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer c.Close()

	nc, err := database.ConnectNATS(ctx, cfg.NATS.URL, worker.ServiceName, log)
	if err != nil {
		return err
	}
	defer nc.Close()

	bus := rpc.NewNATSBus(nc)
	srv := NewWorkerServer(bus, c)
	if err := srv.Start(); err != nil {
		return err
	}
	log.Info().Str("queue", cfg.NATS.QueueGroup).Int("subjects", len(srv.Subjects())).Msg("auth worker ready")

	<-ctx.Done()
	log.Info().Msg("auth worker shutting down")

	// stores close with the deferred c.Close, so every accepted request must be answered first
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("in-flight requests did not finish")
	}
	if err := bus.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("nats drain failed")
	}
	return nil
}

// NewWorkerServer registers the container's handlers on a server over bus
func NewWorkerServer(bus rpc.Bus, c *Container) *rpc.Server {
	srv := rpc.NewServer(bus, c.Config.NATS.QueueGroup, c.Log)
	c.Handlers().Register(srv)
	return srv
}

// RunGateway serves the HTTP gateway until ctx is cancelled
func RunGateway(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	nc, err := database.ConnectNATS(ctx, cfg.NATS.URL, "gateway", log)
	if err != nil {
		return err
	}
	defer nc.Close()

	providers, err := BuildProviders(cfg)
	if err != nil {
		return err
	}
	consent := make(map[string]handlers.ConsentURLer, len(providers))
	for _, p := range providers {
		if c, ok := p.(handlers.ConsentURLer); ok {
			consent[p.Name()] = c
		}
	}

	gin.SetMode(gin.ReleaseMode)
	if cfg.App.Env == "local" {
		gin.SetMode(gin.DebugMode)
	}
	router := NewGatewayRouter(rpc.NewNATSBus(nc), cfg, log, consent)

	server := &http.Server{
		Addr:              cfg.App.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("gateway listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("gateway shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// NewGatewayRouter builds the gateway's routes over bus
func NewGatewayRouter(bus rpc.Bus, cfg *config.Config, log zerolog.Logger, consent map[string]handlers.ConsentURLer) *gin.Engine {
	client := rpc.NewClient(bus, cfg.NATS.RPCTimeout, log)

	cookie := handlers.CookieConfig{
		Name:   cfg.Session.CookieName,
		Domain: cfg.App.CookieDomain,
		Secure: cfg.App.CookieSecure,
		MaxAge: cfg.Session.TTL,
	}
	authH := handlers.NewAuthHandlers(client, cookie, cfg.App.FrontendURL, consent)
	healthH := handlers.NewHealthHandlers(client.WithTimeout(cfg.NATS.HealthTimeout))
	sessions := middleware.NewSessionMW(client, cfg.Session.CookieName)

	return httpx.BuildRouter(authH, healthH, sessions, log)
}
