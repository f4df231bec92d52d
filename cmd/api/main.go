package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"archie-shopify-sync/internal/bootstrap"
	"archie-shopify-sync/internal/config"
	apiinfra "archie-shopify-sync/internal/infrastructure/api"
	securitymiddleware "archie-shopify-sync/internal/infrastructure/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stdout).With().Timestamp().Logger()
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger := bootstrap.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer app.Close()

	var syncAuth func(http.Handler) http.Handler
	if cfg.API.AuthEnabled {
		syncAuth = securitymiddleware.IntegrationKey(app.Integrations, logger)
	} else {
		logger.Warn().Msg("API_AUTH_ENABLED is false, /sync routes are unauthenticated")
	}

	router := apiinfra.NewRouter(apiinfra.RouterConfig{
		Sync:     apiinfra.NewSyncHandler(app.Orchestrator, app.RunEvents, logger),
		Webhooks: apiinfra.NewWebhookHandler(app.Client.App(), app.Webhooks, logger),
		SyncAuth: syncAuth,
	})

	srv := apiinfra.NewServer(":"+cfg.Port, router)

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	// Stop accepting requests first so no new runs start while in-flight
	// runs are being cancelled. Each phase has its own budget.
	httpCtx, cancelHTTP := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelHTTP()
	if err := srv.Shutdown(httpCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to shut down HTTP server")
	}

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelDrain()
	if err := app.Orchestrator.Shutdown(drainCtx); err != nil {
		logger.Error().Err(err).Msg("Sync runs did not stop in time")
	}
}
