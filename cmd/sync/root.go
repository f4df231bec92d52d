package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"archie-shopify-sync/internal/bootstrap"
	"archie-shopify-sync/internal/config"
	"archie-shopify-sync/internal/domain"
)

var (
	cfg    *config.Config
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:           "sync",
	Short:         "Synchronize Shopify stores into the local database",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cfg != nil {
			return nil
		}
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		logger = bootstrap.NewLogger(cfg.LogLevel)
		return nil
	},
}

// syncer is the slice of the orchestrator the CLI drives
type syncer interface {
	SyncShopProfile(ctx context.Context, shop string) (*domain.SyncRun, error)
	SyncProducts(ctx context.Context, shop string) (*domain.SyncRun, error)
	SyncCustomers(ctx context.Context, shop string) (*domain.SyncRun, error)
	SyncOrders(ctx context.Context, shop string, daysBack int) (*domain.SyncRun, error)
	SyncAll(ctx context.Context, shop string) ([]*domain.SyncRun, error)
	GetStatus(ctx context.Context, shop string) (*domain.SyncStatusSummary, error)
}

// services builds the full dependency graph. Tests replace it.
var services = func(ctx context.Context) (*bootstrap.App, error) {
	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return app, nil
}

// openSyncer returns the orchestrator and a release func. Tests replace it.
var openSyncer = func(ctx context.Context) (syncer, func() error, error) {
	app, err := services(ctx)
	if err != nil {
		return nil, nil, err
	}
	return app.Orchestrator, app.Close, nil
}

func requireShop(cmd *cobra.Command) (string, error) {
	shop, _ := cmd.Flags().GetString("shop")
	if shop == "" {
		return "", fmt.Errorf("--shop is required")
	}
	return shop, nil
}
