// Package bootstrap wires configuration into the sync engine and its
// adapters. Both binaries build their dependencies through it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"archie-shopify-sync/internal/application"
	"archie-shopify-sync/internal/application/webhook_handlers"
	"archie-shopify-sync/internal/config"
	"archie-shopify-sync/internal/infrastructure/encryption"
	"archie-shopify-sync/internal/infrastructure/events"
	"archie-shopify-sync/internal/infrastructure/lease"
	"archie-shopify-sync/internal/infrastructure/metrics"
	"archie-shopify-sync/internal/infrastructure/pubsub"
	"archie-shopify-sync/internal/infrastructure/repository"
	"archie-shopify-sync/internal/infrastructure/secrets"
	shopifyinfra "archie-shopify-sync/internal/infrastructure/shopify"
	"archie-shopify-sync/internal/ports"
)

// App holds every wired component of a running process
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	Store        *repository.SQLStore
	Client       *shopifyinfra.Client
	Tokens       ports.TokenStore
	RunEvents    *pubsub.RunEventPubSub
	Metrics      *metrics.Metrics
	Orchestrator *application.SyncOrchestrator
	TokenService *application.TokenService
	Integrations *application.IntegrationService
	Webhooks     *application.WebhookService

	closers []func() error
}

// NewLogger creates the process logger at the given level
func NewLogger(level string) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return logger.Level(lvl)
}

// OpenStore connects to the relational store and applies migrations
func OpenStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*repository.SQLStore, error) {
	store, err := repository.OpenSQLStore(ctx, cfg.Database.Driver, cfg.Database.URL, logger)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// New connects every backend named by cfg and builds the services
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}
	if err := app.build(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config

	store, err := OpenStore(ctx, cfg, a.Logger)
	if err != nil {
		return err
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Tokens.MongoURI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	a.closers = append(a.closers, func() error { return mongoClient.Disconnect(context.Background()) })
	if err := mongoClient.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	mongoDB := mongoClient.Database(cfg.Tokens.MongoDatabase)

	a.Metrics = metrics.New(prometheus.DefaultRegisterer)

	a.Client = shopifyinfra.NewClientWithOptions(
		shopifyinfra.ClientConfig{
			APIKey:     cfg.Shopify.APIKey,
			APISecret:  cfg.Shopify.APISecret,
			APIVersion: cfg.Shopify.APIVersion,
			Timeout:    cfg.Shopify.Timeout,
		},
		shopifyinfra.NewRateLimiter(cfg.Shopify.RequestsPerSecond, cfg.Shopify.Burst),
		retryConfig(cfg.Shopify.MaxRetries),
		a.Metrics,
		a.Logger,
	)

	var encryptionSvc ports.EncryptionService
	if cfg.Tokens.EncryptionKey != "" {
		svc, err := encryption.NewService(cfg.Tokens.EncryptionKey)
		if err != nil {
			return fmt.Errorf("failed to initialize encryption service: %w", err)
		}
		encryptionSvc = svc
	}
	tokenManager := shopifyinfra.NewTokenManager(encryptionSvc, a.Client, a.Logger)

	switch cfg.Tokens.Backend {
	case "secretsmanager":
		tokens, err := secrets.NewTokenStore(ctx, cfg.Tokens.AWSSecretPrefix, a.Logger)
		if err != nil {
			return err
		}
		a.Tokens = tokens
	default:
		a.Tokens = repository.NewMongoTokenRepository(mongoDB, tokenManager)
	}

	leases, err := a.leaseManager(ctx)
	if err != nil {
		return err
	}

	a.RunEvents = pubsub.NewRunEventPubSub(a.Logger)
	var publisher ports.RunEventPublisher = a.RunEvents
	if len(cfg.Kafka.Brokers) > 0 {
		kafka := events.NewKafkaPublisher(events.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}, a.Logger)
		a.closers = append(a.closers, kafka.Close)
		publisher = pubsub.Fanout{a.RunEvents, kafka}
	}

	a.Orchestrator = application.NewSyncOrchestrator(application.OrchestratorDeps{
		Tokens:    a.Tokens,
		Client:    a.Client,
		Shops:     store.Shops(),
		Products:  store.Products(),
		Customers: store.Customers(),
		Orders:    store.Orders(),
		Lookup:    store.Lookup(),
		Runs:      store.SyncRuns(),
		Leases:    leases,
		Publisher: publisher,
		Metrics:   a.Metrics,
	}, application.SyncConfig{
		PageSize:               cfg.Sync.PageSize,
		OrdersDaysBack:         cfg.Sync.OrdersDaysBack,
		FullSyncOrdersDaysBack: cfg.Sync.FullOrdersDaysBack,
		LeaseTTL:               cfg.Sync.LeaseTTL,
	}, a.Logger)

	a.TokenService = application.NewTokenService(a.Tokens, tokenManager, a.Logger)
	a.Integrations = application.NewIntegrationService(repository.NewMongoIntegrationRepository(mongoDB), a.Logger)
	a.Webhooks = application.NewWebhookService(a.Logger,
		webhook_handlers.NewAppUninstalledHandler(a.Logger, a.Tokens, a.Orchestrator),
	)
	return nil
}

func (a *App) leaseManager(ctx context.Context) (ports.LeaseManager, error) {
	if a.Config.Redis.URL == "" {
		a.Logger.Info().Msg("REDIS_URL not set, sync leases are process local")
		return lease.NewMemoryManager(), nil
	}

	opts, err := redis.ParseURL(a.Config.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	a.closers = append(a.closers, rdb.Close)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return lease.NewRedisManager(rdb, "shopify-sync:lease:", a.Logger), nil
}

func retryConfig(maxRetries int) shopifyinfra.RetryConfig {
	rc := shopifyinfra.DefaultRetryConfig()
	rc.MaxRetries = maxRetries
	return rc
}

// Close releases connections in reverse order of creation
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
