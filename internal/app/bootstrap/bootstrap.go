package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	orderservice "github.com/sajithdilhan/ECommerceBackend/contexts/commerce/order-service"
	ordercache "github.com/sajithdilhan/ECommerceBackend/contexts/commerce/order-service/adapters/cache"
	orderpostgres "github.com/sajithdilhan/ECommerceBackend/contexts/commerce/order-service/adapters/postgres"
	userservice "github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service"
	usercache "github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/adapters/cache"
	userapplication "github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/application"
	userpostgres "github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/adapters/postgres"
	"github.com/sajithdilhan/ECommerceBackend/internal/platform/cache"
	"github.com/sajithdilhan/ECommerceBackend/internal/platform/config"
	"github.com/sajithdilhan/ECommerceBackend/internal/platform/db"
	"github.com/sajithdilhan/ECommerceBackend/internal/platform/httpserver"
	"github.com/sajithdilhan/ECommerceBackend/internal/platform/messaging"
	"github.com/sajithdilhan/ECommerceBackend/internal/shared/events"
)

// Package bootstrap is the composition root for both registry processes.
// Keep construction/wiring here so module code stays framework-agnostic.

type httpServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// App is one running registry process: an HTTP server plus its subscriber.
type App struct {
	server     httpServer
	subscriber func(ctx context.Context) error
	postgres   *db.Postgres
	redis      *redis.Client
	logger     *slog.Logger
}

// BuildUserAPI wires the user registry: Postgres-backed users, Redis-backed
// cache, a user-created publisher and an order-created subscriber.
func BuildUserAPI() (*App, error) {
	cfg, err := config.Load("userapi")
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	pg, client, err := connectPlatform(cfg)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(userpostgres.Models()...); err != nil {
		return nil, err
	}

	platformCache := cache.New(client, logger)
	module := userservice.NewModule(userservice.Dependencies{
		Repo:      userpostgres.NewRepository(pg.DB, logger),
		Publisher: messaging.NewPublisher(client, cfg.UserCreatedTopic, logger),
		Cache: usercache.UserCache{
			Cache: platformCache,
			Keys:  cache.DefaultKeys(),
			TTL:   cfg.CacheTTL,
		},
		Clock:  userpostgres.SystemClock{},
		IDGen:  userpostgres.UUIDGenerator{},
		Logger: logger,
	})

	orderEvents := userapplication.OrderEventsHandler{Logger: logger}
	subscriber := &messaging.Subscriber[events.OrderCreatedEvent]{
		Client:  client,
		Topic:   cfg.OrderCreatedTopic,
		Group:   cfg.ConsumerGroup,
		Handler: orderEvents.OnOrderCreated,
		Logger:  logger,
	}

	return &App{
		server:     httpserver.NewUserServer(module, logger, normalizeAddr(cfg.HTTPPort), cfg.APIKey),
		subscriber: subscriber.Run,
		postgres:   pg,
		redis:      client,
		logger:     logger,
	}, nil
}

// BuildOrderAPI wires the order registry: Postgres-backed orders and replica,
// Redis-backed cache, an order-created publisher and a user-created
// subscriber feeding the replica upsert.
func BuildOrderAPI() (*App, error) {
	cfg, err := config.Load("orderapi")
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	pg, client, err := connectPlatform(cfg)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(orderpostgres.Models()...); err != nil {
		return nil, err
	}

	platformCache := cache.New(client, logger)
	repo := orderpostgres.NewRepository(pg.DB, logger)
	module := orderservice.NewModule(orderservice.Dependencies{
		Repo:       repo,
		KnownUsers: repo,
		Publisher:  messaging.NewPublisher(client, cfg.OrderCreatedTopic, logger),
		Cache: ordercache.OrderCache{
			Cache: platformCache,
			Keys:  cache.DefaultKeys(),
			TTL:   cfg.CacheTTL,
		},
		Clock:  orderpostgres.SystemClock{},
		IDGen:  orderpostgres.UUIDGenerator{},
		Logger: logger,
	})

	subscriber := &messaging.Subscriber[events.UserCreatedEvent]{
		Client:  client,
		Topic:   cfg.UserCreatedTopic,
		Group:   cfg.ConsumerGroup,
		Handler: module.Consumer.OnUserCreated,
		Logger:  logger,
	}

	return &App{
		server:     httpserver.NewOrderServer(module, logger, normalizeAddr(cfg.HTTPPort), cfg.APIKey),
		subscriber: subscriber.Run,
		postgres:   pg,
		redis:      client,
		logger:     logger,
	}, nil
}

func connectPlatform(cfg config.Config) (*db.Postgres, *redis.Client, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, nil, errors.New("POSTGRES_DSN is required")
	}
	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	client, err := cache.Connect(cfg.RedisAddr)
	if err != nil {
		_ = pg.Close()
		return nil, nil, err
	}
	return pg, client, nil
}

// Run starts the subscriber and the HTTP server and blocks until ctx is
// cancelled or the server fails. Shutdown is cooperative: the server drains,
// then the subscriber finishes its in-flight handler, with a bounded wait.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	subscriberDone := make(chan struct{})
	go func() {
		defer close(subscriberDone)
		if err := a.subscriber(ctx); err != nil {
			a.logger.Error("subscriber stopped with error",
				"event", "bootstrap_subscriber_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.server.Start()
	}()

	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	var runErr error
	select {
	case err := <-serverErr:
		runErr = err
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = a.server.Shutdown(shutdownCtx)

	select {
	case <-subscriberDone:
	case <-shutdownCtx.Done():
		a.logger.Warn("subscriber drain timed out",
			"event", "bootstrap_subscriber_drain_timeout",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return runErr
}

func (a *App) Close() error {
	var firstErr error
	if a.redis != nil {
		firstErr = a.redis.Close()
	}
	if a.postgres != nil {
		if err := a.postgres.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
