package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/thenoetrevino/projecthub/internal/auth"
	"github.com/thenoetrevino/projecthub/internal/cache"
	"github.com/thenoetrevino/projecthub/internal/config"
	"github.com/thenoetrevino/projecthub/internal/database"
	"github.com/thenoetrevino/projecthub/internal/events"
	"github.com/thenoetrevino/projecthub/internal/lock"
	backlogservice "github.com/thenoetrevino/projecthub/internal/services/backlog"
	projectservice "github.com/thenoetrevino/projecthub/internal/services/project"
	sprintservice "github.com/thenoetrevino/projecthub/internal/services/sprint"
)

// App holds all application services and provides dependency injection.
// This is the main application container that manages service lifecycles.
type App struct {
	// Repository layer (direct database access)
	repo *database.Repository

	// Event system for live updates
	eventClient events.EventPublisher
	// why live updates are off, nil when connected or not configured
	liveUpdates *events.Unavailable

	// Access control shared by every service
	Authorizer *auth.Authorizer

	// Service layer (business logic)
	BacklogService backlogservice.Service
	SprintService  sprintservice.Service
	ProjectService projectservice.Service

	closers []func() error
}

// New creates a new App with all services initialized.
// This is the single entry point for creating the application container.
func New(repo *database.Repository, opts ...Option) *App {
	cfg := &appConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	authz := auth.NewAuthorizer(repo.Projects)
	return &App{
		repo:        repo,
		eventClient: cfg.eventClient,
		Authorizer:  authz,
		BacklogService: backlogservice.NewService(repo, authz,
			backlogservice.WithEventPublisher(cfg.eventClient),
			backlogservice.WithCache(cfg.cache),
			backlogservice.WithLocks(lock.New()),
			backlogservice.WithLogger(cfg.logger),
			backlogservice.WithStrictReads(cfg.strictReads),
		),
		SprintService:  sprintservice.NewService(repo, authz, cfg.logger),
		ProjectService: projectservice.NewService(repo, authz, cfg.logger),
	}
}

// Build opens every backing resource named by cfg and returns a ready App.
// Resources that fail to come up are released before returning.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dialect, err := database.DialectFor(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, database.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, err
	}
	closers := []func() error{db.Close}
	fail := func(err error) (*App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		return nil, err
	}

	opts := []Option{WithLogger(logger), WithStrictReads(cfg.Ordering.StrictReads)}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fail(fmt.Errorf("parsing redis url: %w", err))
		}
		redisClient = redis.NewClient(redisOpts)
		closers = append(closers, redisClient.Close)
		opts = append(opts, WithCache(cache.New(redisClient, cfg.Redis.CacheTTL)))
	}

	var unavailable *events.Unavailable
	publisher := eventPublisher(cfg, redisClient)
	if publisher != nil {
		// live updates are optional; the app works without them
		if err := publisher.Connect(ctx); err != nil {
			unavailable = events.Diagnose(publisher, err)
			logger.Warn("live updates unavailable",
				"transport", unavailable.Transport,
				"reason", unavailable.Message,
				"hint", unavailable.Hint,
				"error", err)
			_ = publisher.Close()
		} else {
			closers = append(closers, publisher.Close)
			opts = append(opts, WithEventPublisher(publisher))
		}
	}

	a := New(database.NewRepository(db, dialect), opts...)
	a.closers = closers
	a.liveUpdates = unavailable
	return a, nil
}

func eventPublisher(cfg *config.Config, redisClient *redis.Client) events.EventPublisher {
	if cfg.Redis.Events && redisClient != nil {
		return events.NewRedisPublisher(redisClient, events.DefaultRedisChannel)
	}
	if cfg.Daemon.Socket != "" {
		client, err := events.NewClient(cfg.Daemon.Socket)
		if err != nil {
			return nil
		}
		return client
	}
	return nil
}

// Repo returns the underlying repository for direct database access.
func (a *App) Repo() *database.Repository {
	return a.repo
}

// LiveUpdatesUnavailable reports why a configured publisher failed to
// connect. It is nil when live updates work or were never configured.
func (a *App) LiveUpdatesUnavailable() *events.Unavailable {
	return a.liveUpdates
}

// Events returns the connected event publisher, or nil.
func (a *App) Events() events.EventPublisher {
	return a.eventClient
}

// Close releases the resources opened by Build in reverse order.
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
