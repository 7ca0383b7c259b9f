package app

import (
	"log/slog"

	"github.com/thenoetrevino/projecthub/internal/cache"
	"github.com/thenoetrevino/projecthub/internal/events"
)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds the configuration for App initialization
type appConfig struct {
	eventClient events.EventPublisher
	logger      *slog.Logger
	cache       *cache.OrderCache
	strictReads bool
}

// WithEventPublisher sets the event publisher for the application
func WithEventPublisher(ec events.EventPublisher) Option {
	return func(cfg *appConfig) {
		cfg.eventClient = ec
	}
}

// WithLogger sets the logger for the application
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) {
		cfg.logger = logger
	}
}

// WithCache enables the Redis order cache
func WithCache(c *cache.OrderCache) Option {
	return func(cfg *appConfig) {
		cfg.cache = c
	}
}

// WithStrictReads rejects listings of scopes with unreachable items
func WithStrictReads(strict bool) Option {
	return func(cfg *appConfig) {
		cfg.strictReads = strict
	}
}
