package cli

import (
	"context"
	"fmt"

	"github.com/thenoetrevino/projecthub/internal/app"
	"github.com/thenoetrevino/projecthub/internal/config"
	"github.com/thenoetrevino/projecthub/internal/logging"
)

// CLI represents the CLI application context
type CLI struct {
	App *app.App // Application container with services
	ctx context.Context

	// owned is false when App was injected and belongs to the caller
	owned bool
}

// NewCLI loads the configuration, initializes file logging and builds the
// application. The daemon connection is optional and silently skipped.
func NewCLI(ctx context.Context) (*CLI, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Log.File == "" {
		cfg.Log.File = logging.DefaultFile()
	}
	if _, err := logging.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	if cfg.Daemon.Socket == "" {
		cfg.Daemon.Socket = DefaultSocketPath()
	}

	application, err := app.Build(ctx, cfg, logging.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}

	return &CLI{App: application, ctx: ctx, owned: true}, nil
}

// Close cleans up CLI resources
func (c *CLI) Close() error {
	if !c.owned {
		return nil
	}
	return c.App.Close()
}
