package cli

import (
	"context"
	"path/filepath"

	"github.com/thenoetrevino/projecthub/internal/app"
	"github.com/thenoetrevino/projecthub/internal/config"
)

type appKey struct{}

// WithApp makes commands run against a prebuilt application instead of
// building one from the configuration. Tests use it to inject an in-memory
// database.
func WithApp(ctx context.Context, a *app.App) context.Context {
	return context.WithValue(ctx, appKey{}, a)
}

// GetCLIFromContext returns a CLI for the command context: the injected app
// when present, otherwise a freshly built one.
func GetCLIFromContext(ctx context.Context) (*CLI, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if a, ok := ctx.Value(appKey{}).(*app.App); ok && a != nil {
		return &CLI{App: a, ctx: ctx}, nil
	}
	return NewCLI(ctx)
}

// DefaultSocketPath is where the daemon listens unless configured otherwise.
func DefaultSocketPath() string {
	return filepath.Join(config.DataDir(), "projecthub.sock")
}
