// Package serve holds the server-side commands: the HTTP API and schema
// migrations.
package serve

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thenoetrevino/projecthub/internal/api"
	"github.com/thenoetrevino/projecthub/internal/app"
	"github.com/thenoetrevino/projecthub/internal/auth"
	"github.com/thenoetrevino/projecthub/internal/config"
	"github.com/thenoetrevino/projecthub/internal/logging"
)

// ServeCmd returns the command that runs the HTTP API
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until interrupted.

Configuration comes from the config file and PROJECTHUB_* environment
variables. A jwt secret or jwks url is required.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return Run(ctx, cfg, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().String("addr", "", "Listen address (overrides http.addr)")
	cmd.Flags().String("config", "", "Path to the config file")
	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.HTTP.Addr = addr
	}
	return cfg, nil
}

// Run serves the API described by cfg until ctx is cancelled. Operator
// notices go to out.
func Run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logCloser, err := logging.Init(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logCloser.Close() }()
	logger := logging.Logger

	verifier, err := auth.NewVerifier(auth.Options{
		Secret:   cfg.Auth.JWTSecret,
		JWKSURL:  cfg.Auth.JWKSURL,
		Audience: cfg.Auth.Audience,
		Issuer:   cfg.Auth.Issuer,
	})
	if err != nil {
		return err
	}
	defer verifier.Close()

	application, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("failed to close application", "error", err)
		}
	}()

	if u := application.LiveUpdatesUnavailable(); u != nil {
		fmt.Fprintf(out, "Live updates disabled: %s\nHint: %s\n", u.Message, u.Hint)
	}

	var hub *api.Hub
	if application.Events() != nil {
		hub = api.NewHub(logger)
	}

	e := api.New(api.Deps{
		Backlog:  application.BacklogService,
		Sprints:  application.SprintService,
		Projects: application.ProjectService,
		Authn:    verifier,
		Authz:    application.Authorizer,
		Health:   application.Repo().Ping,
		Hub:      hub,
		Logger:   logger,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return api.Run(ctx, e, cfg.HTTP.Addr, cfg.HTTP.ShutdownTimeout, logger)
	})
	if hub != nil {
		g.Go(func() error {
			if err := hub.Run(ctx, application.Events()); err != nil {
				// the API keeps serving without streams
				logger.Warn("event stream unavailable", "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}
