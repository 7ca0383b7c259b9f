package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/thenoetrevino/projecthub/internal/cli"
	"github.com/thenoetrevino/projecthub/internal/config"
	"github.com/thenoetrevino/projecthub/internal/daemon"
	"github.com/thenoetrevino/projecthub/internal/logging"
)

func main() {
	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logCloser, err := logging.Init(cfg.Log)
	if err != nil {
		slog.Error("failed to initialize logging", "error", err)
		os.Exit(1)
	}
	defer func() { _ = logCloser.Close() }()

	socketPath := cfg.Daemon.Socket
	if socketPath == "" {
		socketPath = cli.DefaultSocketPath()
	}

	// NewServer creates the socket directory with 0700 permissions
	server, err := daemon.NewServer(socketPath, logging.Logger)
	if err != nil {
		slog.Error("failed to create daemon", "error", err)
		os.Exit(1)
	}

	slog.Info("projecthub daemon starting", "socket_path", socketPath, "pid", os.Getpid())

	// Start the daemon (blocks until shutdown)
	if err := server.Start(ctx); err != nil {
		slog.Error("daemon error", "error", err)
		os.Exit(1)
	}

	server.Shutdown()
	slog.Info("projecthub daemon shutting down gracefully")
}
