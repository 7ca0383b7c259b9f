package testutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/thenoetrevino/projecthub/internal/daemon"
	"github.com/thenoetrevino/projecthub/internal/events"
)

// StartTestDaemon serves a daemon on a socket inside t.TempDir() until the
// test ends and returns the socket path once it accepts connections.
func StartTestDaemon(t *testing.T) (*daemon.Server, string) {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "projecthub.sock")
	server, err := daemon.NewServer(socketPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Failed to create test daemon: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		server.Shutdown()
	})

	go func() {
		if err := server.Start(ctx); err != nil {
			t.Logf("Server error: %v", err)
		}
	}()
	return server, socketPath
}

// ConnectTestClient connects an event client to the daemon and closes it
// when the test ends.
func ConnectTestClient(t *testing.T, socketPath string) *events.Client {
	t.Helper()

	client, err := events.NewClient(socketPath)
	if err != nil {
		t.Fatalf("Failed to create test client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect test client: %v", err)
	}
	return client
}

// ListenForProject connects a client subscribed to projectID and returns
// its event stream. The subscription is in place once the daemon reports
// wantClients connections.
func ListenForProject(t *testing.T, server *daemon.Server, socketPath, projectID string, wantClients int32) <-chan events.Event {
	t.Helper()

	client := ConnectTestClient(t, socketPath)
	if err := client.Subscribe(projectID); err != nil {
		t.Fatalf("Failed to subscribe to %s: %v", projectID, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	ch, err := client.Listen(ctx)
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	WaitForCondition(t, func() bool {
		return server.Metrics().Snapshot().ConnectedClients >= wantClients
	}, 2*time.Second, "daemon clients to connect")
	// the subscribe message is processed asynchronously
	time.Sleep(50 * time.Millisecond)
	return ch
}

// WaitForEvent returns the next event on ch or fails the test after timeout.
func WaitForEvent(t *testing.T, ch <-chan events.Event, timeout time.Duration) events.Event {
	t.Helper()

	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("Event channel closed")
		}
		return ev
	case <-time.After(timeout):
		t.Fatalf("Timeout waiting for event after %v", timeout)
		return events.Event{}
	}
}

// WaitForNoEvent fails the test if an event arrives within timeout.
func WaitForNoEvent(t *testing.T, ch <-chan events.Event, timeout time.Duration) {
	t.Helper()

	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("Expected no event, got %+v", ev)
		}
	case <-time.After(timeout):
	}
}

// WaitForCondition polls condition every 10ms until it holds or timeout.
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, description string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Timeout waiting for %s", description)
}
