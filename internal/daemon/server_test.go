package daemon

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/projecthub/internal/events"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func startTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	t.Setenv(events.DebounceEnvVar, "10")

	socketPath := filepath.Join(t.TempDir(), "d.sock")
	server, err := NewServer(socketPath, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Error("server did not stop")
		}
	})
	return server, socketPath
}

// rawSubscriber connects without the events.Client so the test controls reads.
func rawSubscriber(t *testing.T, socketPath, projectID string) (*json.Decoder, net.Conn) {
	t.Helper()
	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, json.NewEncoder(conn).Encode(events.Message{
		Type:      "subscribe",
		Subscribe: &events.SubscribeMessage{ProjectID: projectID},
	}))
	return json.NewDecoder(conn), conn
}

func nextEvent(t *testing.T, dec *json.Decoder, conn net.Conn, wait time.Duration) (*events.Event, bool) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(wait)))
	for {
		var msg events.Message
		if err := dec.Decode(&msg); err != nil {
			return nil, false
		}
		if msg.Type == "event" && msg.Event != nil {
			return msg.Event, true
		}
	}
}

func waitForClients(t *testing.T, s *Server, n int32) {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.Metrics().ConnectedClients.Load() == n
	}, 2*time.Second, 10*time.Millisecond)
}

// ============================================================================
// TEST CASES
// ============================================================================

func TestServerFansOutToSubscribers(t *testing.T) {
	server, socketPath := startTestServer(t)

	decP1, connP1 := rawSubscriber(t, socketPath, "p1")
	decAll, connAll := rawSubscriber(t, socketPath, "")
	decP2, connP2 := rawSubscriber(t, socketPath, "p2")
	waitForClients(t, server, 3)

	publisher, err := events.NewClient(socketPath)
	require.NoError(t, err)
	defer func() { _ = publisher.Close() }()
	require.NoError(t, publisher.Connect(context.Background()))
	waitForClients(t, server, 4)

	// let subscriptions land before publishing
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, publisher.SendEvent(events.Event{Type: events.EventBacklogChanged, ProjectID: "p1"}))

	e, ok := nextEvent(t, decP1, connP1, 2*time.Second)
	require.True(t, ok, "p1 subscriber should receive the event")
	assert.Equal(t, "p1", e.ProjectID)
	assert.Positive(t, e.SequenceID)

	_, ok = nextEvent(t, decAll, connAll, 2*time.Second)
	assert.True(t, ok, "subscriber to all projects should receive the event")

	_, ok = nextEvent(t, decP2, connP2, 200*time.Millisecond)
	assert.False(t, ok, "p2 subscriber must not receive p1 events")

	snap := server.Metrics().Snapshot()
	assert.EqualValues(t, 1, snap.EventsReceived)
	assert.EqualValues(t, 1, snap.Broadcasts)
}

func TestServerClientListen(t *testing.T) {
	server, socketPath := startTestServer(t)

	listener, err := events.NewClient(socketPath)
	require.NoError(t, err)
	defer func() { _ = listener.Close() }()
	require.NoError(t, listener.Connect(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	received, err := listener.Listen(ctx)
	require.NoError(t, err)
	waitForClients(t, server, 1)

	sprint := "s1"
	require.NoError(t, server.Broadcast(events.Event{Type: events.EventBacklogChanged, ProjectID: "p9", SprintID: &sprint}))

	select {
	case e := <-received:
		assert.Equal(t, "p9", e.ProjectID)
		require.NotNil(t, e.SprintID)
		assert.Equal(t, "s1", *e.SprintID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for broadcast")
	}
}

func TestServerShutdownRemovesSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "d.sock")
	server, err := NewServer(socketPath, nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- server.Start(context.Background()) }()

	_, _ = rawSubscriber(t, socketPath, "")
	waitForClients(t, server, 1)

	server.Shutdown()
	server.Shutdown()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}

	_, statErr := os.Stat(socketPath)
	assert.True(t, os.IsNotExist(statErr))
	assert.EqualValues(t, 0, server.Metrics().ConnectedClients.Load())
}

func TestNewServerReplacesStaleSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "d.sock")
	require.NoError(t, os.WriteFile(socketPath, []byte("stale"), 0o600))

	server, err := NewServer(socketPath, nil)
	require.NoError(t, err)
	server.Shutdown()
}

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.EventsSent.Add(3)
	m.EventsDropped.Add(1)
	m.ConnectedClients.Store(2)

	snap := m.Snapshot()
	assert.EqualValues(t, 3, snap.EventsSent)
	assert.EqualValues(t, 1, snap.EventsDropped)
	assert.EqualValues(t, 2, snap.ConnectedClients)
	assert.NotEmpty(t, snap.Uptime)
	assert.Len(t, snap.LogAttrs(), 12)
}
