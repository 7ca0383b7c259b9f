package events

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisPublisherRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	listener := NewRedisPublisher(client, "")
	require.NoError(t, listener.Connect(ctx))
	require.NoError(t, listener.Subscribe("p1"))
	events, err := listener.Listen(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	publisher := NewRedisPublisher(client, DefaultRedisChannel)
	require.NoError(t, publisher.SendEvent(Event{Type: EventBacklogChanged, ProjectID: "p2"}))
	require.NoError(t, publisher.SendEvent(Event{Type: EventBacklogChanged, ProjectID: "p1"}))

	select {
	case e := <-events:
		assert.Equal(t, "p1", e.ProjectID, "events of other projects must be filtered")
		assert.Equal(t, int64(2), e.SequenceID)
		assert.False(t, e.Timestamp.IsZero())
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestRedisPublisherConnectFails(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	client := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	assert.Error(t, NewRedisPublisher(client, "").Connect(context.Background()))
}
