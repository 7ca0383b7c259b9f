package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisChannel is the pub/sub channel used when none is configured.
const DefaultRedisChannel = "projecthub:events"

// RedisPublisher fans events out over Redis pub/sub, for deployments running
// more than one API process without a shared daemon socket.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	seq     atomic.Int64

	mu        sync.Mutex
	projectID string
	pubsub    *redis.PubSub
	closed    bool
}

// NewRedisPublisher publishes on channel, DefaultRedisChannel when empty.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// Connect verifies Redis is reachable.
func (p *RedisPublisher) Connect(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// SendEvent publishes synchronously with a short timeout.
func (p *RedisPublisher) SendEvent(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.SequenceID = p.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}
	return nil
}

// Listen subscribes to the channel and delivers events matching the current
// project filter until ctx is done.
func (p *RedisPublisher) Listen(ctx context.Context) (<-chan Event, error) {
	ps := p.client.Subscribe(ctx, p.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribing to %s: %w", p.channel, err)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		_ = ps.Close()
		return nil, fmt.Errorf("publisher closed")
	}
	p.pubsub = ps
	p.mu.Unlock()

	out := make(chan Event, 10)
	go func() {
		defer close(out)
		defer func() { _ = ps.Close() }()

		messages := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					slog.Warn("dropping malformed event", "channel", msg.Channel, "error", err)
					continue
				}
				if !event.Matches(p.filter()) {
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (p *RedisPublisher) filter() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.projectID
}

// Subscribe narrows Listen to one project; empty means all.
func (p *RedisPublisher) Subscribe(projectID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.projectID = projectID
	return nil
}

// Close stops an active Listen. The Redis client is owned by the caller.
func (p *RedisPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.pubsub != nil {
		return p.pubsub.Close()
	}
	return nil
}
