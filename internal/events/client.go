package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/thenoetrevino/projecthub/internal/models"
)

// DebounceEnvVar overrides the batching window in milliseconds.
const DebounceEnvVar = "PROJECTHUB_EVENT_DEBOUNCE_MS"

// Client represents a connection to the projecthub daemon for live updates.
// It handles event sending, receiving, batching, reconnection, and subscriptions.
type Client struct {
	socketPath string
	conn       net.Conn
	encoder    *json.Encoder
	decoder    *json.Decoder
	mu         sync.Mutex

	// Batching configuration
	eventQueue   chan Event
	debounce     time.Duration
	closed       bool
	batcherOnce  sync.Once
	batcherStart bool

	// Reconnection configuration
	maxRetries int
	baseDelay  time.Duration

	// Subscription state, replayed after a reconnect
	currentProjectID string

	lastSequence int64

	ctx    context.Context
	cancel context.CancelFunc

	batcherDone chan struct{}
}

// NewClient creates a new event client but does not connect.
// The socket path should be the full path to the Unix domain socket.
// Events are batched over 100ms unless PROJECTHUB_EVENT_DEBOUNCE_MS says otherwise.
func NewClient(socketPath string) (*Client, error) {
	if socketPath == "" {
		return nil, errors.New("events: socket path is required")
	}

	debounceMs := 100
	if envVal := os.Getenv(DebounceEnvVar); envVal != "" {
		if parsed, err := strconv.Atoi(envVal); err == nil && parsed > 0 {
			debounceMs = parsed
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		socketPath:  socketPath,
		eventQueue:  make(chan Event, 100),
		debounce:    time.Duration(debounceMs) * time.Millisecond,
		maxRetries:  5,
		baseDelay:   1 * time.Second,
		ctx:         ctx,
		cancel:      cancel,
		batcherDone: make(chan struct{}),
	}, nil
}

// Connect establishes a connection to the daemon socket and (re)sends the
// current subscription.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("client closed")
	}

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to dial daemon socket: %w", err)
	}

	c.conn = conn
	c.encoder = json.NewEncoder(conn)
	c.decoder = json.NewDecoder(conn)

	msg := Message{
		Type:      "subscribe",
		Subscribe: &SubscribeMessage{ProjectID: c.currentProjectID},
	}
	if err := c.encoder.Encode(msg); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			slog.Debug("error closing connection", "error", closeErr)
		}
		c.conn = nil
		return fmt.Errorf("failed to send subscription: %w", err)
	}

	c.batcherOnce.Do(func() {
		c.batcherStart = true
		go c.startBatcher()
	})

	return nil
}

// SendEvent queues an event to be sent to the daemon.
// Events are batched and sent in bursts within the debounce window.
// Returns error if the queue is full (non-blocking send).
func (c *Client) SendEvent(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("client closed")
	}

	select {
	case c.eventQueue <- event:
		return nil
	default:
		return fmt.Errorf("event queue full")
	}
}

// batch folds queued events into one notification per debounce window.
type batch struct {
	pending  bool
	project  string
	sprint   *string
	projects bool // more than one project
	scopes   bool // more than one scope
}

func (b *batch) add(e Event) {
	if !b.pending {
		*b = batch{pending: true, project: e.ProjectID, sprint: models.CopyID(e.SprintID)}
		return
	}
	if e.ProjectID != b.project {
		b.projects = true
	}
	if !models.SameID(e.SprintID, b.sprint) {
		b.scopes = true
	}
}

func (b *batch) event() Event {
	e := Event{Type: EventBacklogChanged, Timestamp: time.Now()}
	if !b.projects {
		e.ProjectID = b.project
		if !b.scopes {
			e.SprintID = b.sprint
		}
	}
	return e
}

// startBatcher runs in a goroutine and batches events from the queue.
// Events of several projects collapse into one event for all projects.
func (c *Client) startBatcher() {
	defer close(c.batcherDone)

	ticker := time.NewTicker(c.debounce)
	defer ticker.Stop()

	var b batch

	flushPending := func() {
		if !b.pending {
			return
		}
		if err := c.sendToSocket(b.event()); err != nil && !isConnectionError(err) {
			slog.Warn("failed to send batched event", "error", err)
		}
		b = batch{}
	}

	for {
		select {
		case <-c.ctx.Done():
			flushPending()
			return

		case event, ok := <-c.eventQueue:
			if !ok {
				flushPending()
				return
			}
			b.add(event)

		drainLoop:
			for {
				select {
				case evt, ok := <-c.eventQueue:
					if !ok {
						break drainLoop
					}
					b.add(evt)
				default:
					break drainLoop
				}
			}

		case <-ticker.C:
			flushPending()
		}
	}
}

// sendToSocket sends an event to the daemon socket.
func (c *Client) sendToSocket(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected to daemon")
	}

	// short write deadline to detect dead connections
	if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return fmt.Errorf("connection error: %w", err)
	}
	defer func() { _ = c.conn.SetWriteDeadline(time.Time{}) }()

	msg := Message{
		Type:  "event",
		Event: &event,
	}
	return c.encoder.Encode(msg)
}

// Listen starts listening for events from the daemon.
// It returns a channel that receives events and handles reconnection automatically.
// The channel is closed when context is done or reconnection fails.
func (c *Client) Listen(ctx context.Context) (<-chan Event, error) {
	eventChan := make(chan Event, 10)
	go c.listenLoop(ctx, eventChan)
	return eventChan, nil
}

func (c *Client) listenLoop(ctx context.Context, eventChan chan Event) {
	defer close(eventChan)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := c.readEvents(ctx, eventChan)
		if err == nil || ctx.Err() != nil {
			return
		}

		slog.Info("connection to daemon lost, reconnecting", "error", err)
		if err := c.reconnect(ctx); err != nil {
			slog.Warn("failed to reconnect to daemon, giving up", "attempts", c.maxRetries, "error", err)
			return
		}
		slog.Info("reconnected to daemon")
	}
}

// readEvents reads messages from the socket and sends them to the event channel.
func (c *Client) readEvents(ctx context.Context, eventChan chan Event) error {
	for {
		var msg Message

		c.mu.Lock()
		if c.conn == nil {
			c.mu.Unlock()
			return fmt.Errorf("connection closed")
		}
		// hung connection detection; the daemon pings every 30s
		if err := c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("failed to set read deadline: %w", err)
		}
		decoder := c.decoder
		c.mu.Unlock()

		if err := decoder.Decode(&msg); err != nil {
			return fmt.Errorf("failed to decode message: %w", err)
		}

		switch msg.Type {
		case "event":
			if msg.Event == nil || msg.Event.SequenceID <= c.lastSequence {
				continue
			}
			c.lastSequence = msg.Event.SequenceID
			select {
			case eventChan <- *msg.Event:
			case <-ctx.Done():
				return nil
			}

		case "ping":
			if err := c.sendToSocket(Event{Type: EventPong}); err != nil && !isConnectionError(err) {
				slog.Warn("failed to send pong", "error", err)
			}
		}
	}
}

// isConnectionError checks if an error is a network connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, net.ErrClosed) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset")
}

// reconnectBackOff doubles from baseDelay: 1s, 2s, 4s, 8s, 16s.
func (c *Client) reconnectBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.baseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)
}

// reconnect closes the current connection and dials again with backoff.
func (c *Client) reconnect(ctx context.Context) error {
	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		c.mu.Lock()
		if c.conn != nil {
			if err := c.conn.Close(); err != nil && !isConnectionError(err) {
				slog.Debug("error closing connection during reconnect", "error", err)
			}
			c.conn = nil
		}
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return backoff.Permanent(errors.New("client closed"))
		}
		return c.Connect(ctx)
	}, c.reconnectBackOff(ctx), func(err error, delay time.Duration) {
		slog.Debug("reconnection attempt failed", "attempt", attempt, "max_retries", c.maxRetries, "retry_in", delay, "error", err)
	})
}

// Subscribe changes the subscription to a specific project.
// An empty projectID subscribes to all projects.
func (c *Client) Subscribe(projectID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.currentProjectID = projectID

	if c.conn == nil {
		return fmt.Errorf("not connected to daemon")
	}

	return c.encoder.Encode(Message{
		Type:      "subscribe",
		Subscribe: &SubscribeMessage{ProjectID: projectID},
	})
}

// Close closes the connection to the daemon and stops all goroutines.
// Pending batched events are flushed first.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.eventQueue)
	started := c.batcherStart
	c.mu.Unlock()

	if started {
		<-c.batcherDone
	}
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
