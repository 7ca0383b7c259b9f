package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/thenoetrevino/projecthub/internal/auth"
	"github.com/thenoetrevino/projecthub/internal/events"
)

const keepAliveInterval = 15 * time.Second

// Hub fans change events from one publisher out to streaming HTTP clients.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan events.Event]string
	logger *slog.Logger
}

// NewHub returns an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{subs: make(map[chan events.Event]string), logger: logger}
}

// Run forwards events from source until ctx is done or the source closes.
func (h *Hub) Run(ctx context.Context, source events.EventPublisher) error {
	ch, err := source.Listen(ctx)
	if err != nil {
		return fmt.Errorf("listening for events: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, open := <-ch:
			if !open {
				return nil
			}
			h.Broadcast(ev)
		}
	}
}

// Broadcast delivers ev to every subscriber whose project matches. Slow
// subscribers miss events rather than block the hub.
func (h *Hub) Broadcast(ev events.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch, projectID := range h.subs {
		if !ev.Matches(projectID) {
			continue
		}
		select {
		case ch <- ev:
		default:
			h.logger.Debug("dropping event for slow stream", "project_id", projectID)
		}
	}
}

func (h *Hub) subscribe(projectID string) (chan events.Event, func()) {
	ch := make(chan events.Event, 16)
	h.mu.Lock()
	h.subs[ch] = projectID
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
}

// Subscribers returns the number of open streams.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *handlers) streamEvents(c echo.Context) error {
	projectID := c.Param("projectID")
	ctx := c.Request().Context()
	if err := h.d.Authz.Authorize(ctx, callerFrom(c), projectID, auth.ActionRead); err != nil {
		return err
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	ch, unsubscribe := h.d.Hub.subscribe(projectID)
	defer unsubscribe()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.Write([]byte(": keep-alive\n\n")); err != nil {
				return nil
			}
			w.Flush()
		case ev := <-ch:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
