package eventboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

const subscriberBuffer = 8

// BroadcastHook fans board events out to live pages. It remembers the latest
// snapshot event so a page that connects between polls receives the current
// banner and cards first, as an EventBoardSync event.
type BroadcastHook struct {
	mu     sync.Mutex
	subs   map[int]chan BoardEvent
	next   int
	latest *BoardEvent
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{
		subs: make(map[int]chan BoardEvent),
	}
}

// BoardUpdated satisfies RefreshHook. Slow subscribers miss events rather
// than block the poller.
func (h *BroadcastHook) BoardUpdated(_ context.Context, event BoardEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if carriesBoard(event.Type) {
		latest := event
		h.latest = &latest
	}
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func carriesBoard(eventType string) bool {
	switch eventType {
	case EventSnapshotUpdated, EventSnapshotError, EventDemoLoaded:
		return true
	}
	return false
}

// Latest returns the most recent snapshot event, if any poll has completed.
func (h *BroadcastHook) Latest() (BoardEvent, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest == nil {
		return BoardEvent{}, false
	}
	return *h.latest, true
}

// Subscribe returns a channel of board events and a cancel func. When a poll
// has already completed, the first event on the channel is EventBoardSync.
func (h *BroadcastHook) Subscribe() (<-chan BoardEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan BoardEvent, subscriberBuffer)
	if h.latest != nil {
		catchUp := *h.latest
		catchUp.Type = EventBoardSync
		catchUp.AttemptID = ""
		ch <- catchUp
	}
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Subscribers reports the number of active subscriptions.
func (h *BroadcastHook) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Stream subscribes and hands every event to send until ctx ends, send fails
// or the subscription is closed.
func (h *BroadcastHook) Stream(ctx context.Context, send func(BoardEvent) error) error {
	events, cancel := h.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := send(event); err != nil {
				return err
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams board events as JSON. The
// stream ends when the client closes the socket.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	_ = h.Stream(ctx, func(event BoardEvent) error {
		return conn.WriteJSON(event)
	})
}

// ServeSSE provides a Server-Sent Events endpoint for board events. Each
// message is named after the event type.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	_ = h.Stream(r.Context(), func(event BoardEvent) error {
		if err := writeSSE(w, event); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
}

func writeSSE(w http.ResponseWriter, event BoardEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("eventboard: encode %s event: %w", event.Type, err)
	}
	if event.AttemptID != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", event.AttemptID); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
	return err
}

type noopRefreshHook struct{}

func (noopRefreshHook) BoardUpdated(context.Context, BoardEvent) error {
	return nil
}
