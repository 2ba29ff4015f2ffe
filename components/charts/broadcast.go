package charts

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// EventEnvelope is the wire form of a view event: a stable name plus the
// typed payload.
type EventEnvelope struct {
	Event   string    `json:"event"`
	Payload ViewEvent `json:"payload"`
}

// BroadcastHook fans out view events to in-process subscribers and network
// transports. It satisfies ViewHook so a pipeline can stream its state
// changes to summary panels and dev tooling.
type BroadcastHook struct {
	mu    sync.RWMutex
	subs  map[int]chan EventEnvelope
	next  int
	close chan struct{}
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{
		subs:  make(map[int]chan EventEnvelope),
		close: make(chan struct{}),
	}
}

// ViewChanged satisfies the ViewHook interface and broadcasts the event.
func (h *BroadcastHook) ViewChanged(_ context.Context, event ViewEvent) error {
	envelope := EventEnvelope{Event: event.EventName(), Payload: event}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- envelope:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of event envelopes and a cancel func.
func (h *BroadcastHook) Subscribe() (<-chan EventEnvelope, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan EventEnvelope, 8)
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

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams view events as JSON.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

// ServeSSE provides a Server-Sent Events endpoint for view events.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	events, cancel := h.Subscribe()
	defer cancel()

	encoder := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			w.Write([]byte("data: "))
			if err := encoder.Encode(event); err != nil {
				return
			}
			w.Write([]byte("\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
