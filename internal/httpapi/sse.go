package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/GITHIYON49/taskmanagementapp/internal/otel"
	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

const (
	keepaliveInterval = 30 * time.Second
	// reconnectDelay is the retry hint sent to EventSource clients.
	reconnectDelay = 3 * time.Second
)

// SSEHub fans JSON events out to every /stream subscriber. A slow subscriber
// loses events instead of blocking publishers.
type SSEHub struct {
	mu     sync.RWMutex
	subs   map[chan []byte]struct{}
	buffer int
	// Hello, when set, is sent to each new subscriber right after "connected".
	Hello func() any
}

func NewSSEHub() *SSEHub {
	return &SSEHub{subs: make(map[chan []byte]struct{}), buffer: models.DefaultSSEChannelBuffer}
}

func (h *SSEHub) Subscribe() chan []byte {
	ch := make(chan []byte, h.buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	otel.AddSSEConnection()
	return ch
}

func (h *SSEHub) Unsubscribe(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; !ok {
		return
	}
	delete(h.subs, ch)
	close(ch)
	otel.RemoveSSEConnection()
}

// Subscribers returns the number of open streams.
func (h *SSEHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *SSEHub) PublishJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	otel.RecordSSEEvent(context.Background())
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- b:
		default:
		}
	}
}

// Handler streams hub events as text/event-stream. Each connection starts with a
// "connected" event and, when Hello is set, a full snapshot.
func (h *SSEHub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}
		hdr := w.Header()
		hdr.Set("Content-Type", "text/event-stream")
		hdr.Set("Cache-Control", "no-cache")
		hdr.Set("Connection", "keep-alive")
		hdr.Set("X-Accel-Buffering", "no")

		ch := h.Subscribe()
		defer h.Unsubscribe(ch)

		_, _ = fmt.Fprintf(w, "retry: %d\n", reconnectDelay.Milliseconds())
		writeEvent(w, []byte(`{"type":"connected"}`))
		if h.Hello != nil {
			if b, err := json.Marshal(map[string]any{"type": "snapshot", "state": h.Hello()}); err == nil {
				writeEvent(w, b)
			}
		}
		flusher.Flush()

		ping := time.NewTicker(keepaliveInterval)
		defer ping.Stop()
		for {
			select {
			case <-r.Context().Done():
				return
			case <-ping.C:
				_, _ = io.WriteString(w, ": keepalive\n\n")
			case msg, open := <-ch:
				if !open {
					return
				}
				writeEvent(w, msg)
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w io.Writer, payload []byte) {
	_, _ = fmt.Fprintf(w, "data: %s\n\n", payload)
}
