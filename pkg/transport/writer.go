package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/gateway"
)

// writerState tracks what has been written so far.
type writerState int

const (
	writerIdle writerState = iota
	writerStreaming
	writerCompleted
)

// httpWriter implements gateway.ResponseWriter over an http.ResponseWriter,
// producing buffered JSON for sync responses and SSE frames for streaming.
type httpWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController

	mu    sync.Mutex
	state writerState
}

var _ gateway.ResponseWriter = (*httpWriter)(nil)

func newHTTPWriter(w http.ResponseWriter) *httpWriter {
	return &httpWriter{w: w, rc: http.NewResponseController(w)}
}

// WriteJSON writes a complete buffered JSON response with CORS headers.
func (h *httpWriter) WriteJSON(status int, body any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != writerIdle {
		return errors.New("cannot write response: writer is not idle")
	}
	h.state = writerCompleted

	applyCORS(h.w.Header())
	h.w.Header().Set("Content-Type", "application/json")
	h.w.WriteHeader(status)
	return json.NewEncoder(h.w).Encode(body)
}

// WriteEmpty writes headers only.
func (h *httpWriter) WriteEmpty(status int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != writerIdle {
		return errors.New("cannot write response: writer is not idle")
	}
	h.state = writerCompleted

	applyCORS(h.w.Header())
	h.w.WriteHeader(status)
	return nil
}

// Streaming reports that SSE re-emission is available.
func (h *httpWriter) Streaming() bool {
	return true
}

// WriteEvent emits one SSE data frame and flushes it immediately.
func (h *httpWriter) WriteEvent(data json.RawMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == writerCompleted {
		return errors.New("cannot write event: writer is completed")
	}
	if h.state == writerIdle {
		applyCORS(h.w.Header())
		h.w.Header().Set("Content-Type", "text/event-stream")
		h.w.Header().Set("Cache-Control", "no-cache")
		h.w.Header().Set("Connection", "keep-alive")
		h.state = writerStreaming
	}

	if _, err := fmt.Fprintf(h.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return h.rc.Flush()
}

// WriteDone terminates the SSE stream with the end sentinel.
func (h *httpWriter) WriteDone() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == writerCompleted {
		return nil
	}
	if h.state == writerIdle {
		applyCORS(h.w.Header())
		h.w.Header().Set("Content-Type", "text/event-stream")
	}
	h.state = writerCompleted

	if _, err := fmt.Fprint(h.w, "data: [DONE]\n\n"); err != nil {
		return fmt.Errorf("writing done sentinel: %w", err)
	}
	return h.rc.Flush()
}

// startedStreaming reports whether at least one event frame went out.
func (h *httpWriter) startedStreaming() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state != writerIdle && h.w.Header().Get("Content-Type") == "text/event-stream"
}

func applyCORS(h http.Header) {
	for k, v := range corsHeaders() {
		h.Set(k, v)
	}
}
