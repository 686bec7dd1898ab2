package backend

import (
	"context"
	"encoding/json"
	"sync"
)

// Payload is the sole request shape the backend understands. It has no
// concept of roles; the gateway flattens conversations into Inputs before
// this point.
type Payload struct {
	Inputs     string     `json:"inputs"`
	Parameters Parameters `json:"parameters"`
}

// Parameters holds the generation parameters accepted by the backend.
type Parameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
	DoSample     bool    `json:"do_sample"`
}

// Generation parameter defaults applied when the client request omits them.
const (
	DefaultMaxNewTokens = 100
	DefaultTemperature  = 0.7
)

// Result is the backend's sync response: the generated text as one blob.
type Result struct {
	GeneratedText string `json:"generated_text"`
}

// Invoker performs generation calls against a backend endpoint.
// Implementations must be safe for concurrent use; the process shares a
// single Invoker across all requests.
type Invoker interface {
	// Name identifies the transport for logging and metrics.
	Name() string

	// Invoke performs a synchronous generation call. The entire generated
	// text arrives at once.
	Invoke(ctx context.Context, p Payload) (*Result, error)

	// InvokeStream opens a streaming generation call. It blocks only until
	// the stream is open; fragments arrive on the returned Stream as the
	// backend produces them. The caller must drain or Close the stream.
	InvokeStream(ctx context.Context, p Payload) (*Stream, error)

	// Close releases transport resources.
	Close() error
}

// StreamEvent is one decoded event from a streaming invocation: either a
// JSON event payload or a terminal error. A stream ends by channel close
// after the backend's end-of-stream sentinel or after an error event.
type StreamEvent struct {
	Data json.RawMessage
	Err  error
}

// Stream is a lazy, finite, non-restartable sequence of streaming events.
// Close is idempotent and must be called when the consumer stops early;
// draining Events to channel close releases the stream as well.
type Stream struct {
	events    <-chan StreamEvent
	closeOnce sync.Once
	closeFn   func() error
	closeErr  error
}

// NewStream wraps an event channel and a close function into a Stream.
// closeFn may be nil when the producer has nothing to release.
func NewStream(events <-chan StreamEvent, closeFn func() error) *Stream {
	return &Stream{events: events, closeFn: closeFn}
}

// Events returns the event channel. It is closed when the stream ends.
func (s *Stream) Events() <-chan StreamEvent {
	return s.events
}

// Close releases the underlying transport stream. Safe to call more than
// once and concurrently with the producer.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		if s.closeFn != nil {
			s.closeErr = s.closeFn()
		}
	})
	return s.closeErr
}
