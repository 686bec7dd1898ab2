package gateway

import "encoding/json"

// Request is the transport-neutral inbound envelope. It is immutable once
// built by an adapter.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string

	// Body is the raw request body, possibly base64-encoded (the Lambda
	// proxy integration delivers binary bodies that way).
	Body            []byte
	IsBase64Encoded bool

	// RequestID is the unique per-invocation identifier supplied by the
	// hosting environment. Empty for local/test invocation; completion IDs
	// then fall back to a generated UUID.
	RequestID string
}

// ResponseWriter abstracts buffered and streaming output for the
// dispatcher. Adapters attach CORS headers to everything they write,
// success or error.
type ResponseWriter interface {
	// WriteJSON writes a complete buffered JSON response.
	WriteJSON(status int, body any) error

	// WriteEmpty writes a response with headers only and no body.
	WriteEmpty(status int) error

	// Streaming reports whether this transport can emit incremental
	// events. When false, stream-requested completions are served
	// synchronously.
	Streaming() bool

	// WriteEvent re-emits one streaming delta event.
	WriteEvent(data json.RawMessage) error

	// WriteDone terminates the event stream with the end sentinel.
	WriteDone() error
}
