// Package transport adapts hosting environments to the gateway dispatcher.
// Two adapters are provided: an HTTP adapter for the long-running server
// (with SSE re-emission for streaming completions) and a Lambda adapter
// for API Gateway v2 proxy events (buffered responses only).
//
// The package also owns the cross-cutting dispatch middleware (recovery,
// request IDs, logging), the error-to-status mapping, and the CORS headers
// attached to every response.
package transport
