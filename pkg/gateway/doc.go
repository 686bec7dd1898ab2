// Package gateway implements the protocol-translation core: it routes
// transport-neutral inbound requests, parses OpenAI-shaped bodies,
// flattens conversations into the backend's generation payload, invokes
// the backend synchronously or as a stream, and reconstructs
// OpenAI-compatible responses.
//
// The package is stateless; every value is created per request. Transport
// adapters (HTTP, Lambda) live in pkg/transport and own header handling,
// status codes, and the error envelope.
package gateway
