// Package api defines the OpenAI-compatible wire types for the SageMaker
// gateway: chat and text completion requests/responses, streaming chunks,
// the model listing, the error taxonomy, ID generation, and the
// whitespace-based usage accounting.
//
// The package performs no I/O. All types serialize to JSON compatible with
// the OpenAI Chat Completions and legacy Completions wire formats, so
// standard OpenAI client libraries can talk to the gateway unchanged.
package api
