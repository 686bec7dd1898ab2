// Package backend defines the contract between the gateway and the
// text-generation backend: the generation payload, the sync result, the
// streaming fragment sequence, and the Invoker interface implemented by
// the transport adapters (sagemaker, local).
//
// The Invoker is a capability boundary. Nothing above this package sees
// transport-level detail, so swapping the backend transport never changes
// callers.
package backend
