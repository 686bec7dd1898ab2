package transport

import (
	"context"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/gateway"
)

// Dispatcher handles one inbound request. *gateway.Gateway is the primary
// implementation; middleware wraps it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *gateway.Request, w gateway.ResponseWriter) error
}

// DispatcherFunc adapts an ordinary function to a Dispatcher.
type DispatcherFunc func(ctx context.Context, req *gateway.Request, w gateway.ResponseWriter) error

// Dispatch calls f(ctx, req, w).
func (f DispatcherFunc) Dispatch(ctx context.Context, req *gateway.Request, w gateway.ResponseWriter) error {
	return f(ctx, req, w)
}

// Middleware wraps a Dispatcher to add cross-cutting behavior.
type Middleware func(Dispatcher) Dispatcher

// Chain composes middleware in order: Chain(a, b, c) produces
// a(b(c(handler))), so the first middleware is the outermost wrapper.
func Chain(middlewares ...Middleware) Middleware {
	return func(next Dispatcher) Dispatcher {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
