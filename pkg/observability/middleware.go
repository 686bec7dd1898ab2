package observability

import (
	"context"
	"errors"
	"time"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/api"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/gateway"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/transport"
)

// Metrics returns a dispatch middleware that records request counts and
// durations per route. It sits inside the transport chain, so it observes
// both HTTP and Lambda traffic with the same labels.
func Metrics() transport.Middleware {
	return func(next transport.Dispatcher) transport.Dispatcher {
		return transport.DispatcherFunc(func(ctx context.Context, req *gateway.Request, w gateway.ResponseWriter) error {
			start := time.Now()
			err := next.Dispatch(ctx, req, w)

			route := gateway.RouteOf(req.Method, req.Path).String()
			RequestsTotal.WithLabelValues(route, statusLabel(err)).Inc()
			RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
			return err
		})
	}
}

// statusLabel maps a dispatch outcome to a bounded label set: "ok" for
// success, the API error type otherwise.
func statusLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return string(apiErr.Type)
	}
	return string(api.ErrorTypeServerError)
}
