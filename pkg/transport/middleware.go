package transport

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/api"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/gateway"
)

// Recovery returns middleware that converts handler panics into
// server_error responses so one bad request cannot take the process down.
func Recovery() Middleware {
	return func(next Dispatcher) Dispatcher {
		return DispatcherFunc(func(ctx context.Context, req *gateway.Request, w gateway.ResponseWriter) (retErr error) {
			defer func() {
				if r := recover(); r != nil {
					retErr = api.NewServerError(fmt.Sprintf("internal server error: %v", r))
				}
			}()
			return next.Dispatch(ctx, req, w)
		})
	}
}

// RequestID returns middleware that assigns a unique request ID when the
// hosting environment did not supply one. Completion IDs derive from it.
func RequestID() Middleware {
	return func(next Dispatcher) Dispatcher {
		return DispatcherFunc(func(ctx context.Context, req *gateway.Request, w gateway.ResponseWriter) error {
			if req.RequestID == "" {
				req.RequestID = api.NewRequestID()
			}
			return next.Dispatch(ctx, req, w)
		})
	}
}

// Logging returns middleware that emits one structured log entry per
// dispatch with the route, request ID, duration, and outcome.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Dispatcher) Dispatcher {
		return DispatcherFunc(func(ctx context.Context, req *gateway.Request, w gateway.ResponseWriter) error {
			start := time.Now()

			err := next.Dispatch(ctx, req, w)

			attrs := []slog.Attr{
				slog.String("request_id", req.RequestID),
				slog.String("method", req.Method),
				slog.String("path", req.Path),
				slog.String("route", gateway.RouteOf(req.Method, req.Path).String()),
				slog.Duration("duration", time.Since(start)),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelError, "request failed", attrs...)
			} else {
				logger.LogAttrs(ctx, slog.LevelInfo, "request completed", attrs...)
			}
			return err
		})
	}
}
