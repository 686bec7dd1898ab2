package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/api"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/backend"
)

// Gateway dispatches inbound requests and translates between the OpenAI
// wire format and the backend's generation contract. It holds no mutable
// state; the shared Invoker is safe for concurrent use.
type Gateway struct {
	invoker backend.Invoker
	modelID string
	logger  *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// New creates a Gateway fronting the given invoker. modelID is the backend
// identifier reported by the model listing and echoed in completion
// responses.
func New(invoker backend.Invoker, modelID string, opts ...Option) *Gateway {
	g := &Gateway{
		invoker: invoker,
		modelID: modelID,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Dispatch routes one request. Errors returned here are rendered as the
// error envelope by the calling adapter; every error is (or wraps) an
// *api.APIError so the adapter can derive the HTTP status.
func (g *Gateway) Dispatch(ctx context.Context, req *Request, w ResponseWriter) error {
	switch RouteOf(req.Method, req.Path) {
	case RouteModels:
		return w.WriteJSON(http.StatusOK, api.NewModelList(g.modelID))
	case RoutePreflight:
		return w.WriteEmpty(http.StatusOK)
	case RouteCompletion:
		return g.handleCompletion(ctx, req, w)
	default:
		return api.NewNotFoundError("Not found")
	}
}

// handleCompletion serves POST requests for both completion paths. The
// payload shape selects the translation (messages are flattened, otherwise
// the prompt field is the input); the path selects the response shape
// ("/chat/completions" yields the chat shape, anything else the legacy
// text completion shape).
func (g *Gateway) handleCompletion(ctx context.Context, req *Request, w ResponseWriter) error {
	creq, apiErr := parseRequest(req.Body, req.IsBase64Encoded)
	if apiErr != nil {
		return apiErr
	}

	prompt := promptFor(creq)
	payload := buildPayload(prompt, creq)

	if creq.Stream && w.Streaming() {
		return g.streamCompletion(ctx, payload, w)
	}

	result, err := g.invoker.Invoke(ctx, payload)
	if err != nil {
		return err
	}

	if strings.Contains(req.Path, "/chat/completions") {
		return w.WriteJSON(http.StatusOK, chatResponse(req.RequestID, g.modelID, prompt, result.GeneratedText))
	}
	return w.WriteJSON(http.StatusOK, textResponse(req.RequestID, g.modelID, prompt, result.GeneratedText))
}

// streamCompletion re-emits the backend's decoded delta events to the
// client and terminates with the end sentinel. The backend stream is
// closed on exit regardless of how the forwarding loop ends.
func (g *Gateway) streamCompletion(ctx context.Context, payload backend.Payload, w ResponseWriter) error {
	stream, err := g.invoker.InvokeStream(ctx, payload)
	if err != nil {
		return err
	}
	defer stream.Close()

	for ev := range stream.Events() {
		if ev.Err != nil {
			return ev.Err
		}
		if err := w.WriteEvent(ev.Data); err != nil {
			// Client went away; closing the backend stream is all that
			// is left to do.
			g.logger.Warn("stream write failed", "error", err.Error())
			return nil
		}
	}
	return w.WriteDone()
}
