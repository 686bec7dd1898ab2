package transport

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/api"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/gateway"
)

// Adapter serves the gateway over HTTP. Routing happens inside the
// dispatcher, so the adapter registers a single catch-all handler.
type Adapter struct {
	dispatcher  Dispatcher
	maxBodySize int64
	logger      *slog.Logger
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithMaxBodySize caps the inbound request body. Defaults to 10 MB.
func WithMaxBodySize(n int64) AdapterOption {
	return func(a *Adapter) { a.maxBodySize = n }
}

// WithAdapterLogger sets the structured logger.
func WithAdapterLogger(l *slog.Logger) AdapterOption {
	return func(a *Adapter) { a.logger = l }
}

// NewAdapter creates an HTTP adapter around the dispatcher with the given
// middleware applied (first middleware outermost).
func NewAdapter(d Dispatcher, middlewares []Middleware, opts ...AdapterOption) *Adapter {
	if len(middlewares) > 0 {
		d = Chain(middlewares...)(d)
	}
	a := &Adapter{
		dispatcher:  d,
		maxBodySize: 10 << 20,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ServeHTTP implements http.Handler.
func (a *Adapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeErrorEnvelope(w, api.NewInvalidRequestError(
				fmt.Sprintf("request body too large (max %d bytes)", a.maxBodySize)))
			return
		}
		writeErrorEnvelope(w, api.NewServerError("reading request body: "+err.Error()))
		return
	}

	req := &gateway.Request{
		Method:    r.Method,
		Path:      r.URL.Path,
		Headers:   flattenHeaders(r.Header),
		Body:      body,
		RequestID: r.Header.Get("X-Request-ID"),
	}

	hw := newHTTPWriter(w)
	if err := a.dispatcher.Dispatch(r.Context(), req, hw); err != nil {
		a.writeDispatchError(hw, err)
	}
}

// writeDispatchError renders a dispatch failure. Once streaming has
// started the status line is gone, so the error is logged and the stream
// is terminated instead.
func (a *Adapter) writeDispatchError(hw *httpWriter, err error) {
	apiErr := asAPIError(err)
	if hw.startedStreaming() {
		a.logger.Error("stream failed mid-flight", "error", apiErr.Error())
		hw.WriteDone()
		return
	}
	hw.WriteJSON(HTTPStatusFromError(apiErr), api.ErrorResponse{Error: apiErr})
}

// writeErrorEnvelope writes an error envelope straight to an
// http.ResponseWriter, for failures before a gateway writer exists.
func writeErrorEnvelope(w http.ResponseWriter, apiErr *api.APIError) {
	hw := newHTTPWriter(w)
	hw.WriteJSON(HTTPStatusFromError(apiErr), api.ErrorResponse{Error: apiErr})
}

// flattenHeaders keeps the first value of each header, matching the
// single-valued header map of the proxy event envelope.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}
