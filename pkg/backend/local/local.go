// Package local implements backend.Invoker against a text-generation
// container reachable over plain HTTP, e.g. the same LMI container that
// SageMaker hosts, run locally during development. It speaks the identical
// contract: POST /invocations with {"inputs", "parameters"}, a
// {"generated_text"} object for sync calls, and the "data:"-framed event
// stream for streaming calls.
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/api"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/backend"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/backend/eventstream"
)

const invocationsPath = "/invocations"

// Config holds configuration for the local HTTP transport.
type Config struct {
	// BaseURL of the container (e.g. "http://localhost:8080").
	BaseURL string

	// Timeout for sync requests. Defaults to 120s. Streaming requests are
	// not bounded by this; the context controls their lifetime.
	Timeout time.Duration
}

// Client invokes a local generation container over HTTP.
type Client struct {
	cfg    Config
	client *http.Client
}

var _ backend.Invoker = (*Client)(nil)

// New creates a local HTTP Invoker. Returns an error if BaseURL is empty.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("local: BaseURL is required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Name returns the transport identifier.
func (c *Client) Name() string {
	return "local"
}

// Invoke performs a synchronous generation call.
func (c *Client) Invoke(ctx context.Context, p backend.Payload) (*backend.Result, error) {
	resp, err := c.post(ctx, c.client, p, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, mapHTTPError(resp)
	}

	var res backend.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, api.NewServerError("parsing backend response: " + err.Error())
	}
	return &res, nil
}

// InvokeStream opens a streaming generation call. The response body is
// decoded incrementally and closed when the stream ends, errors, or the
// context is cancelled.
func (c *Client) InvokeStream(ctx context.Context, p backend.Payload) (*backend.Stream, error) {
	// No client timeout for streaming; a stream can legitimately outlast
	// any fixed deadline.
	streamClient := &http.Client{Transport: c.client.Transport}

	resp, err := c.post(ctx, streamClient, p, true)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, mapHTTPError(resp)
	}

	ch := make(chan backend.StreamEvent, 16)
	go func() {
		defer close(ch)
		defer resp.Body.Close()
		eventstream.Pump(ctx, resp.Body, ch)
	}()

	return backend.NewStream(ch, resp.Body.Close), nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *Client) post(ctx context.Context, client *http.Client, p backend.Payload, stream bool) (*http.Response, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, api.NewServerError("marshaling backend payload: " + err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+invocationsPath, bytes.NewReader(body))
	if err != nil {
		return nil, api.NewServerError("creating backend request: " + err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, api.NewServerError("backend connection error: " + err.Error())
	}
	return resp, nil
}

// mapHTTPError converts a non-2xx container response into the error
// taxonomy: 4xx means the payload was rejected, 5xx means the model
// itself failed.
func mapHTTPError(resp *http.Response) *api.APIError {
	msg := extractErrorMessage(resp.Body)

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		if msg == "" {
			msg = fmt.Sprintf("backend rejected request (HTTP %d)", resp.StatusCode)
		}
		return api.NewInvalidRequestError(msg)
	case resp.StatusCode >= 500:
		if msg == "" {
			msg = fmt.Sprintf("Model error: backend returned HTTP %d", resp.StatusCode)
		}
		return api.NewModelError(msg)
	default:
		if msg == "" {
			msg = fmt.Sprintf("unexpected backend status HTTP %d", resp.StatusCode)
		}
		return api.NewServerError(msg)
	}
}

// extractErrorMessage tries to pull a message out of an error body, which
// may be an {"error": {...}} envelope, a bare {"message": ...} object, or
// plain text.
func extractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil {
		if envelope.Error.Message != "" {
			return envelope.Error.Message
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return strings.TrimSpace(string(data))
}
