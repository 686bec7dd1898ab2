package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/api"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/gateway"
)

// LambdaHandler adapts API Gateway v2 proxy events to the dispatcher. The
// proxy integration buffers whole responses, so this adapter reports
// Streaming() false and stream-requested completions are served
// synchronously.
type LambdaHandler struct {
	dispatcher Dispatcher
}

// NewLambdaHandler creates a Lambda adapter around the dispatcher with the
// given middleware applied.
func NewLambdaHandler(d Dispatcher, middlewares ...Middleware) *LambdaHandler {
	if len(middlewares) > 0 {
		d = Chain(middlewares...)(d)
	}
	return &LambdaHandler{dispatcher: d}
}

// Handle processes one proxy event. It never returns a Go error; every
// failure becomes an error envelope in the proxy response so API Gateway
// forwards it to the client instead of replacing it with its own 502.
func (h *LambdaHandler) Handle(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	req := &gateway.Request{
		Method:          event.RequestContext.HTTP.Method,
		Path:            event.RawPath,
		Headers:         event.Headers,
		Body:            []byte(event.Body),
		IsBase64Encoded: event.IsBase64Encoded,
		RequestID:       event.RequestContext.RequestID,
	}

	bw := &bufferedWriter{}
	if err := h.dispatcher.Dispatch(ctx, req, bw); err != nil {
		apiErr := asAPIError(err)
		bw.WriteJSON(HTTPStatusFromError(apiErr), api.ErrorResponse{Error: apiErr})
	}

	return bw.response(), nil
}

// bufferedWriter implements gateway.ResponseWriter for the buffered proxy
// response form.
type bufferedWriter struct {
	status     int
	body       []byte
	marshalErr error
}

var _ gateway.ResponseWriter = (*bufferedWriter)(nil)

func (b *bufferedWriter) WriteJSON(status int, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		b.marshalErr = err
		return err
	}
	b.status = status
	b.body = data
	return nil
}

func (b *bufferedWriter) WriteEmpty(status int) error {
	b.status = status
	b.body = nil
	return nil
}

func (b *bufferedWriter) Streaming() bool { return false }

func (b *bufferedWriter) WriteEvent(json.RawMessage) error {
	return errors.New("streaming is not available on the buffered proxy transport")
}

func (b *bufferedWriter) WriteDone() error {
	return errors.New("streaming is not available on the buffered proxy transport")
}

// response assembles the proxy response, with CORS headers on every
// outcome.
func (b *bufferedWriter) response() events.APIGatewayV2HTTPResponse {
	headers := corsHeaders()
	headers["Content-Type"] = "application/json"

	status := b.status
	body := b.body
	if b.marshalErr != nil || status == 0 {
		apiErr := api.NewServerError("failed to serialize response")
		if b.marshalErr != nil {
			apiErr = api.NewServerError("failed to serialize response: " + b.marshalErr.Error())
		}
		status = http.StatusInternalServerError
		body, _ = json.Marshal(api.ErrorResponse{Error: apiErr})
	}

	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}
}
