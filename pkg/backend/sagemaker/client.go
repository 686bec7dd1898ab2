package sagemaker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime/types"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/api"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/backend"
)

const contentTypeJSON = "application/json"

// Config holds configuration for the SageMaker transport.
type Config struct {
	// EndpointName is the SageMaker endpoint to invoke. May be empty at
	// construction time; invocations then fail with a server_error rather
	// than the process refusing to start.
	EndpointName string

	// Region for the SageMaker runtime client.
	Region string
}

// Client invokes a SageMaker runtime endpoint. The underlying runtime
// client is created lazily on first use, at most once per process, and is
// shared read-only by concurrent requests afterwards.
type Client struct {
	cfg Config

	initOnce sync.Once
	runtime  *sagemakerruntime.Client
	initErr  error
}

var _ backend.Invoker = (*Client)(nil)

// New creates a SageMaker-backed Invoker. No AWS calls are made until the
// first invocation.
func New(cfg Config) *Client {
	return &Client{cfg: cfg}
}

// Name returns the transport identifier.
func (c *Client) Name() string {
	return "sagemaker"
}

// client returns the lazily-created runtime client. Creation runs at most
// once; a creation failure is sticky and reported on every invocation.
func (c *Client) client(ctx context.Context) (*sagemakerruntime.Client, error) {
	c.initOnce.Do(func() {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.cfg.Region))
		if err != nil {
			c.initErr = api.NewServerError("loading AWS configuration: " + err.Error())
			return
		}
		c.runtime = sagemakerruntime.NewFromConfig(awsCfg)
	})
	return c.runtime, c.initErr
}

// Invoke performs a synchronous endpoint invocation and returns the
// generated text.
func (c *Client) Invoke(ctx context.Context, p backend.Payload) (*backend.Result, error) {
	if c.cfg.EndpointName == "" {
		return nil, errEndpointNotConfigured()
	}

	rt, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, api.NewServerError("marshaling backend payload: " + err.Error())
	}

	out, err := rt.InvokeEndpoint(ctx, &sagemakerruntime.InvokeEndpointInput{
		EndpointName: aws.String(c.cfg.EndpointName),
		ContentType:  aws.String(contentTypeJSON),
		Body:         body,
	})
	if err != nil {
		return nil, mapInvokeError(err)
	}

	return decodeResult(out.Body)
}

// InvokeStream opens a streaming invocation. Payload parts from the
// response stream are decoded into discrete events; the stream is closed
// on exit regardless of how the consumer finishes.
func (c *Client) InvokeStream(ctx context.Context, p backend.Payload) (*backend.Stream, error) {
	if c.cfg.EndpointName == "" {
		return nil, errEndpointNotConfigured()
	}

	rt, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, api.NewServerError("marshaling backend payload: " + err.Error())
	}

	out, err := rt.InvokeEndpointWithResponseStream(ctx, &sagemakerruntime.InvokeEndpointWithResponseStreamInput{
		EndpointName: aws.String(c.cfg.EndpointName),
		ContentType:  aws.String(contentTypeJSON),
		Body:         body,
	})
	if err != nil {
		return nil, mapInvokeError(err)
	}

	eventStream := out.GetStream()
	ch := make(chan backend.StreamEvent, 16)

	go func() {
		defer close(ch)
		defer eventStream.Close()
		pumpResponseStream(ctx, eventStream, ch)
	}()

	return backend.NewStream(ch, eventStream.Close), nil
}

// Close releases transport resources. The runtime client holds no
// connections that outlive requests.
func (c *Client) Close() error {
	return nil
}

func errEndpointNotConfigured() *api.APIError {
	return api.NewServerError("SageMaker endpoint name is not configured")
}

// decodeResult parses the endpoint's JSON response body. The container
// returns a single object; the array form used by some HF containers is
// accepted as well.
func decodeResult(body []byte) (*backend.Result, error) {
	var res backend.Result
	if err := json.Unmarshal(body, &res); err == nil {
		return &res, nil
	}

	var list []backend.Result
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
		return &list[0], nil
	}

	return nil, api.NewServerError("unexpected backend response: " + truncate(body, 200))
}

// mapInvokeError converts SDK invocation failures into the gateway error
// taxonomy. Model-level faults map to model_error; everything else is a
// server_error with the underlying failure text preserved.
func mapInvokeError(err error) *api.APIError {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var modelErr *types.ModelError
	if errors.As(err, &modelErr) {
		return api.NewModelError(fmt.Sprintf("Model error: %s", aws.ToString(modelErr.Message)))
	}

	var streamErr *types.ModelStreamError
	if errors.As(err, &streamErr) {
		return api.NewModelError(fmt.Sprintf("Model error: %s", aws.ToString(streamErr.Message)))
	}

	var validationErr *types.ValidationError
	if errors.As(err, &validationErr) {
		return api.NewInvalidRequestError(aws.ToString(validationErr.Message))
	}

	return api.NewServerError(err.Error())
}

func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
