package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/api"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/backend"
)

// InstrumentInvoker wraps a backend.Invoker so every invocation records
// latency, outcome, and token counts. Token counts use the same
// whitespace tokenization the API usage block reports.
func InstrumentInvoker(inner backend.Invoker) backend.Invoker {
	return &instrumentedInvoker{inner: inner}
}

type instrumentedInvoker struct {
	inner backend.Invoker
}

func (i *instrumentedInvoker) Name() string { return i.inner.Name() }

func (i *instrumentedInvoker) Invoke(ctx context.Context, p backend.Payload) (*backend.Result, error) {
	name := i.inner.Name()
	timer := prometheus.NewTimer(BackendLatency.WithLabelValues(name, "invoke"))
	result, err := i.inner.Invoke(ctx, p)
	timer.ObserveDuration()

	BackendRequestsTotal.WithLabelValues(name, "invoke", statusLabel(err)).Inc()
	BackendTokensTotal.WithLabelValues(name, "input").Add(float64(api.CountTokens(p.Inputs)))
	if result != nil {
		BackendTokensTotal.WithLabelValues(name, "output").Add(float64(api.CountTokens(result.GeneratedText)))
	}
	return result, err
}

func (i *instrumentedInvoker) InvokeStream(ctx context.Context, p backend.Payload) (*backend.Stream, error) {
	name := i.inner.Name()
	timer := prometheus.NewTimer(BackendLatency.WithLabelValues(name, "invoke_stream"))
	stream, err := i.inner.InvokeStream(ctx, p)
	timer.ObserveDuration()

	BackendRequestsTotal.WithLabelValues(name, "invoke_stream", statusLabel(err)).Inc()
	BackendTokensTotal.WithLabelValues(name, "input").Add(float64(api.CountTokens(p.Inputs)))
	if err != nil {
		return nil, err
	}

	StreamsActive.Inc()
	out := make(chan backend.StreamEvent)
	done := make(chan struct{})
	go func() {
		defer close(out)
		defer StreamsActive.Dec()
		for ev := range stream.Events() {
			select {
			case out <- ev:
			case <-done:
				return
			}
		}
	}()
	closeFn := func() error {
		close(done)
		return stream.Close()
	}
	return backend.NewStream(out, closeFn), nil
}

func (i *instrumentedInvoker) Close() error { return i.inner.Close() }
