package sagemaker

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime/types"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/backend"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/backend/eventstream"
)

// pumpResponseStream drains the SDK event stream, feeds payload part bytes
// through the framing decoder, and forwards decoded events on ch. The
// channel is NOT closed here; the caller owns it.
//
// Payload parts are raw byte chunks with no line-alignment guarantee, so
// the decoder reassembles partial lines across parts.
func pumpResponseStream(ctx context.Context, es *sagemakerruntime.InvokeEndpointWithResponseStreamEventStream, ch chan<- backend.StreamEvent) {
	dec := eventstream.NewDecoder()

	for event := range es.Events() {
		if ctx.Err() != nil {
			return
		}

		part, ok := event.(*types.ResponseStreamMemberPayloadPart)
		if !ok {
			continue
		}

		for _, ev := range dec.Decode(part.Value.Bytes) {
			select {
			case ch <- backend.StreamEvent{Data: ev}:
			case <-ctx.Done():
				return
			}
		}
		if dec.Done() {
			return
		}
	}

	// Stream ended without the sentinel: flush a trailing partial line,
	// then surface any transport error.
	for _, ev := range dec.Flush() {
		select {
		case ch <- backend.StreamEvent{Data: ev}:
		case <-ctx.Done():
			return
		}
	}

	if err := es.Err(); err != nil && ctx.Err() == nil {
		select {
		case ch <- backend.StreamEvent{Err: mapInvokeError(err)}:
		case <-ctx.Done():
		}
	}
}
