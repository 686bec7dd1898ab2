package eventstream

import (
	"context"
	"encoding/json"
	"io"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/api"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/backend"
)

// Pump reads raw chunks from r, decodes them, and forwards each event on
// ch until the end-of-stream sentinel, EOF, a read error, or context
// cancellation. The channel is NOT closed by Pump; the caller owns it.
func Pump(ctx context.Context, r io.Reader, ch chan<- backend.StreamEvent) {
	dec := NewDecoder()
	buf := make([]byte, 4096)

	for {
		if ctx.Err() != nil {
			return
		}

		n, err := r.Read(buf)
		if n > 0 {
			if !send(ctx, ch, dec.Decode(buf[:n])) {
				return
			}
			if dec.Done() {
				return
			}
		}
		if err != nil {
			if err == io.EOF {
				send(ctx, ch, dec.Flush())
				return
			}
			if ctx.Err() != nil {
				return
			}
			select {
			case ch <- backend.StreamEvent{Err: api.NewServerError("stream read error: " + err.Error())}:
			case <-ctx.Done():
			}
			return
		}
	}
}

// send forwards decoded events, honoring cancellation. It reports false
// when the context ended before all events were delivered.
func send(ctx context.Context, ch chan<- backend.StreamEvent, events []json.RawMessage) bool {
	for _, ev := range events {
		select {
		case ch <- backend.StreamEvent{Data: ev}:
		case <-ctx.Done():
			return false
		}
	}
	return true
}
