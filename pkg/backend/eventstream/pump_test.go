package eventstream

import (
	"context"
	"strings"
	"testing"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/backend"
)

func pumpAll(t *testing.T, data string) []backend.StreamEvent {
	t.Helper()
	ch := make(chan backend.StreamEvent, 64)
	go func() {
		defer close(ch)
		Pump(context.Background(), strings.NewReader(data), ch)
	}()

	var events []backend.StreamEvent
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestPumpForwardsEventsUntilSentinel(t *testing.T) {
	events := pumpAll(t, "data: {\"a\":1}\n\ndata: {\"a\":2}\n\ndata: [DONE]\n")

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %v", len(events), events)
	}
	for i, want := range []string{`{"a":1}`, `{"a":2}`} {
		if events[i].Err != nil {
			t.Errorf("event %d carries error: %v", i, events[i].Err)
		}
		if string(events[i].Data) != want {
			t.Errorf("event %d = %q, want %q", i, events[i].Data, want)
		}
	}
}

func TestPumpEOFWithoutSentinel(t *testing.T) {
	// A stream that ends without [DONE] terminates cleanly; the trailing
	// unterminated line is still decoded.
	events := pumpAll(t, "data: {\"a\":1}\ndata: {\"a\":2}")

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %v", len(events), events)
	}
	if string(events[1].Data) != `{"a":2}` {
		t.Errorf("flush event = %q", events[1].Data)
	}
}

func TestPumpStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := make(chan backend.StreamEvent, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		Pump(ctx, strings.NewReader("data: {\"a\":1}\n"), ch)
	}()
	<-done

	select {
	case ev, ok := <-ch:
		if ok && ev.Err != nil {
			t.Errorf("cancellation should not surface as an error event: %v", ev.Err)
		}
	default:
	}
}
