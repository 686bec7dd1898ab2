// Package eventstream decodes the backend's framed event protocol: a byte
// stream of newline-delimited lines where lines starting with "data: "
// carry a JSON event payload and the literal payload "[DONE]" marks the
// end of the stream. All other lines (blank keep-alives, comments) are
// ignored.
package eventstream

import (
	"bytes"
	"encoding/json"
	"log/slog"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

// Decoder incrementally decodes framed events from raw byte chunks.
// Chunks need not be line-aligned: a line split across chunk boundaries is
// reassembled before prefix matching and JSON parsing. A Decoder holds no
// more than the current unparsed partial line and must not be reused
// across streams.
type Decoder struct {
	partial []byte
	done    bool
}

// NewDecoder creates a fresh decoder for one stream.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode consumes one raw chunk and returns the events completed by it.
// After the end-of-stream sentinel has been seen, further input is
// discarded and Decode returns nil.
func (d *Decoder) Decode(chunk []byte) []json.RawMessage {
	if d.done {
		return nil
	}

	d.partial = append(d.partial, chunk...)

	var events []json.RawMessage
	for {
		idx := bytes.IndexByte(d.partial, '\n')
		if idx < 0 {
			return events
		}
		line := d.partial[:idx]
		d.partial = d.partial[idx+1:]

		ev, done := decodeLine(line)
		if done {
			d.done = true
			d.partial = nil
			return events
		}
		if ev != nil {
			events = append(events, ev)
		}
	}
}

// Flush decodes a trailing line that was never newline-terminated. Call it
// once when the transport reports end of stream.
func (d *Decoder) Flush() []json.RawMessage {
	if d.done || len(d.partial) == 0 {
		return nil
	}
	line := d.partial
	d.partial = nil

	ev, done := decodeLine(line)
	if done {
		d.done = true
		return nil
	}
	if ev == nil {
		return nil
	}
	return []json.RawMessage{ev}
}

// Done reports whether the end-of-stream sentinel has been decoded.
func (d *Decoder) Done() bool {
	return d.done
}

// decodeLine parses a single complete line. It returns the event payload
// for data lines, or done=true for the sentinel. Non-data lines and
// malformed payloads yield neither.
func decodeLine(line []byte) (event json.RawMessage, done bool) {
	line = bytes.TrimSuffix(line, []byte("\r"))
	if !bytes.HasPrefix(line, []byte(dataPrefix)) {
		return nil, false
	}
	payload := line[len(dataPrefix):]
	if string(payload) == doneSentinel {
		return nil, true
	}
	if !json.Valid(payload) {
		slog.Warn("skipping malformed stream event", "data", truncate(payload, 200))
		return nil, false
	}
	// Copy out of the shared buffer; the caller may retain the event.
	ev := make(json.RawMessage, len(payload))
	copy(ev, payload)
	return ev, false
}

func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
