package api

import (
	"strings"
	"testing"
)

func TestCompletionIDsUseRequestID(t *testing.T) {
	if got := ChatCompletionID("req-123"); got != "chatcmpl-req-123" {
		t.Errorf("ChatCompletionID = %q, want chatcmpl-req-123", got)
	}
	if got := TextCompletionID("req-123"); got != "cmpl-req-123" {
		t.Errorf("TextCompletionID = %q, want cmpl-req-123", got)
	}
}

func TestCompletionIDsFallBackToUUID(t *testing.T) {
	id := ChatCompletionID("")
	if !strings.HasPrefix(id, "chatcmpl-") {
		t.Fatalf("missing prefix: %q", id)
	}
	if len(id) == len("chatcmpl-") {
		t.Error("expected generated suffix for empty request ID")
	}
	if other := ChatCompletionID(""); other == id {
		t.Error("generated IDs should be unique")
	}
}
