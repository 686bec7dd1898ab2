package gateway

import (
	"encoding/base64"
	"testing"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/api"
)

func TestParseRequestEmptyBody(t *testing.T) {
	for _, body := range [][]byte{nil, {}, []byte("   \n")} {
		req, apiErr := parseRequest(body, false)
		if apiErr != nil {
			t.Fatalf("parseRequest(%q): %v", body, apiErr)
		}
		if len(req.Messages) != 0 || req.Prompt != "" {
			t.Errorf("empty body produced non-empty request: %+v", req)
		}
	}
}

func TestParseRequestMalformed(t *testing.T) {
	_, apiErr := parseRequest([]byte(`{"messages": [`), false)
	if apiErr == nil {
		t.Fatal("expected error")
	}
	if apiErr.Type != api.ErrorTypeInvalidRequest {
		t.Errorf("Type = %q, want invalid_request_error", apiErr.Type)
	}
}

func TestParseRequestBase64(t *testing.T) {
	raw := `{"prompt": "hello", "max_tokens": 5}`
	encoded := base64.StdEncoding.EncodeToString([]byte(raw))

	fromB64, apiErr := parseRequest([]byte(encoded), true)
	if apiErr != nil {
		t.Fatalf("parseRequest base64: %v", apiErr)
	}
	fromRaw, apiErr := parseRequest([]byte(raw), false)
	if apiErr != nil {
		t.Fatalf("parseRequest raw: %v", apiErr)
	}

	if fromB64.Prompt != fromRaw.Prompt || *fromB64.MaxTokens != *fromRaw.MaxTokens {
		t.Errorf("base64 and raw parses differ: %+v vs %+v", fromB64, fromRaw)
	}
}

func TestParseRequestBadBase64(t *testing.T) {
	_, apiErr := parseRequest([]byte("!!! not base64 !!!"), true)
	if apiErr == nil {
		t.Fatal("expected error")
	}
	if apiErr.Type != api.ErrorTypeInvalidRequest {
		t.Errorf("Type = %q, want invalid_request_error", apiErr.Type)
	}
}
