package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/api"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/backend"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/gateway"
)

// stubInvoker is a canned backend for adapter-level tests.
type stubInvoker struct {
	result     string
	err        error
	streamData []string
}

func (s *stubInvoker) Name() string { return "stub" }

func (s *stubInvoker) Invoke(ctx context.Context, p backend.Payload) (*backend.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &backend.Result{GeneratedText: s.result}, nil
}

func (s *stubInvoker) InvokeStream(ctx context.Context, p backend.Payload) (*backend.Stream, error) {
	if s.err != nil {
		return nil, s.err
	}
	ch := make(chan backend.StreamEvent, len(s.streamData))
	for _, d := range s.streamData {
		ch <- backend.StreamEvent{Data: json.RawMessage(d)}
	}
	close(ch)
	return backend.NewStream(ch, nil), nil
}

func (s *stubInvoker) Close() error { return nil }

func newTestServer(t *testing.T, inv backend.Invoker) *httptest.Server {
	t.Helper()
	gw := gateway.New(inv, "test-endpoint")
	adapter := NewAdapter(gw, []Middleware{Recovery(), RequestID()})
	srv := httptest.NewServer(adapter)
	t.Cleanup(srv.Close)
	return srv
}

func checkCORS(t *testing.T, h http.Header) {
	t.Helper()
	if got := h.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestAdapterListModels(t *testing.T) {
	srv := newTestServer(t, &stubInvoker{})

	resp, err := http.Get(srv.URL + "/v1/models")
	if err != nil {
		t.Fatalf("GET /v1/models: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	checkCORS(t, resp.Header)

	var list api.ModelList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Object != "list" || len(list.Data) != 1 {
		t.Fatalf("list = %+v", list)
	}
	if list.Data[0].ID != "test-endpoint" {
		t.Errorf("data[0].id = %q, want test-endpoint", list.Data[0].ID)
	}
}

func TestAdapterPreflight(t *testing.T) {
	srv := newTestServer(t, &stubInvoker{})

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/v1/chat/completions", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	checkCORS(t, resp.Header)
	if got := resp.Header.Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
		t.Errorf("Access-Control-Allow-Methods = %q", got)
	}
}

func TestAdapterUnknownRoute(t *testing.T) {
	srv := newTestServer(t, &stubInvoker{})

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/unknown", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	checkCORS(t, resp.Header)

	var envelope api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Type != api.ErrorTypeNotFound {
		t.Errorf("error type = %q, want not_found", envelope.Error.Type)
	}
}

func TestAdapterChatCompletion(t *testing.T) {
	srv := newTestServer(t, &stubInvoker{result: "generated answer"})

	body := `{"messages": [{"role": "user", "content": "two words here"}]}`
	resp, err := http.Post(srv.URL+"/v1/chat/completions", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	checkCORS(t, resp.Header)

	var completion api.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(completion.ID, "chatcmpl-") {
		t.Errorf("ID = %q", completion.ID)
	}
	if completion.Choices[0].Message.Content != "generated answer" {
		t.Errorf("content = %q", completion.Choices[0].Message.Content)
	}
	if completion.Usage.TotalTokens != completion.Usage.PromptTokens+completion.Usage.CompletionTokens {
		t.Errorf("usage does not add up: %+v", completion.Usage)
	}
}

func TestAdapterMalformedJSON(t *testing.T) {
	srv := newTestServer(t, &stubInvoker{})

	resp, err := http.Post(srv.URL+"/v1/chat/completions", "application/json", strings.NewReader(`"not valid json`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	checkCORS(t, resp.Header)

	var envelope api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Type != api.ErrorTypeInvalidRequest {
		t.Errorf("error type = %q, want invalid_request_error", envelope.Error.Type)
	}
}

func TestAdapterBackendFailure(t *testing.T) {
	srv := newTestServer(t, &stubInvoker{err: api.NewServerError("connection reset by endpoint")})

	body := `{"messages": [{"role": "user", "content": "hi"}]}`
	resp, err := http.Post(srv.URL+"/v1/chat/completions", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	checkCORS(t, resp.Header)

	var envelope api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Type != api.ErrorTypeServerError {
		t.Errorf("error type = %q, want server_error", envelope.Error.Type)
	}
	if !strings.Contains(envelope.Error.Message, "connection reset by endpoint") {
		t.Errorf("message lost underlying failure: %q", envelope.Error.Message)
	}
}

func TestAdapterStreamingSSE(t *testing.T) {
	srv := newTestServer(t, &stubInvoker{streamData: []string{
		`{"choices":[{"delta":{"content":"Hel"}}]}`,
		`{"choices":[{"delta":{"content":"lo"}}]}`,
	}})

	body := `{"messages": [{"role": "user", "content": "hi"}], "stream": true}`
	resp, err := http.Post(srv.URL+"/v1/chat/completions", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q, want text/event-stream", ct)
	}
	checkCORS(t, resp.Header)

	var dataLines []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		}
	}

	if len(dataLines) != 3 {
		t.Fatalf("got %d data lines, want 3: %v", len(dataLines), dataLines)
	}
	if dataLines[2] != "[DONE]" {
		t.Errorf("last frame = %q, want [DONE]", dataLines[2])
	}

	var chunk api.ChatCompletionChunk
	if err := json.Unmarshal([]byte(dataLines[0]), &chunk); err != nil {
		t.Fatalf("chunk decode: %v", err)
	}
	if chunk.Choices[0].Delta.Content != "Hel" {
		t.Errorf("first delta = %q", chunk.Choices[0].Delta.Content)
	}
}

func TestAdapterRecoversFromPanic(t *testing.T) {
	panicking := DispatcherFunc(func(ctx context.Context, req *gateway.Request, w gateway.ResponseWriter) error {
		panic("boom")
	})
	adapter := NewAdapter(panicking, []Middleware{Recovery()})
	srv := httptest.NewServer(adapter)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/v1/models")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	var envelope api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Type != api.ErrorTypeServerError {
		t.Errorf("error type = %q, want server_error", envelope.Error.Type)
	}
}
