package api

import (
	"encoding/json"
	"testing"
)

func TestAPIErrorTypes(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		wantType ErrorType
	}{
		{"invalid request", NewInvalidRequestError("bad JSON"), ErrorTypeInvalidRequest},
		{"model error", NewModelError("generation failed"), ErrorTypeModelError},
		{"server error", NewServerError("backend unreachable"), ErrorTypeServerError},
		{"not found", NewNotFoundError("no such route"), ErrorTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", tt.err.Type, tt.wantType)
			}
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := NewServerError("something broke")
	want := "server_error: something broke"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorResponseEnvelope(t *testing.T) {
	data, err := json.Marshal(ErrorResponse{Error: NewInvalidRequestError("Invalid JSON: unexpected end")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Error.Type != "invalid_request_error" {
		t.Errorf("type = %q, want invalid_request_error", decoded.Error.Type)
	}
	if decoded.Error.Message != "Invalid JSON: unexpected end" {
		t.Errorf("message = %q", decoded.Error.Message)
	}
}
