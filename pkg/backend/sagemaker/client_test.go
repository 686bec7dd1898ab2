package sagemaker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime/types"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/api"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/backend"
)

func TestInvokeWithoutEndpointName(t *testing.T) {
	c := New(Config{Region: "eu-north-1"})

	_, err := c.Invoke(context.Background(), backend.Payload{Inputs: "hi"})
	if err == nil {
		t.Fatal("expected error for missing endpoint name")
	}

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is not an APIError: %v", err)
	}
	if apiErr.Type != api.ErrorTypeServerError {
		t.Errorf("Type = %q, want server_error", apiErr.Type)
	}
	if !strings.Contains(apiErr.Message, "not configured") {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestMapInvokeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType api.ErrorType
	}{
		{
			"model error",
			&types.ModelError{Message: aws.String("container returned 500")},
			api.ErrorTypeModelError,
		},
		{
			"model stream error",
			&types.ModelStreamError{Message: aws.String("stream aborted")},
			api.ErrorTypeModelError,
		},
		{
			"validation error",
			&types.ValidationError{Message: aws.String("bad parameters")},
			api.ErrorTypeInvalidRequest,
		},
		{
			"network failure",
			errors.New("dial tcp: connection refused"),
			api.ErrorTypeServerError,
		},
		{
			"api error passthrough",
			api.NewServerError("already mapped"),
			api.ErrorTypeServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapInvokeError(tt.err)
			if got.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", got.Type, tt.wantType)
			}
			if got.Message == "" {
				t.Error("mapped error has empty message")
			}
		})
	}
}

func TestMapInvokeErrorKeepsUnderlyingText(t *testing.T) {
	got := mapInvokeError(errors.New("dial tcp 10.0.0.1:443: i/o timeout"))
	if !strings.Contains(got.Message, "i/o timeout") {
		t.Errorf("message lost underlying failure text: %q", got.Message)
	}
}

func TestDecodeResult(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"object form", `{"generated_text":"hello world"}`, "hello world", false},
		{"array form", `[{"generated_text":"hi"}]`, "hi", false},
		{"empty object", `{}`, "", false},
		{"garbage", `not json`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := decodeResult([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeResult: %v", err)
			}
			if res.GeneratedText != tt.want {
				t.Errorf("GeneratedText = %q, want %q", res.GeneratedText, tt.want)
			}
		})
	}
}
