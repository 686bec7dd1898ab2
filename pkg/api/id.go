package api

import "github.com/google/uuid"

const (
	chatCompletionIDPrefix = "chatcmpl-"
	textCompletionIDPrefix = "cmpl-"
)

// ChatCompletionID builds a chat completion ID from the per-invocation
// request ID. An empty request ID (local or test invocation) falls back to
// a generated UUID.
func ChatCompletionID(requestID string) string {
	return chatCompletionIDPrefix + orNewRequestID(requestID)
}

// TextCompletionID builds a legacy completion ID from the per-invocation
// request ID, with the same UUID fallback as ChatCompletionID.
func TextCompletionID(requestID string) string {
	return textCompletionIDPrefix + orNewRequestID(requestID)
}

// NewRequestID generates a fresh unique request identifier.
func NewRequestID() string {
	return uuid.NewString()
}

func orNewRequestID(requestID string) string {
	if requestID == "" {
		return NewRequestID()
	}
	return requestID
}
