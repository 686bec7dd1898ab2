package gateway

import (
	"strings"
	"time"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/api"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/backend"
)

// flattenMessages joins a conversation into the single prompt the backend
// understands. Role labels are preserved ("System: ...", "Assistant: ...",
// bare content for user messages) since the backend has no concept of
// roles and the labels approximate the original chat conditioning.
func flattenMessages(msgs []api.ChatMessage) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case api.RoleSystem:
			parts = append(parts, "System: "+m.Content)
		case api.RoleAssistant:
			parts = append(parts, "Assistant: "+m.Content)
		default:
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n")
}

// promptFor selects the backend input: a non-empty messages array is
// flattened; otherwise the legacy prompt field is the entire input.
func promptFor(req *api.CompletionRequest) string {
	if len(req.Messages) > 0 {
		return flattenMessages(req.Messages)
	}
	return req.Prompt
}

// buildPayload maps the client request onto the backend's generation
// parameters. Sampling is always enabled; there is no greedy-decoding
// path.
func buildPayload(inputs string, req *api.CompletionRequest) backend.Payload {
	p := backend.Payload{
		Inputs: inputs,
		Parameters: backend.Parameters{
			MaxNewTokens: backend.DefaultMaxNewTokens,
			Temperature:  backend.DefaultTemperature,
			DoSample:     true,
		},
	}
	if req.MaxTokens != nil {
		p.Parameters.MaxNewTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		p.Parameters.Temperature = *req.Temperature
	}
	return p
}

// chatResponse reconstructs the chat completion shape from the generated
// text and the flattened prompt it was conditioned on.
func chatResponse(requestID, model, prompt, generated string) *api.ChatCompletionResponse {
	return &api.ChatCompletionResponse{
		ID:      api.ChatCompletionID(requestID),
		Object:  api.ObjectChatCompletion,
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []api.ChatChoice{
			{
				Index: 0,
				Message: api.ChatMessage{
					Role:    api.RoleAssistant,
					Content: generated,
				},
				FinishReason: api.FinishReasonStop,
			},
		},
		Usage: api.UsageFor(prompt, generated),
	}
}

// textResponse reconstructs the legacy text completion shape.
func textResponse(requestID, model, prompt, generated string) *api.TextCompletionResponse {
	return &api.TextCompletionResponse{
		ID:      api.TextCompletionID(requestID),
		Object:  api.ObjectTextCompletion,
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []api.TextChoice{
			{
				Index:        0,
				Text:         generated,
				FinishReason: api.FinishReasonStop,
			},
		},
		Usage: api.UsageFor(prompt, generated),
	}
}
