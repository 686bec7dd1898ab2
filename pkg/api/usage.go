package api

import "strings"

// Usage holds approximate token counts for a completion. Counts are
// computed by whitespace-splitting text, not by a real tokenizer.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CountTokens approximates the token count of text by splitting on
// whitespace.
func CountTokens(text string) int {
	return len(strings.Fields(text))
}

// UsageFor computes the usage block for a prompt and its generated text.
// TotalTokens is always the sum of the two counts.
func UsageFor(prompt, completion string) Usage {
	p := CountTokens(prompt)
	c := CountTokens(completion)
	return Usage{
		PromptTokens:     p,
		CompletionTokens: c,
		TotalTokens:      p + c,
	}
}
