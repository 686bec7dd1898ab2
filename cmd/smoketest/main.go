// Command smoketest exercises a running gateway the way a client would:
// list models, send a chat completion, send a legacy completion, and
// optionally consume the SSE stream.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/api"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/backend/eventstream"
)

var (
	baseURL     string
	stream      bool
	maxTokens   int
	temperature float64
	systemMsg   string
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "smoketest",
		Short: "Exercise a running gateway end to end",
	}
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", envOr("GATEWAY_URL", "http://localhost:8080"), "gateway base URL")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List the models the gateway serves",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := get("/v1/models")
			if err != nil {
				return err
			}
			var list api.ModelList
			if err := json.Unmarshal(body, &list); err != nil {
				return fmt.Errorf("decoding model list: %w", err)
			}
			for _, m := range list.Data {
				fmt.Println(m.ID)
			}
			return nil
		},
	}

	chatCmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send a chat completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.CompletionRequest{Stream: stream}
			if systemMsg != "" {
				req.Messages = append(req.Messages, api.ChatMessage{Role: "system", Content: systemMsg})
			}
			req.Messages = append(req.Messages, api.ChatMessage{Role: "user", Content: args[0]})
			applyParams(&req)

			if stream {
				return streamCompletion("/v1/chat/completions", req)
			}
			body, err := post("/v1/chat/completions", req)
			if err != nil {
				return err
			}
			var resp api.ChatCompletionResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("decoding completion: %w", err)
			}
			fmt.Println(resp.Choices[0].Message.Content)
			printUsage(resp.Usage)
			return nil
		},
	}

	completionCmd := &cobra.Command{
		Use:   "completion [prompt]",
		Short: "Send a legacy text completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.CompletionRequest{Prompt: args[0], Stream: stream}
			applyParams(&req)

			if stream {
				return streamCompletion("/v1/completions", req)
			}
			body, err := post("/v1/completions", req)
			if err != nil {
				return err
			}
			var resp api.TextCompletionResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("decoding completion: %w", err)
			}
			fmt.Println(resp.Choices[0].Text)
			printUsage(resp.Usage)
			return nil
		},
	}

	for _, c := range []*cobra.Command{chatCmd, completionCmd} {
		c.Flags().BoolVar(&stream, "stream", false, "consume the SSE stream")
		c.Flags().IntVar(&maxTokens, "max-tokens", 0, "max_tokens to request (0 = server default)")
		c.Flags().Float64Var(&temperature, "temperature", 0, "temperature to request (0 = server default)")
	}
	chatCmd.Flags().StringVar(&systemMsg, "system", "", "system message to prepend")

	rootCmd.AddCommand(modelsCmd, chatCmd, completionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func applyParams(req *api.CompletionRequest) {
	if maxTokens > 0 {
		req.MaxTokens = &maxTokens
	}
	if temperature > 0 {
		req.Temperature = &temperature
	}
}

func get(path string) ([]byte, error) {
	resp, err := http.Get(strings.TrimRight(baseURL, "/") + path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return readResponse(resp)
}

func post(path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(strings.TrimRight(baseURL, "/")+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return readResponse(resp)
}

func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var envelope api.ErrorResponse
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
			return nil, fmt.Errorf("%s (%s)", envelope.Error.Message, envelope.Error.Type)
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}

// streamCompletion posts a stream-requested completion and prints delta
// content as it arrives.
func streamCompletion(path string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(baseURL, "/")+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	dec := eventstream.NewDecoder()
	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, ev := range dec.Decode(buf[:n]) {
				printDelta(ev)
			}
		}
		if readErr == io.EOF {
			for _, ev := range dec.Flush() {
				printDelta(ev)
			}
			break
		}
		if readErr != nil {
			return readErr
		}
	}
	fmt.Println()
	return nil
}

func printDelta(raw json.RawMessage) {
	var chunk api.ChatCompletionChunk
	if err := json.Unmarshal(raw, &chunk); err == nil && len(chunk.Choices) > 0 {
		fmt.Print(chunk.Choices[0].Delta.Content)
		return
	}
	// Not a chat chunk; print the raw event so nothing is silently lost.
	fmt.Println(string(raw))
}

func printUsage(u api.Usage) {
	fmt.Fprintf(os.Stderr, "[tokens: prompt=%d completion=%d total=%d]\n",
		u.PromptTokens, u.CompletionTokens, u.TotalTokens)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
