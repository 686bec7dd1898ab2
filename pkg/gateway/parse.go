package gateway

import (
	"bytes"
	"encoding/base64"
	"encoding/json"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/api"
)

// parseRequest decodes the raw inbound body into a CompletionRequest.
// A base64-flagged body is decoded first. An empty or absent body parses
// to an empty request, not an error. Malformed input yields an
// invalid_request_error embedding the underlying parse failure.
func parseRequest(body []byte, isBase64 bool) (*api.CompletionRequest, *api.APIError) {
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(body)))
		if err != nil {
			return nil, api.NewInvalidRequestError("Invalid JSON: " + err.Error())
		}
		body = decoded
	}

	var req api.CompletionRequest
	if len(bytes.TrimSpace(body)) == 0 {
		return &req, nil
	}

	if err := json.Unmarshal(body, &req); err != nil {
		return nil, api.NewInvalidRequestError("Invalid JSON: " + err.Error())
	}
	return &req, nil
}
