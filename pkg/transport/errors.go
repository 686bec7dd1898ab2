package transport

import (
	"errors"
	"net/http"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/api"
)

// HTTPStatusFromError maps an APIError type to its HTTP status code.
func HTTPStatusFromError(err *api.APIError) int {
	switch err.Type {
	case api.ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case api.ErrorTypeNotFound:
		return http.StatusNotFound
	case api.ErrorTypeModelError, api.ErrorTypeServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// asAPIError coerces any dispatch error into an APIError. Unknown error
// values become a server_error carrying their text; nothing beyond the
// message ever leaks to the client.
func asAPIError(err error) *api.APIError {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return api.NewServerError(err.Error())
}
