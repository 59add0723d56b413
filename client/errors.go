package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api error %d: %s: %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Unauthorized reports whether the session token was rejected.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// decodeError reads the {message, details} envelope, falling back to the raw body.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var envelope struct {
		Message string `json:"message"`
		Details string `json:"details"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && (envelope.Message != "" || envelope.Error != "") {
		apiErr.Message = envelope.Message
		if apiErr.Message == "" {
			apiErr.Message = envelope.Error
		}
		apiErr.Details = envelope.Details
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
