package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the platform
type APIError struct {
	StatusCode int
	Message    string
	// Data is the raw "data" member of the error body, if any
	Data json.RawMessage
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("platform API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("platform API error: status %d: %s", e.StatusCode, e.Message)
}

// UserMessage returns the message meant for the end user: the "data" member
// when it is a string, else the "message" member.
func (e *APIError) UserMessage() string {
	var s string
	if len(e.Data) > 0 && json.Unmarshal(e.Data, &s) == nil && s != "" {
		return s
	}
	return e.Message
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var envelope struct {
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		apiErr.Message = envelope.Message
		if len(envelope.Data) > 0 && string(envelope.Data) != "null" {
			apiErr.Data = envelope.Data
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// StatusCode returns the platform status of err, or 0 when err is not an *APIError
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
