// Package response defines the JSON envelope returned by the portal API.
package response

import (
	"github.com/gin-gonic/gin"
)

// Error codes
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeAlreadyExists   = "ALREADY_EXISTS"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeUpstream        = "UPSTREAM_ERROR"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// SuccessResponse wraps a successful payload
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"requestId,omitempty"`
}

// ErrorResponse wraps an error payload
type ErrorResponse struct {
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"requestId,omitempty"`
}

// ErrorBody is the error object of ErrorResponse
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// SendSuccess writes a success envelope
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{
		Data:      data,
		RequestID: c.GetString("requestId"),
	})
}

// SendError writes an error envelope
func SendError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{
		Error:     ErrorBody{Code: code, Message: message},
		RequestID: c.GetString("requestId"),
	})
}

// SendValidationError writes a 400 envelope carrying per-field messages
func SendValidationError(c *gin.Context, status int, message string, fields map[string]string) {
	c.JSON(status, ErrorResponse{
		Error:     ErrorBody{Code: ErrCodeValidation, Message: message, Fields: fields},
		RequestID: c.GetString("requestId"),
	})
}
