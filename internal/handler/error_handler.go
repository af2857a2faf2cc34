package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hoainiem-portal/internal/client"
	"hoainiem-portal/internal/domain"
	"hoainiem-portal/internal/response"
	"hoainiem-portal/internal/service"
	"hoainiem-portal/internal/validation"
)

// handleServiceError maps service layer errors to appropriate HTTP responses
func handleServiceError(c *gin.Context, logger *zap.Logger, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if verrs, ok := validation.AsErrors(err); ok {
		response.SendValidationError(c, http.StatusBadRequest, "Invalid input", verrs.Fields)
		return
	}

	var cooldown *service.CooldownError
	if errors.As(err, &cooldown) {
		c.Header("Retry-After", strconv.Itoa(cooldown.Seconds()))
		c.JSON(http.StatusTooManyRequests, response.ErrorResponse{
			Error: response.ErrorBody{
				Code:    response.ErrCodeTooManyRequests,
				Message: fmt.Sprintf("Please wait %d seconds before resending", cooldown.Seconds()),
				Details: strconv.Itoa(cooldown.Seconds()),
			},
			RequestID: c.GetString("requestId"),
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Login required")
		return
	case errors.Is(err, service.ErrThreadNotLoaded):
		response.SendError(c, http.StatusConflict, response.ErrCodeConflict, "Comment thread is not loaded")
		return
	case errors.Is(err, service.ErrFeedBusy):
		response.SendError(c, http.StatusConflict, response.ErrCodeConflict, "Feed is loading")
		return
	case errors.Is(err, service.ErrFeedExhausted):
		response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "No more articles")
		return
	case errors.Is(err, service.ErrFeedNotFound):
		response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "Feed not found")
		return
	case errors.Is(err, service.ErrArticleNotFound):
		response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "Article not found")
		return
	case errors.Is(err, domain.ErrCommentNotFound):
		response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "Comment not found")
		return
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		logger.Warn("Platform API error",
			zap.Int("status", apiErr.StatusCode),
			zap.String("message", apiErr.Message),
			zap.String("path", c.FullPath()))
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, apiErr.UserMessage())
		case http.StatusNotFound:
			response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, apiErr.UserMessage())
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, apiErr.UserMessage())
		default:
			response.SendError(c, http.StatusBadGateway, response.ErrCodeUpstream, "Something went wrong")
		}
		return
	}

	var appErr *response.AppError
	if errors.As(err, &appErr) {
		logger.Warn("Application error",
			zap.String("code", appErr.Code),
			zap.String("message", appErr.Message),
			zap.String("details", appErr.Details))
		response.SendError(c, mapErrorCodeToHTTPStatus(appErr.Code), appErr.Code, appErr.Message)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		logger.Error("Platform request timed out", zap.Error(err))
		response.SendError(c, http.StatusGatewayTimeout, response.ErrCodeUpstream, "Platform did not respond")
		return
	}

	logger.Error("Unhandled service error", zap.String("type", fmt.Sprintf("%T", err)), zap.Error(err))
	response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Internal server error")
}

// mapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func mapErrorCodeToHTTPStatus(code string) int {
	switch code {
	case response.ErrCodeNotFound:
		return http.StatusNotFound
	case response.ErrCodeAlreadyExists, response.ErrCodeConflict:
		return http.StatusConflict
	case response.ErrCodeValidation:
		return http.StatusBadRequest
	case response.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case response.ErrCodeForbidden:
		return http.StatusForbidden
	case response.ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	case response.ErrCodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
