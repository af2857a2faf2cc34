package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"hoainiem-portal/internal/metrics"
)

// Request describes one call to the platform API
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is sent as JSON unless Form is set
	Body interface{}
	Form *MultipartForm
	// Token is sent as a bearer token when non-empty
	Token string
	// CSRF attaches X-CSRF-TOKEN from the token provider
	CSRF bool
}

// APIClient performs requests against the platform REST API. Cookies set by
// the platform (the CSRF session cookie) are kept in a jar and sent back.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	csrf       *CSRFTokenProvider
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewAPIClient creates a client for baseURL. A zero timeout means requests
// never time out.
func NewAPIClient(baseURL string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) (*APIClient, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		logger:  logger,
		metrics: m,
	}
	c.csrf = newCSRFTokenProvider(c)
	return c, nil
}

// CSRF returns the client's CSRF token provider
func (c *APIClient) CSRF() *CSRFTokenProvider {
	return c.csrf
}

// Do sends req and decodes a successful JSON response into out (when non-nil).
// Non-2xx responses are returned as *APIError.
func (c *APIClient) Do(ctx context.Context, req Request, out interface{}) error {
	var csrfToken string
	if req.CSRF {
		token, err := c.csrf.Token(ctx)
		if err != nil {
			return err
		}
		csrfToken = token
	}

	status, body, err := c.send(ctx, req, csrfToken)
	if err != nil {
		return err
	}

	if status < 200 || status >= 300 {
		if req.CSRF && (status == 419 || status == http.StatusForbidden) {
			c.csrf.Reset()
		}
		return newAPIError(status, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response of %s %s: %w", req.Method, req.Path, err)
	}
	return nil
}

func (c *APIClient) send(ctx context.Context, req Request, csrfToken string) (int, []byte, error) {
	endpoint := c.baseURL + req.Path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Form != nil:
		buf, ct, err := req.Form.encode()
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode form: %w", err)
		}
		body, contentType = buf, ct
	case req.Body != nil:
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body, contentType = bytes.NewReader(payload), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.New().String()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	httpReq.Header.Set("X-Requested-With", "XMLHttpRequest")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if csrfToken != "" {
		httpReq.Header.Set("X-CSRF-TOKEN", csrfToken)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	duration := time.Since(startTime)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	c.metrics.RecordExternalAPICall(endpoint, req.Method, statusCode, duration, err)

	if err != nil {
		c.logger.Error("Platform API request failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.String("request_id", requestID),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return 0, nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status_code", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("duration", duration),
	}
	switch {
	case resp.StatusCode >= 500:
		c.logger.Error("Platform API returned server error", fields...)
	case resp.StatusCode >= 400:
		c.logger.Warn("Platform API returned client error", fields...)
	default:
		c.logger.Debug("Platform API request completed", fields...)
	}

	return resp.StatusCode, respBody, nil
}
