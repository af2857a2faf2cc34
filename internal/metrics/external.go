package metrics

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	uuidPattern    = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	numericSegment = regexp.MustCompile(`/\d+(/|$)`)
)

// RecordExternalAPICall records platform API call metrics
func (m *Metrics) RecordExternalAPICall(endpoint, method string, statusCode int, duration time.Duration, err error) {
	m.safeExecute("RecordExternalAPICall", func() {
		endpoint = normalizeEndpoint(endpoint)
		status := strconv.Itoa(statusCode)

		m.ExternalAPIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
		m.ExternalAPIRequestDuration.WithLabelValues(endpoint, status).Observe(duration.Seconds())

		if err != nil || statusCode >= 400 {
			m.ExternalAPIErrors.WithLabelValues(endpoint, getErrorType(statusCode, err)).Inc()
		}
	})
}

// normalizeEndpoint strips scheme, host and query, and replaces ids with a template.
// Example: http://api/posts/42/comments?x=1 -> /posts/{id}/comments
func normalizeEndpoint(endpoint string) string {
	if u, err := url.Parse(endpoint); err == nil && u.Path != "" {
		endpoint = u.Path
	}
	endpoint = uuidPattern.ReplaceAllString(endpoint, "{id}")
	for numericSegment.MatchString(endpoint) {
		endpoint = numericSegment.ReplaceAllString(endpoint, "/{id}$1")
	}
	return endpoint
}

// getErrorType categorizes error types based on status code and error
func getErrorType(statusCode int, err error) string {
	switch {
	case statusCode == 400:
		return "bad_request"
	case statusCode == 401:
		return "unauthorized"
	case statusCode == 403:
		return "forbidden"
	case statusCode == 404:
		return "not_found"
	case statusCode == 408:
		return "request_timeout"
	case statusCode == 419:
		return "csrf_mismatch"
	case statusCode == 422:
		return "unprocessable"
	case statusCode == 429:
		return "too_many_requests"
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	case statusCode == 500:
		return "internal_server_error"
	case statusCode == 502:
		return "bad_gateway"
	case statusCode == 503:
		return "service_unavailable"
	case statusCode == 504:
		return "gateway_timeout"
	case statusCode >= 500 && statusCode < 600:
		return "server_error"
	}

	if err != nil {
		errMsg := err.Error()
		switch {
		case strings.Contains(errMsg, "connection refused"):
			return "connection_refused"
		case strings.Contains(errMsg, "no such host"):
			return "dns_error"
		case strings.Contains(errMsg, "timeout"), strings.Contains(errMsg, "deadline exceeded"):
			return "timeout"
		case strings.Contains(errMsg, "EOF"), strings.Contains(errMsg, "connection reset"):
			return "connection_reset"
		case strings.Contains(errMsg, "TLS"), strings.Contains(errMsg, "certificate"):
			return "tls_error"
		case strings.Contains(errMsg, "context canceled"):
			return "canceled"
		}
		return "network_error"
	}

	return "unknown"
}
