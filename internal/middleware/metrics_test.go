package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/quick"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"

	"hoainiem-portal/internal/metrics"
)

func newTestMetrics() *metrics.Metrics {
	return metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
}

func setupTestRouter(m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Metrics(m))
	return router
}

func requestCount(t *testing.T, m *metrics.Metrics, method, endpoint string, status int) float64 {
	t.Helper()
	var metric dto.Metric
	counter, err := m.HTTPRequestsTotal.GetMetricWithLabelValues(method, endpoint, categorize(status))
	if err != nil {
		t.Fatalf("Failed to get counter: %v", err)
	}
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to read counter: %v", err)
	}
	return metric.GetCounter().GetValue()
}

func categorize(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// For any status code, each request through the middleware adds one to the
// counter of its route pattern
func TestProperty_HTTPRequestMetricsIncrement(t *testing.T) {
	m := newTestMetrics()
	router := setupTestRouter(m)

	var current int
	router.GET("/api/portal/threads/:postId", func(c *gin.Context) {
		c.Status(current)
	})

	property := func(statusCode uint16) bool {
		if statusCode < 200 || statusCode >= 600 {
			return true
		}
		current = int(statusCode)

		before := requestCount(t, m, "GET", "/api/portal/threads/:postId", current)

		req := httptest.NewRequest("GET", "/api/portal/threads/42", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != current {
			t.Logf("Request failed: expected %d, got %d", current, w.Code)
			return false
		}

		return requestCount(t, m, "GET", "/api/portal/threads/:postId", current) == before+1
	}

	if err := quick.Check(property, &quick.Config{MaxCount: 100}); err != nil {
		t.Errorf("Property test failed: %v", err)
	}
}

func TestMetricsMiddleware_ExcludedEndpoints(t *testing.T) {
	m := newTestMetrics()
	router := setupTestRouter(m)

	for _, path := range []string{"/metrics", "/health", "/api/portal/health"} {
		router.GET(path, func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
	}

	for _, path := range []string{"/metrics", "/health", "/api/portal/health"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest("GET", path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("Expected status 200, got %d", w.Code)
			}
			if got := requestCount(t, m, "GET", path, http.StatusOK); got != 0 {
				t.Errorf("Expected %s to be skipped, counted %v", path, got)
			}
		})
	}
}

func TestMetricsMiddleware_NilMetrics(t *testing.T) {
	router := setupTestRouter(nil)
	router.GET("/api/portal/posts/latest", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/portal/posts/latest", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}
