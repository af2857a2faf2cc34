package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hoainiem-portal/internal/auth"
	"hoainiem-portal/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"http://localhost:3000"}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{"allowed origin", http.MethodGet, "http://localhost:3000", http.StatusOK, "http://localhost:3000"},
		{"unknown origin", http.MethodGet, "http://evil.test", http.StatusOK, ""},
		{"preflight", http.MethodOptions, "http://localhost:3000", http.StatusNoContent, "http://localhost:3000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/x", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantAllow, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), Recovery(zap.NewNop()))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body["error"].(map[string]interface{})["code"])
	assert.Equal(t, "req-1", body["requestId"])
}

func TestRequestID_GeneratedWhenMissing(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), Logger(zap.NewNop()))
	var seen string
	router.GET("/x", func(c *gin.Context) {
		seen = c.GetString(RequestIDKey)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
}

func TestRequireSession(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		userID     string
		needUserID bool
		wantStatus int
	}{
		{"no token", "", "", false, http.StatusUnauthorized},
		{"token", "tok", "", false, http.StatusOK},
		{"token without user id", "tok", "", true, http.StatusUnauthorized},
		{"token and user id", "tok", "7", true, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := auth.NewTokenStore(repository.NewMemoryKeyValueStore(), nil)
			if tt.token != "" {
				require.NoError(t, tokens.Set(context.Background(), tt.token, tt.userID))
			}

			router := gin.New()
			router.Use(RequireSession(tokens, tt.needUserID, zap.NewNop()))
			router.GET("/x", func(c *gin.Context) {
				session, ok := GetSession(c)
				assert.True(t, ok)
				assert.Equal(t, tt.token, session.Token)
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRequireSession_PerCallerSessions(t *testing.T) {
	tokens := auth.NewScopedTokenStore(repository.NewMemoryKeyValueStore(), nil)
	require.NoError(t, tokens.Set(auth.WithSessionID(context.Background(), "sess-a"), "tok-a", "1"))
	require.NoError(t, tokens.Set(auth.WithSessionID(context.Background(), "sess-b"), "tok-b", "2"))

	router := gin.New()
	router.Use(SessionScope())
	router.Use(RequireSession(tokens, true, zap.NewNop()))
	router.GET("/x", func(c *gin.Context) {
		session, _ := GetSession(c)
		c.String(http.StatusOK, session.Token)
	})

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantToken  string
	}{
		{name: "anonymous", wantStatus: http.StatusUnauthorized},
		{name: "first caller", header: "Bearer sess-a", wantStatus: http.StatusOK, wantToken: "tok-a"},
		{name: "second caller", header: "Bearer sess-b", wantStatus: http.StatusOK, wantToken: "tok-b"},
		{name: "cookie", cookie: "sess-b", wantStatus: http.StatusOK, wantToken: "tok-b"},
		{name: "unknown session", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "malformed header", header: "sess-a", cookie: "sess-a", wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantToken != "" {
				assert.Equal(t, tt.wantToken, w.Body.String())
			}
		})
	}
}
