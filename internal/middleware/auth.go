package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hoainiem-portal/internal/auth"
	"hoainiem-portal/internal/domain"
	"hoainiem-portal/internal/response"
)

const (
	// SessionKey is the gin context key of the stored session
	SessionKey = "session"

	// SessionCookie carries the session id for clients that cannot set headers,
	// such as a browser opening the thread stream
	SessionCookie = "portal_session"
)

// SessionScope puts the caller's session id on the request context. The id is
// read from "Authorization: Bearer <id>", then from the session cookie.
// Requests without one stay anonymous.
func SessionScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := RequestSessionID(c); id != "" {
			c.Request = c.Request.WithContext(auth.WithSessionID(c.Request.Context(), id))
		}
		c.Next()
	}
}

// RequestSessionID returns the session id sent by the caller, or ""
func RequestSessionID(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// RequireSession rejects requests whose session holds no bearer token. With
// needUserID the stored user id is required as well.
func RequireSession(tokens auth.TokenStore, needUserID bool, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := tokens.Get(c.Request.Context())
		if err != nil {
			logger.Error("Failed to read stored session", zap.Error(err))
			response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Failed to read session")
			c.Abort()
			return
		}

		if !session.Authenticated() || (needUserID && session.UserID == "") {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Login required")
			c.Abort()
			return
		}

		c.Set(SessionKey, session)
		c.Next()
	}
}

// GetSession returns the session stored by RequireSession
func GetSession(c *gin.Context) (domain.Session, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return domain.Session{}, false
	}
	session, ok := v.(domain.Session)
	return session, ok
}
