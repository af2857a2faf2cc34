package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hoainiem-portal/internal/auth"
	"hoainiem-portal/internal/domain"
	"hoainiem-portal/internal/dto"
	"hoainiem-portal/internal/middleware"
	"hoainiem-portal/internal/response"
	"hoainiem-portal/internal/service"
)

// sessionCookieAge bounds the cookie; the gateway expires idle sessions itself
const sessionCookieAge = 24 * time.Hour

type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login godoc
// @Summary      Login
// @Description  Exchanges credentials for a bearer token and stores it under a new portal session. The session id is returned and set as the portal_session cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body domain.LoginRequest true "Credentials"
// @Success      200 {object} response.SuccessResponse{data=dto.LoginResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid input"
// @Failure      401 {object} response.ErrorResponse "Wrong credentials"
// @Failure      502 {object} response.ErrorResponse "Platform error"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	sid := auth.NewSessionID()
	session, err := h.authService.Login(auth.WithSessionID(c.Request.Context(), sid), req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	setSessionCookie(c, sid, int(sessionCookieAge.Seconds()))
	response.SendSuccess(c, http.StatusOK, dto.LoginResponse{
		SessionID:     sid,
		UserID:        session.UserID,
		Authenticated: session.Authenticated(),
	})
}

// Register godoc
// @Summary      Register
// @Description  Creates a platform account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body domain.RegisterForm true "Signup form"
// @Success      201 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid input"
// @Failure      502 {object} response.ErrorResponse "Platform error"
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var form domain.RegisterForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	msg, err := h.authService.Register(c.Request.Context(), form)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, dto.MessageResponse{Message: msg})
}

// ForgotPassword godoc
// @Summary      Forgot password
// @Description  Sends a password reset mail. Resending is locked for 60 seconds after a successful request.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body domain.ForgotPasswordRequest true "Account email"
// @Success      200 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid input"
// @Failure      404 {object} response.ErrorResponse "Unknown email"
// @Failure      429 {object} response.ErrorResponse "Resend locked, details holds the remaining seconds"
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req domain.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	msg, err := h.authService.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, dto.MessageResponse{Message: msg})
}

// Logout godoc
// @Summary      Logout
// @Description  Clears the session of the caller and its cookie
// @Tags         auth
// @Produce      json
// @Success      204 "Logged out"
// @Failure      500 {object} response.ErrorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context()); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	setSessionCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

func setSessionCookie(c *gin.Context, sid string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, sid, maxAge, "/", "", c.Request.TLS != nil, true)
}

// Status godoc
// @Summary      Authentication status
// @Description  Asks the platform whether the stored token is still valid
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=dto.AuthStatusResponse}
// @Failure      502 {object} response.ErrorResponse "Platform error"
// @Router       /auth/status [get]
func (h *AuthHandler) Status(c *gin.Context) {
	ok, err := h.authService.CheckStatus(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	resp := dto.AuthStatusResponse{Authenticated: ok}
	if ok {
		session, err := h.authService.CurrentSession(c.Request.Context())
		if err != nil {
			handleServiceError(c, h.logger, err)
			return
		}
		resp.UserID = session.UserID
		if session.ExpiresAt != nil {
			resp.ExpiresAt = session.ExpiresAt.UTC().Format(time.RFC3339)
		}
	}

	response.SendSuccess(c, http.StatusOK, resp)
}
