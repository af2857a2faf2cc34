package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"hoainiem-portal/internal/auth"
	"hoainiem-portal/internal/client"
	"hoainiem-portal/internal/domain"
	"hoainiem-portal/internal/metrics"
	"hoainiem-portal/internal/repository"
	"hoainiem-portal/internal/validation"
)

const (
	// ForgotPasswordCooldown is the wait between two forgot-password requests
	ForgotPasswordCooldown = 60 * time.Second

	keyForgotPasswordSentAt = "forgot_password_sent_at"
)

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Login(ctx context.Context, req domain.LoginRequest) (domain.Session, error)
	Register(ctx context.Context, form domain.RegisterForm) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	// CheckStatus asks the platform whether the stored token is still valid.
	// It reports false without a network call when no token is stored.
	CheckStatus(ctx context.Context) (bool, error)
	Logout(ctx context.Context) error
	CurrentSession(ctx context.Context) (domain.Session, error)
}

type authServiceImpl struct {
	api       client.AuthClient
	tokens    auth.TokenStore
	kv        repository.KeyValueStore
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService creates a new AuthService. kv keeps the forgot-password
// cooldown so it survives restarts of a persistent store.
func NewAuthService(api client.AuthClient, tokens auth.TokenStore, kv repository.KeyValueStore, v *validation.Validator, m *metrics.Metrics, logger *zap.Logger) AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &authServiceImpl{
		api:       api,
		tokens:    tokens,
		kv:        kv,
		validator: v,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *authServiceImpl) Login(ctx context.Context, req domain.LoginRequest) (domain.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return domain.Session{}, err
	}

	session, err := s.login(ctx, req)
	s.metrics.RecordLogin(err)
	if err != nil {
		s.logger.Warn("Login failed", zap.String("email", req.Email), zap.Error(err))
		return domain.Session{}, err
	}
	s.logger.Info("User logged in", zap.String("user_id", session.UserID))
	return session, nil
}

func (s *authServiceImpl) login(ctx context.Context, req domain.LoginRequest) (domain.Session, error) {
	res, err := s.api.Login(ctx, req)
	if err != nil {
		return domain.Session{}, err
	}
	if res.AccessToken == "" {
		return domain.Session{}, fmt.Errorf("login response carries no access token")
	}
	if err := s.tokens.Set(ctx, res.AccessToken, string(res.UserID)); err != nil {
		return domain.Session{}, err
	}
	return s.tokens.Get(ctx)
}

func (s *authServiceImpl) Register(ctx context.Context, form domain.RegisterForm) (string, error) {
	if err := s.validator.Struct(form); err != nil {
		return "", err
	}
	msg, err := s.api.Register(ctx, form)
	if err != nil {
		s.logger.Warn("Registration failed", zap.String("email", form.Email), zap.Error(err))
		return "", err
	}
	return msg, nil
}

func (s *authServiceImpl) ForgotPassword(ctx context.Context, email string) (string, error) {
	if err := s.validator.Struct(domain.ForgotPasswordRequest{Email: email}); err != nil {
		return "", err
	}
	if remaining, err := s.cooldownRemaining(ctx); err != nil {
		return "", err
	} else if remaining > 0 {
		return "", &CooldownError{Remaining: remaining}
	}

	msg, err := s.api.ForgotPassword(ctx, email)
	if err != nil {
		return "", err
	}

	sentAt := strconv.FormatInt(s.now().Unix(), 10)
	if err := s.kv.Set(ctx, keyForgotPasswordSentAt, sentAt); err != nil {
		s.logger.Warn("Failed to store forgot-password cooldown", zap.Error(err))
	}
	return msg, nil
}

func (s *authServiceImpl) cooldownRemaining(ctx context.Context) (time.Duration, error) {
	raw, ok, err := s.kv.Get(ctx, keyForgotPasswordSentAt)
	if err != nil {
		return 0, fmt.Errorf("read forgot-password cooldown: %w", err)
	}
	if !ok {
		return 0, nil
	}
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, nil
	}
	remaining := time.Unix(sec, 0).Add(ForgotPasswordCooldown).Sub(s.now())
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

func (s *authServiceImpl) CheckStatus(ctx context.Context) (bool, error) {
	session, err := s.tokens.Get(ctx)
	if err != nil {
		return false, err
	}
	if !session.Authenticated() {
		return false, nil
	}
	ok, err := s.api.Details(ctx, session.Token)
	if err != nil {
		s.logger.Debug("Auth status check failed", zap.Error(err))
		return false, err
	}
	return ok, nil
}

func (s *authServiceImpl) Logout(ctx context.Context) error {
	return s.tokens.Clear(ctx)
}

func (s *authServiceImpl) CurrentSession(ctx context.Context) (domain.Session, error) {
	return s.tokens.Get(ctx)
}
