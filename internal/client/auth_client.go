package client

import (
	"context"
	"net/http"

	"hoainiem-portal/internal/domain"
)

// LoginResult is the body of a successful login
type LoginResult struct {
	AccessToken string     `json:"access_token"`
	UserID      FlexibleID `json:"user_id"`
	Message     string     `json:"message"`
}

// AuthClient calls the CSRF protected authentication endpoints
type AuthClient interface {
	Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error)
	Register(ctx context.Context, form domain.RegisterForm) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	// Details reports the platform's view of token: true when it answers
	// {"authenticated": true}
	Details(ctx context.Context, token string) (bool, error)
}

type authClient struct {
	api *APIClient
}

// NewAuthClient creates an AuthClient
func NewAuthClient(api *APIClient) AuthClient {
	return &authClient{api: api}
}

func (c *authClient) Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	var out LoginResult
	if err := c.api.Do(ctx, Request{Method: http.MethodPost, Path: "/login", Body: req, CSRF: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *authClient) Register(ctx context.Context, form domain.RegisterForm) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.api.Do(ctx, Request{Method: http.MethodPost, Path: "/register", Body: form, CSRF: true}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *authClient) ForgotPassword(ctx context.Context, email string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	body := domain.ForgotPasswordRequest{Email: email}
	if err := c.api.Do(ctx, Request{Method: http.MethodPost, Path: "/forgot-password", Body: body, CSRF: true}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *authClient) Details(ctx context.Context, token string) (bool, error) {
	var out struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := c.api.Do(ctx, Request{Method: http.MethodGet, Path: "/details", Token: token}, &out); err != nil {
		return false, err
	}
	return out.Authenticated, nil
}
