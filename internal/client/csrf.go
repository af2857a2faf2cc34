package client

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrNoCSRFToken is returned when /csrf-token answers without a token
var ErrNoCSRFToken = errors.New("platform returned no csrf token")

// CSRFTokenProvider fetches the CSRF token from GET /csrf-token and keeps it
// until Reset
type CSRFTokenProvider struct {
	api   *APIClient
	group singleflight.Group

	mu    sync.RWMutex
	token string
}

func newCSRFTokenProvider(api *APIClient) *CSRFTokenProvider {
	return &CSRFTokenProvider{api: api}
}

// Token returns the cached token, fetching it once when absent
func (p *CSRFTokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.RLock()
	token := p.token
	p.mu.RUnlock()
	if token != "" {
		return token, nil
	}

	v, err, _ := p.group.Do("csrf", func() (interface{}, error) {
		var resp struct {
			CSRFToken string `json:"csrf_token"`
			CamelCase string `json:"csrfToken"`
		}
		if err := p.api.Do(ctx, Request{Method: http.MethodGet, Path: "/csrf-token"}, &resp); err != nil {
			return "", err
		}
		token := resp.CSRFToken
		if token == "" {
			token = resp.CamelCase
		}
		if token == "" {
			return "", ErrNoCSRFToken
		}
		p.mu.Lock()
		p.token = token
		p.mu.Unlock()
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Reset drops the cached token so the next call fetches a new one
func (p *CSRFTokenProvider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = ""
}
