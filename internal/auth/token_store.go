package auth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"hoainiem-portal/internal/domain"
	"hoainiem-portal/internal/repository"
)

const (
	KeyAccessToken = "access_token"
	KeyUserID      = "user_id"
)

// ErrNoSessionID is returned when a scoped store is written without a session id
var ErrNoSessionID = errors.New("no session id in context")

// TokenStore keeps the bearer token and user id of a session
type TokenStore interface {
	Get(ctx context.Context) (domain.Session, error)
	// Set stores token. An empty userID is taken from the token claims when possible.
	Set(ctx context.Context, token, userID string) error
	Clear(ctx context.Context) error
	// SessionIDs lists the sessions known to the store. A store holding a
	// single session returns one empty id.
	SessionIDs() []string
	// ExpireIdle clears the sessions not used for idle and returns how many
	// were cleared
	ExpireIdle(ctx context.Context, idle time.Duration) (int, error)
}

type tokenStoreImpl struct {
	kv     repository.KeyValueStore
	logger *zap.Logger
	scoped bool
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewTokenStore creates a TokenStore over kv holding a single session for the
// whole process
func NewTokenStore(kv repository.KeyValueStore, logger *zap.Logger) TokenStore {
	return newTokenStore(kv, logger, false)
}

// NewScopedTokenStore creates a TokenStore over kv holding one session per
// session id. A context without a session id reads as signed out.
func NewScopedTokenStore(kv repository.KeyValueStore, logger *zap.Logger) TokenStore {
	return newTokenStore(kv, logger, true)
}

func newTokenStore(kv repository.KeyValueStore, logger *zap.Logger, scoped bool) *tokenStoreImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &tokenStoreImpl{
		kv:     kv,
		logger: logger,
		scoped: scoped,
		now:    time.Now,
		seen:   make(map[string]time.Time),
	}
}

// sessionID resolves the session of ctx; ok is false for a scoped store
// without a session id
func (s *tokenStoreImpl) sessionID(ctx context.Context) (string, bool) {
	if !s.scoped {
		return "", true
	}
	id := SessionID(ctx)
	return id, id != ""
}

func (s *tokenStoreImpl) touch(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	s.seen[id] = s.now()
	s.mu.Unlock()
}

func (s *tokenStoreImpl) forget(id string) {
	s.mu.Lock()
	delete(s.seen, id)
	s.mu.Unlock()
}

// idleSince reports whether id was last used before cutoff
func (s *tokenStoreImpl) idleSince(id string, cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.seen[id]
	return ok && at.Before(cutoff)
}

func (s *tokenStoreImpl) Get(ctx context.Context) (domain.Session, error) {
	id, ok := s.sessionID(ctx)
	if !ok {
		return domain.Session{}, nil
	}

	token, ok, err := s.kv.Get(ctx, scopedKey(id, KeyAccessToken))
	if err != nil {
		return domain.Session{}, fmt.Errorf("read access token: %w", err)
	}
	if !ok || token == "" {
		return domain.Session{}, nil
	}
	s.touch(id)

	userID, _, err := s.kv.Get(ctx, scopedKey(id, KeyUserID))
	if err != nil {
		return domain.Session{}, fmt.Errorf("read user id: %w", err)
	}

	session := domain.Session{Token: token, UserID: userID}
	if claims, err := ParseClaims(token); err == nil {
		session.ExpiresAt = claims.ExpiresAt
		if session.UserID == "" {
			session.UserID = claims.UserID
		}
	}
	return session, nil
}

func (s *tokenStoreImpl) Set(ctx context.Context, token, userID string) error {
	id, ok := s.sessionID(ctx)
	if !ok {
		return ErrNoSessionID
	}

	if userID == "" {
		claims, err := ParseClaims(token)
		if err != nil {
			s.logger.Debug("Access token is opaque, user id unknown", zap.Error(err))
		}
		userID = claims.UserID
	}

	if err := s.kv.Set(ctx, scopedKey(id, KeyAccessToken), token); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	s.touch(id)
	if userID == "" {
		return s.kv.Delete(ctx, scopedKey(id, KeyUserID))
	}
	if err := s.kv.Set(ctx, scopedKey(id, KeyUserID), userID); err != nil {
		return fmt.Errorf("store user id: %w", err)
	}
	return nil
}

func (s *tokenStoreImpl) Clear(ctx context.Context) error {
	id, ok := s.sessionID(ctx)
	if !ok {
		return nil
	}
	if err := s.kv.Delete(ctx, scopedKey(id, KeyAccessToken), scopedKey(id, KeyUserID)); err != nil {
		return err
	}
	s.forget(id)
	return nil
}

func (s *tokenStoreImpl) SessionIDs() []string {
	if !s.scoped {
		return []string{""}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.seen))
	for id := range s.seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *tokenStoreImpl) ExpireIdle(ctx context.Context, idle time.Duration) (int, error) {
	if !s.scoped {
		return 0, nil
	}
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	var stale []string
	for id, at := range s.seen {
		if at.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	s.mu.Unlock()

	var errs []error
	expired := 0
	for _, id := range stale {
		if !s.idleSince(id, cutoff) {
			continue
		}
		if err := s.Clear(WithSessionID(ctx, id)); err != nil {
			errs = append(errs, fmt.Errorf("clear session %s: %w", id, err))
			continue
		}
		expired++
	}
	if expired > 0 {
		s.logger.Info("Expired idle sessions", zap.Int("count", expired))
	}
	return expired, errors.Join(errs...)
}
