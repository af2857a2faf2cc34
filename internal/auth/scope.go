package auth

import (
	"context"

	"github.com/google/uuid"
)

type sessionIDKey struct{}

// NewSessionID returns a fresh opaque session id
func NewSessionID() string {
	return uuid.NewString()
}

// WithSessionID returns ctx carrying the session id of the caller. An empty
// id returns ctx unchanged.
func WithSessionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// SessionID returns the session id carried by ctx, or "" when none is
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}

// ScopedKey prefixes key with the session id carried by ctx
func ScopedKey(ctx context.Context, key string) string {
	return scopedKey(SessionID(ctx), key)
}

func scopedKey(id, key string) string {
	if id == "" {
		return key
	}
	return "session:" + id + ":" + key
}
