package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotAuthenticated is returned, before any network call, when an
	// operation needs a bearer token (or user id) and the session has none
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrThreadNotLoaded is returned by local thread operations before the first load
	ErrThreadNotLoaded = errors.New("comment thread not loaded")
	// ErrFeedExhausted is returned by LoadNext once every related article is loaded
	ErrFeedExhausted = errors.New("no more articles in feed")
	// ErrFeedBusy is returned by LoadNext while a load is in flight
	ErrFeedBusy = errors.New("feed is loading")
	// ErrFeedNotFound is returned for an unknown feed id
	ErrFeedNotFound = errors.New("feed not found")
	// ErrArticleNotFound is returned when the platform answers a post detail
	// request with a code other than 200
	ErrArticleNotFound = errors.New("article not found")
	// ErrCooldown matches every *CooldownError
	ErrCooldown = errors.New("forgot-password resend is cooling down")
)

// CooldownError is returned while a forgot-password request may not be resent
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: retry in %ds", ErrCooldown.Error(), e.Seconds())
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldown
}

// Seconds returns the remaining wait rounded up to whole seconds
func (e *CooldownError) Seconds() int {
	s := int(e.Remaining / time.Second)
	if e.Remaining%time.Second > 0 {
		s++
	}
	return s
}
