// Package cache holds request-keyed values fetched from the platform API.
//
// Concurrent reads of the same key share one fetch. Local writes replace the
// stored value without revalidating it, and every replacement is published to
// the key's subscribers.
package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"hoainiem-portal/internal/metrics"
)

// FetchFunc loads the value of a key from the platform
type FetchFunc[T any] func(ctx context.Context) (T, error)

// MutateFunc derives a replacement from the current value. ok is false when
// the key holds no value.
type MutateFunc[T any] func(current T, ok bool) (T, error)

const (
	keySeparator = "\x1f"

	// revalidations run in their own flight so they never join a plain Get
	revalidatePrefix = "revalidate" + keySeparator
)

// Key builds a cache key from its parts, e.g. Key("/posts/1/comments", token)
func Key(parts ...string) string {
	return strings.Join(parts, keySeparator)
}

// Store is a keyed cache of T values
type Store[T any] struct {
	name    string
	metrics *metrics.Metrics
	logger  *zap.Logger

	group singleflight.Group
	now   func() time.Time

	mu      sync.RWMutex
	entries map[string]*entry[T]
	subs    map[string]map[uint64]chan T
	nextSub uint64
}

type entry[T any] struct {
	value T
	// used is the unix nano time of the last read or write
	used atomic.Int64
}

// New creates a store. name labels its metrics.
func New[T any](name string, m *metrics.Metrics, logger *zap.Logger) *Store[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store[T]{
		name:    name,
		metrics: m,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*entry[T]),
		subs:    make(map[string]map[uint64]chan T),
	}
}

// Get returns the cached value of key, fetching it when absent. Concurrent
// callers for the same key wait on a single fetch. The fetch runs detached
// from the caller that started it: a caller whose ctx ends stops waiting and
// the others still get the result.
func (s *Store[T]) Get(ctx context.Context, key string, fetch FetchFunc[T]) (T, error) {
	if v, ok := s.Peek(key); ok {
		s.metrics.RecordCacheLookup(s.name, metrics.CacheHit)
		return v, nil
	}
	return s.load(ctx, key, key, fetch)
}

// Revalidate fetches key and replaces the cached value. Concurrent
// revalidations of key share one fetch; a Get already in flight is not joined,
// so fetch always runs.
func (s *Store[T]) Revalidate(ctx context.Context, key string, fetch FetchFunc[T]) (T, error) {
	return s.load(ctx, revalidatePrefix+key, key, fetch)
}

func (s *Store[T]) load(ctx context.Context, flight, key string, fetch FetchFunc[T]) (T, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(flight, func() (interface{}, error) {
		v, err := fetch(detached)
		if err != nil {
			return v, err
		}
		s.Set(key, v)
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		result := metrics.CacheMiss
		if res.Shared {
			result = metrics.CacheShared
		}
		s.metrics.RecordCacheLookup(s.name, result)
		if res.Err != nil {
			s.logger.Debug("Cache fetch failed",
				zap.String("cache", s.name),
				zap.Error(res.Err),
			)
			return zero, res.Err
		}
		v, _ := res.Val.(T)
		return v, nil
	}
}

// Peek returns the cached value of key without fetching
func (s *Store[T]) Peek(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	e.used.Store(s.now().UnixNano())
	return e.value, true
}

// Set replaces the value of key without revalidation
func (s *Store[T]) Set(key string, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storeLocked(key, v)
}

func (s *Store[T]) storeLocked(key string, v T) {
	e := &entry[T]{value: v}
	e.used.Store(s.now().UnixNano())
	s.entries[key] = e
	s.publishLocked(key, v)
}

// Mutate replaces the value of key with fn's result. fn runs under the store
// lock and must not block; it receives the current value and must return a
// new one rather than modify it. If fn fails the stored value is kept.
func (s *Store[T]) Mutate(key string, fn MutateFunc[T]) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current T
	e, ok := s.entries[key]
	if ok {
		current = e.value
	}
	next, err := fn(current, ok)
	if err != nil {
		var zero T
		return zero, err
	}
	s.storeLocked(key, next)
	return next, nil
}

// Invalidate drops the value of key. Subscribers stay registered.
func (s *Store[T]) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Sweep drops the values not read or written for idle and returns how many
// were dropped. Keys with subscribers are kept.
func (s *Store[T]) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for key, e := range s.entries {
		if e.used.Load() >= cutoff || len(s.subs[key]) > 0 {
			continue
		}
		delete(s.entries, key)
		dropped++
	}
	if dropped > 0 {
		s.logger.Debug("Swept idle cache entries",
			zap.String("cache", s.name),
			zap.Int("dropped", dropped),
		)
	}
	return dropped
}

// Len returns the number of cached keys
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Subscribe returns a channel receiving every new value of key and a cancel
// func that closes it. A slow subscriber only sees the latest value.
func (s *Store[T]) Subscribe(key string) (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan T, 1)
	if s.subs[key] == nil {
		s.subs[key] = make(map[uint64]chan T)
	}
	s.subs[key][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs[key], id)
			if len(s.subs[key]) == 0 {
				delete(s.subs, key)
			}
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store[T]) publishLocked(key string, v T) {
	for _, ch := range s.subs[key] {
		select {
		case ch <- v:
			continue
		default:
		}
		// drop the stale value so the latest one fits
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}
