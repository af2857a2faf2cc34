package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hoainiem-portal/internal/domain"
)

// KeyValueStore persists small pieces of client state such as the bearer token
type KeyValueStore interface {
	// Get returns the value of key; ok is false when it is not set
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// memoryKeyValueStore keeps values in process memory
type memoryKeyValueStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKeyValueStore creates an in-process KeyValueStore
func NewMemoryKeyValueStore() KeyValueStore {
	return &memoryKeyValueStore{values: make(map[string]string)}
}

func (s *memoryKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memoryKeyValueStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *memoryKeyValueStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

// gormKeyValueStore is the GORM implementation of KeyValueStore. Values are
// stored as JSON strings in domain.KeyValueEntry rows.
type gormKeyValueStore struct {
	db *gorm.DB
}

// NewGormKeyValueStore creates a database backed KeyValueStore
func NewGormKeyValueStore(db *gorm.DB) KeyValueStore {
	return &gormKeyValueStore{db: db}
}

func (s *gormKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry domain.KeyValueEntry
	if err := s.db.WithContext(ctx).
		Where("key = ?", key).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}

	var value string
	if err := json.Unmarshal(entry.Value, &value); err != nil {
		return "", false, fmt.Errorf("decode value of %s: %w", key, err)
	}
	return value, true, nil
}

func (s *gormKeyValueStore) Set(ctx context.Context, key, value string) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := domain.KeyValueEntry{Key: key, Value: datatypes.JSON(encoded)}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}

func (s *gormKeyValueStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("key IN ?", keys).
		Delete(&domain.KeyValueEntry{}).Error
}

// redisKeyValueStore stores values under a key prefix in redis
type redisKeyValueStore struct {
	client *redis.Client
	prefix string
}

// NewRedisKeyValueStore creates a redis backed KeyValueStore
func NewRedisKeyValueStore(client *redis.Client, prefix string) KeyValueStore {
	return &redisKeyValueStore{client: client, prefix: prefix}
}

func (s *redisKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *redisKeyValueStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *redisKeyValueStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = s.prefix + k
	}
	return s.client.Del(ctx, prefixed...).Err()
}
