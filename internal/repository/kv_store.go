package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/ideaforge-api/internal/models"
)

// Fixed document keys. Each holds one whole collection.
const (
	KeyIdeas         = "ideas"
	KeyClusters      = "idea_clusters"
	KeySession       = "session"
	KeyNotifications = "notifications"
)

// ErrKeyNotFound is returned when a key has never been written.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore persists opaque JSON documents under string keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore stores documents as plain redis strings under prefix+key.
func NewRedisStore(client *redis.Client, prefix string) KeyValueStore {
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &redisStore{client: client, prefix: prefix}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

type sqlStore struct {
	db *gorm.DB
}

// NewSQLStore stores documents in the kv_entries table. The table must be migrated first.
func NewSQLStore(db *gorm.DB) KeyValueStore {
	return &sqlStore{db: db}
}

func (s *sqlStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry models.KVEntry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("sql get %s: %w", key, err)
	}
	return []byte(entry.Value), nil
}

func (s *sqlStore) Set(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC()
	entry := models.KVEntry{Key: key, Value: datatypes.JSON(value), CreatedAt: now, UpdatedAt: now}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("sql set %s: %w", key, err)
	}
	return nil
}

func (s *sqlStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&models.KVEntry{}).Error; err != nil {
		return fmt.Errorf("sql delete %s: %w", key, err)
	}
	return nil
}
