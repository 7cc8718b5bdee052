// Package redis caches character sheets in Redis in front of a durable
// storage.CharacterStore.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cory-johannsen/charsheet/internal/config"
	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/sheetio"
	"github.com/cory-johannsen/charsheet/internal/storage"
)

const keyPrefix = "charsheet:character:"

// NewClient connects to the Redis server described by cfg.
//
// Precondition: cfg.Addr must be non-empty.
// Postcondition: Returns a client that answered PING, or a non-nil error.
func NewClient(ctx context.Context, cfg config.CacheConfig) (*goredis.Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis: address is required")
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

// entry is the cached form of a storage.Record.
type entry struct {
	Revision  int64           `json:"revision"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Sheet     json.RawMessage `json:"sheet"`
}

// CachedStore serves GetByID from Redis and keeps the cache in step with
// every write. Cache failures are logged and fall through to the backing store.
type CachedStore struct {
	next   storage.CharacterStore
	client goredis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

var _ storage.CharacterStore = (*CachedStore)(nil)

// NewCachedStore wraps next with a cache whose entries expire after ttl.
//
// Precondition: next, client and logger must be non-nil; ttl must be positive.
func NewCachedStore(next storage.CharacterStore, client goredis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachedStore {
	return &CachedStore{next: next, client: client, ttl: ttl, logger: logger}
}

func key(id string) string { return keyPrefix + id }

// Create stores c in the backing store and caches the new record.
func (s *CachedStore) Create(ctx context.Context, c *character.Character) (storage.Record, error) {
	rec, err := s.next.Create(ctx, c)
	if err != nil {
		return storage.Record{}, err
	}
	s.put(ctx, rec)
	return rec, nil
}

// GetByID returns the cached record of id, loading and caching it on a miss.
func (s *CachedStore) GetByID(ctx context.Context, id string) (storage.Record, error) {
	if rec, ok := s.get(ctx, id); ok {
		return rec, nil
	}
	rec, err := s.next.GetByID(ctx, id)
	if err != nil {
		return storage.Record{}, err
	}
	s.put(ctx, rec)
	return rec, nil
}

// List always reads the backing store.
func (s *CachedStore) List(ctx context.Context) ([]storage.Summary, error) {
	return s.next.List(ctx)
}

// Save writes through to the backing store and drops the cached entry, so
// the next GetByID reloads the stored record.
func (s *CachedStore) Save(ctx context.Context, c *character.Character, expected int64, intent string) (int64, error) {
	rev, err := s.next.Save(ctx, c, expected, intent)
	s.evict(ctx, c.ID)
	return rev, err
}

// Delete removes id from the backing store and the cache.
func (s *CachedStore) Delete(ctx context.Context, id string) error {
	s.evict(ctx, id)
	return s.next.Delete(ctx, id)
}

// Journal always reads the backing store.
func (s *CachedStore) Journal(ctx context.Context, id string) ([]storage.JournalEntry, error) {
	return s.next.Journal(ctx, id)
}

func (s *CachedStore) get(ctx context.Context, id string) (storage.Record, bool) {
	raw, err := s.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			s.logger.Warn("sheet cache read failed", zap.String("character_id", id), zap.Error(err))
		}
		return storage.Record{}, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		s.logger.Warn("sheet cache entry corrupt", zap.String("character_id", id), zap.Error(err))
		s.evict(ctx, id)
		return storage.Record{}, false
	}
	c, err := sheetio.UnmarshalJSON(e.Sheet)
	if err != nil {
		s.logger.Warn("sheet cache document rejected", zap.String("character_id", id), zap.Error(err))
		s.evict(ctx, id)
		return storage.Record{}, false
	}
	s.logger.Debug("sheet cache hit", zap.String("character_id", id), zap.Int64("revision", e.Revision))
	return storage.Record{Character: c, Revision: e.Revision, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}, true
}

func (s *CachedStore) put(ctx context.Context, rec storage.Record) {
	doc, err := sheetio.MarshalJSON(rec.Character)
	if err != nil {
		s.logger.Warn("sheet cache encode failed", zap.String("character_id", rec.Character.ID), zap.Error(err))
		return
	}
	raw, err := json.Marshal(entry{Revision: rec.Revision, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt, Sheet: doc})
	if err != nil {
		s.logger.Warn("sheet cache encode failed", zap.String("character_id", rec.Character.ID), zap.Error(err))
		return
	}
	if err := s.client.Set(ctx, key(rec.Character.ID), raw, s.ttl).Err(); err != nil {
		s.logger.Warn("sheet cache write failed", zap.String("character_id", rec.Character.ID), zap.Error(err))
	}
}

func (s *CachedStore) evict(ctx context.Context, id string) {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		s.logger.Warn("sheet cache evict failed", zap.String("character_id", id), zap.Error(err))
	}
}
