package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedStore is a read-through Redis cache over another Store. Rows and
// their token are cached together, so a hit can never pair fresh rows with a
// stale token. Writes go straight to the backend and refresh or drop the
// cache entry depending on the outcome.
type CachedStore struct {
	inner Store
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCached(inner Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, rdb: rdb, ttl: ttl}
}

type cachedTable struct {
	Rows  []json.RawMessage `json:"rows"`
	Token Token             `json:"token"`
}

func cacheKey(collection string) string {
	return "maidbook:collection:" + collection
}

func (s *CachedStore) Read(ctx context.Context, collection string) ([]json.RawMessage, Token, error) {
	if cached, ok := s.readCache(ctx, collection); ok {
		return cached.Rows, cached.Token, nil
	}

	rows, tok, err := s.inner.Read(ctx, collection)
	if err != nil {
		return nil, "", err
	}
	s.writeCache(ctx, collection, cachedTable{Rows: rows, Token: tok})
	return rows, tok, nil
}

func (s *CachedStore) Write(ctx context.Context, collection string, rows []json.RawMessage, expected Token) (Token, error) {
	tok, err := s.inner.Write(ctx, collection, rows, expected)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			// Whatever we cached is behind the conflicting writer.
			_ = s.rdb.Del(ctx, cacheKey(collection)).Err()
		}
		return "", err
	}

	s.writeCache(ctx, collection, cachedTable{Rows: rows, Token: tok})
	return tok, nil
}

func (s *CachedStore) readCache(ctx context.Context, collection string) (cachedTable, bool) {
	if s.rdb == nil || s.ttl <= 0 {
		return cachedTable{}, false
	}
	val, err := s.rdb.Get(ctx, cacheKey(collection)).Result()
	if err != nil {
		return cachedTable{}, false
	}
	var cached cachedTable
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return cachedTable{}, false
	}
	return cached, true
}

func (s *CachedStore) writeCache(ctx context.Context, collection string, table cachedTable) {
	if s.rdb == nil || s.ttl <= 0 {
		return
	}
	data, err := json.Marshal(table)
	if err != nil {
		return
	}
	_ = s.rdb.Set(ctx, cacheKey(collection), data, s.ttl).Err()
}
