package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const catalogKey = "model_catalog"

// Store caches the model catalog between session starts. The fetcher itself
// never caches; this is the caller-side cache layered on top of it.
type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

// GetModelCatalog returns the cached catalog, or ok=false on miss or any
// redis failure. A degraded cache falls back to a direct fetch upstream.
func (s *Store) GetModelCatalog(ctx context.Context) ([]string, bool) {
	raw, err := s.rdb.Get(ctx, catalogKey).Result()
	if err != nil {
		return nil, false
	}
	var models []string
	if err := json.Unmarshal([]byte(raw), &models); err != nil || len(models) == 0 {
		return nil, false
	}
	return models, true
}

func (s *Store) SetModelCatalog(ctx context.Context, models []string, ttl time.Duration) error {
	raw, err := json.Marshal(models)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, catalogKey, raw, ttl).Err()
}
