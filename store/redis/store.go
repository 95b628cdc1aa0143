package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/grove/kv"
	"github.com/xraph/grove/kv/drivers/redisdriver"

	heraldstore "github.com/xraph/herald/store"
)

// compile-time interface check
var _ heraldstore.Store = (*Store)(nil)

// Store implements store.Store using Redis via Grove KV. Entities are JSON
// values; listings walk sorted-set indexes scored by creation time.
//
// Correlations never expire. Records expire after the configured TTL, and
// their index entries are pruned lazily when a listing finds them gone.
type Store struct {
	kv        *kv.Store
	rdb       goredis.UniversalClient
	keys      keyspace
	recordTTL time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithNamespace replaces DefaultNamespace as the key prefix.
func WithNamespace(ns string) Option {
	return func(s *Store) {
		if ns != "" {
			s.keys = keyspace{ns: ns}
		}
	}
}

// WithRecordTTL expires dispatch records after d. Zero keeps them forever.
func WithRecordTTL(d time.Duration) Option {
	return func(s *Store) { s.recordTTL = d }
}

// New creates a Redis store backed by Grove KV.
func New(store *kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:   store,
		rdb:  redisdriver.UnwrapClient(store),
		keys: keyspace{ns: DefaultNamespace},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate is a no-op; Redis has no schema.
func (s *Store) Migrate(_ context.Context) error {
	return nil
}

// Ping checks Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}

// Close closes the KV store.
func (s *Store) Close() error {
	return s.kv.Close()
}

func now() time.Time {
	return time.Now().UTC()
}

// score orders index members by creation time in seconds.
func score(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func isNotFound(err error) bool {
	return errors.Is(err, kv.ErrNotFound) || errors.Is(err, goredis.Nil)
}

func (s *Store) getJSON(ctx context.Context, key string, dest any) error {
	raw, err := s.kv.GetRaw(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// putJSON stores value under key, expiring it after ttl when ttl > 0.
func (s *Store) putJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("herald/redis: marshal %s: %w", key, err)
	}
	if ttl > 0 {
		return s.kv.SetRaw(ctx, key, raw, kv.WithTTL(ttl))
	}
	return s.kv.SetRaw(ctx, key, raw)
}

func page[T any](items []*T, offset, limit int) []*T {
	if offset >= len(items) {
		return nil
	}
	if offset > 0 {
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
