package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of *redis.Client the source needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
}

// RedisSource stores each collection as one JSON array under
// "<prefix>:<collection>", the same document shape as the asset files.
type RedisSource struct {
	client RedisClient
	prefix string
}

var _ DatasetSource = (*RedisSource)(nil)

// NewRedisSource builds a source over client. An empty prefix means "keycard".
func NewRedisSource(client RedisClient, prefix string) *RedisSource {
	if prefix == "" {
		prefix = "keycard"
	}
	return &RedisSource{client: client, prefix: prefix}
}

// Key returns the redis key holding collection.
func (s *RedisSource) Key(collection string) string {
	return s.prefix + ":" + collection
}

func (s *RedisSource) Employees(ctx context.Context) ([]Employee, error) {
	var out []Employee
	if err := s.get(ctx, CollectionEmployees, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RedisSource) KeyCardEntries(ctx context.Context) ([]KeyCardEntry, error) {
	var out []KeyCardEntry
	if err := s.get(ctx, CollectionEntries, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RedisSource) Images(ctx context.Context) ([]Image, error) {
	var out []Image
	if err := s.get(ctx, CollectionImages, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RedisSource) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := s.get(ctx, CollectionCategories, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Replace writes all four collections in a single MULTI/EXEC so readers see
// either the old or the new data set.
func (s *RedisSource) Replace(ctx context.Context, ds Dataset) error {
	docs := map[string]any{
		CollectionEmployees:  ds.Employees,
		CollectionEntries:    ds.Entries,
		CollectionImages:     ds.Images,
		CollectionCategories: ds.Categories,
	}
	encoded := make(map[string][]byte, len(docs))
	for name, v := range docs {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		encoded[name] = raw
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for name, raw := range encoded {
			pipe.Set(ctx, s.Key(name), raw, 0)
		}
		return nil
	})
	return err
}

// Dataset fetches all four collections with a single MGET, so it never
// mixes keys from before and after a Replace.
func (s *RedisSource) Dataset(ctx context.Context) (Dataset, error) {
	var ds Dataset
	names := []string{CollectionEmployees, CollectionEntries, CollectionImages, CollectionCategories}
	dsts := []any{&ds.Employees, &ds.Entries, &ds.Images, &ds.Categories}
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = s.Key(name)
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return Dataset{}, fmt.Errorf("redis mget: %w", err)
	}
	if len(vals) != len(keys) {
		return Dataset{}, fmt.Errorf("redis mget: got %d values for %d keys", len(vals), len(keys))
	}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			return Dataset{}, fmt.Errorf("load %s: redis key %s not found", names[i], keys[i])
		}
		if err := decode(keys[i], []byte(raw), dsts[i]); err != nil {
			return Dataset{}, fmt.Errorf("load %s: %w", names[i], err)
		}
	}
	return ds, nil
}

func (s *RedisSource) get(ctx context.Context, collection string, dst any) error {
	key := s.Key(collection)
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("redis key %s not found", key)
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	return decode(key, raw, dst)
}

func decode(key string, raw []byte, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
