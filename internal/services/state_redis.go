package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces PriceScout keys in a shared Redis.
const DefaultRedisPrefix = "pricescout:state:"

var _ StateRepository = (*RedisStateRepository)(nil)

// RedisStateRepository stores state as JSON-encoded entries in Redis so
// several terminals can share one view state.
type RedisStateRepository struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisClient parses url, connects and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewRedisStateRepository wraps client. An empty prefix uses
// DefaultRedisPrefix.
func NewRedisStateRepository(client redis.UniversalClient, prefix string) *RedisStateRepository {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStateRepository{client: client, prefix: prefix}
}

func (r *RedisStateRepository) Get(ctx context.Context, key string) (*StateEntry, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get state %q: %w", key, err)
	}
	var e StateEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode state %q: %w", key, ErrCorruptState)
	}
	e.Key = key
	return &e, nil
}

func (r *RedisStateRepository) Set(ctx context.Context, key, value string) error {
	raw, err := json.Marshal(StateEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode state %q: %w", key, err)
	}
	if err := r.client.Set(ctx, r.prefix+key, raw, 0).Err(); err != nil {
		return fmt.Errorf("set state %q: %w", key, err)
	}
	return nil
}

func (r *RedisStateRepository) Delete(ctx context.Context, key string) error {
	n, err := r.client.Del(ctx, r.prefix+key).Result()
	if err != nil {
		return fmt.Errorf("delete state %q: %w", key, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisStateRepository) List(ctx context.Context, opts ListOptions) (*ListResult[StateEntry], error) {
	opts = normalizeListOptions(opts)

	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+opts.Prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), r.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan state keys: %w", err)
	}
	sort.Strings(keys)

	page := window(keys, opts)
	items := make([]StateEntry, 0, len(page))
	for _, k := range page {
		e, err := r.Get(ctx, k)
		if errors.Is(err, ErrNotFound) {
			continue // deleted between SCAN and GET
		}
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	return &ListResult[StateEntry]{Items: items, Total: len(keys)}, nil
}
