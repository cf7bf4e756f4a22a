// Package cache provides an optional read-through cache for public listing reads.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store caches JSON-encodable values by key.
//
// Keys live in namespaces that carry a generation. Readers read the
// generation before loading from storage and build keys under it, so a
// value loaded before an Invalidate is written under a generation nobody
// reads any more.
type Store interface {
	// Get decodes the cached value for key into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	// Generation returns the current generation of namespace ns.
	Generation(ctx context.Context, ns string) (int64, error)
	// Invalidate advances the generation of ns and drops its entries.
	Invalidate(ctx context.Context, ns string) error
}

// Noop is a Store that never holds anything.
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, interface{}) error         { return nil }
func (Noop) Generation(context.Context, string) (int64, error)      { return 0, nil }
func (Noop) Invalidate(context.Context, string) error               { return nil }

// Redis is a Store backed by a Redis server.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis-backed store. Entries expire after ttl.
func NewRedis(addr, password string, ttl time.Duration) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       0,
		}),
		ttl: ttl,
	}
}

// Ping checks the connection to the server.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decoding cached %s: %w", key, err)
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Generation(ctx context.Context, ns string) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey(ns)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation %s: %w", ns, err)
	}
	return gen, nil
}

func (r *Redis) Invalidate(ctx context.Context, ns string) error {
	if err := r.client.Incr(ctx, generationKey(ns)).Err(); err != nil {
		return fmt.Errorf("redis incr generation %s: %w", ns, err)
	}

	// Old entries are unreachable now; deleting them only frees memory early.
	iter := r.client.Scan(ctx, 0, ns+"v*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning %sv*: %w", ns, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("deleting %d keys: %w", len(keys), err)
	}
	return nil
}

func generationKey(ns string) string {
	return ns + "generation"
}

// Versioned returns the key for suffix under generation gen of namespace ns.
func Versioned(ns string, gen int64, suffix string) string {
	return fmt.Sprintf("%sv%d:%s", ns, gen, suffix)
}

// Key builds a stable cache key from a prefix and query parameters.
// Parameters with empty values are ignored.
func Key(prefix string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			names = append(names, k)
		}
	}
	if len(names) == 0 {
		return prefix + "all"
	}
	sort.Strings(names)

	var b strings.Builder
	for i, k := range names {
		if i > 0 {
			b.WriteString("&")
		}
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(params[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return prefix + hex.EncodeToString(sum[:8])
}
