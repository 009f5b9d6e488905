package repository

import (
	"context"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/crrelabs/HireAnyPro/internal/pkg/cache"
)

// ThrottleKey is one Redis sliding-window counter.
type ThrottleKey struct {
	Key  string        `json:"key"`
	Hits int64         `json:"hits"`
	TTL  time.Duration `json:"ttl"`
}

// ThrottleRepository lets operators inspect and reset shared rate limit counters.
type ThrottleRepository interface {
	FindKeys(pattern string) ([]ThrottleKey, error)
	DeleteKeys(keys []string) (int64, error)
}

// throttleRepository operates on Redis rather than the SQL database.
type throttleRepository struct {
	client *goredis.Client
}

// NewThrottleRepository uses client, or the shared cache client when nil.
func NewThrottleRepository(client *goredis.Client) ThrottleRepository {
	return &throttleRepository{client: client}
}

func (r *throttleRepository) redis() *goredis.Client {
	if r.client != nil {
		return r.client
	}
	return cache.GetClient()
}

// FindKeys scans for counters matching pattern and reports their size and TTL.
func (r *throttleRepository) FindKeys(pattern string) ([]ThrottleKey, error) {
	client := r.redis()
	ctx := context.Background()

	seen := make(map[string]struct{})
	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, pattern, 500).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			seen[key] = struct{}{}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	names := make([]string, 0, len(seen))
	for key := range seen {
		names = append(names, key)
	}
	sort.Strings(names)

	out := make([]ThrottleKey, 0, len(names))
	for _, key := range names {
		hits, err := client.ZCard(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		ttl, err := client.PTTL(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		out = append(out, ThrottleKey{Key: key, Hits: hits, TTL: ttl})
	}
	return out, nil
}

// DeleteKeys deletes keys in batches and returns the total number of deleted keys.
func (r *throttleRepository) DeleteKeys(keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	client := r.redis()
	ctx := context.Background()

	const batchSize = 500
	var totalDeleted int64

	for i := 0; i < len(keys); i += batchSize {
		end := i + batchSize
		if end > len(keys) {
			end = len(keys)
		}

		deleted, err := client.Del(ctx, keys[i:end]...).Result()
		if err != nil {
			return totalDeleted, err
		}
		totalDeleted += deleted
	}

	return totalDeleted, nil
}
