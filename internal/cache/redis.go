package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis-backed cache for the category→count aggregation. Caching is
// best-effort: without a REDIS_URL, or when Redis is unreachable, every
// operation degrades to a miss/no-op and the store is queried directly.

const (
	categoriesKey = "marketplace:categories"
	categoriesTTL = 60 * time.Second
)

// ErrMiss is returned by CategoryCounts when the entry is absent or caching
// is disabled.
var ErrMiss = errors.New("cache miss")

var (
	redisClient *redis.Client
	enabled     bool
)

// Initialize sets up the Redis connection if a URL is provided.
func Initialize(redisURL string) {
	if redisURL == "" {
		log.Println("Redis URL not provided, caching disabled")
		enabled = false
		return
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("Failed to parse Redis URL: %v, caching disabled", err)
		enabled = false
		return
	}

	redisClient = redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Failed to connect to Redis: %v, caching disabled", err)
		enabled = false
		return
	}

	enabled = true
	log.Println("Redis cache initialized successfully")
}

// Close closes the Redis connection.
func Close() {
	if redisClient != nil {
		redisClient.Close()
	}
}

// CategoryCounts returns the cached aggregation, or ErrMiss.
func CategoryCounts(ctx context.Context) (map[string]int64, error) {
	if !enabled {
		return nil, ErrMiss
	}

	data, err := redisClient.Get(ctx, categoriesKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}

	var counts map[string]int64
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// StoreCategoryCounts caches the aggregation for a short window.
func StoreCategoryCounts(ctx context.Context, counts map[string]int64) error {
	if !enabled {
		return nil
	}

	data, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	return redisClient.Set(ctx, categoriesKey, data, categoriesTTL).Err()
}

// InvalidateCategoryCounts drops the cached aggregation after a product
// mutation.
func InvalidateCategoryCounts(ctx context.Context) error {
	if !enabled {
		return nil
	}
	return redisClient.Del(ctx, categoriesKey).Err()
}
