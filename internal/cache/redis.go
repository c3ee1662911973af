package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rental-backend/internal/config"
)

// Dashboard and room cache keys
const (
	RoomStatsKey   = "rooms:stats"
	DashboardKey   = "dashboard:summary"
	RoomListKeyFmt = "rooms:list:%s"
	StatsTTL       = 5 * time.Minute
	DashboardTTL   = 5 * time.Minute
)

var client *redis.Client

// Init initializes the Redis connection. The cache is optional: on
// failure the client stays nil and every helper degrades to a miss.
func Init(cfg *config.Config) error {
	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client (nil when the cache is down).
func GetClient() *redis.Client {
	return client
}

// hashCredentials creates a hash of email+password for cache key
func hashCredentials(email, password string) string {
	h := sha256.New()
	h.Write([]byte(email + ":" + password))
	return "auth:" + hex.EncodeToString(h.Sum(nil))[:32]
}

// GetCachedAuth checks if credentials are cached and valid
func GetCachedAuth(ctx context.Context, email, password string) (int64, bool) {
	if client == nil {
		return 0, false
	}
	userID, err := client.Get(ctx, hashCredentials(email, password)).Int64()
	if err != nil {
		return 0, false
	}
	return userID, true
}

// CacheAuth caches valid credentials for 15 minutes
func CacheAuth(ctx context.Context, email, password string, userID int64) {
	if client == nil {
		return
	}
	client.Set(ctx, hashCredentials(email, password), userID, 15*time.Minute)
}

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// InvalidatePattern removes all keys matching a glob pattern
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	keys, err := client.Keys(ctx, pattern).Result()
	if err == nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateKeys removes specific cache keys
func InvalidateKeys(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

// InvalidateRoomCaches clears room listings and statistics.
// Called when: room create/update/delete, agreement commit, expiring
// transitions (anything that moves a room between statuses).
func InvalidateRoomCaches(ctx context.Context) {
	InvalidatePattern(ctx, "rooms:*")
	InvalidateKeys(ctx, DashboardKey)
}

// InvalidateContractCaches clears contract-derived caches.
// Called when: agreement commit, contract update/terminate.
func InvalidateContractCaches(ctx context.Context) {
	InvalidatePattern(ctx, "contracts:*")
	InvalidateKeys(ctx, DashboardKey)
}

// InvalidateInvoiceCaches clears invoice listings.
// Called when: invoice create, payment recorded.
func InvalidateInvoiceCaches(ctx context.Context) {
	InvalidatePattern(ctx, "invoices:*")
	InvalidateKeys(ctx, DashboardKey)
}

// IsHealthy returns true if Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}
