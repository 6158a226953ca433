package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // Integer formatting for cache keys
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Cache key prefixes. Every writer that touches the underlying rows is
// responsible for deleting the matching keys.
const (
	CacheKeyUser     = "user:"          // + user id
	CacheKeyOrders   = "orders:user:"   // + user id (+ :page:N:size:M)
	CacheKeyDeposits = "deposits:user:" // + user id (+ :page:N:size:M)
	CacheKeySettings = "config:settings"
	CacheKeyOffers   = "config:offers"
	CacheKeyMethods  = "config:methods"
	CacheKeyBanners  = "config:banners"
	CacheKeyContacts = "config:contacts"
	CacheKeyAdUnits  = "config:adunits"
)

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes keys from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, keys ...string) error {
	return rdb.Del(ctx, keys...).Err() // Delete keys from Redis
}

// InvalidateUserCache drops a user's profile and paginated list caches.
// Paginated keys are deleted for the first few pages only, mirroring how
// the lists are actually browsed; deeper pages expire by TTL.
func InvalidateUserCache(ctx context.Context, rdb *redis.Client, userID uint) {
	id := strconv.Itoa(int(userID))
	keys := []string{CacheKeyUser + id}
	for i := 1; i <= 5; i++ {
		keys = append(keys, CacheKeyOrders+id+":page:"+strconv.Itoa(i)+":size:20")
		keys = append(keys, CacheKeyDeposits+id+":page:"+strconv.Itoa(i)+":size:20")
	}
	_ = DeleteCache(ctx, rdb, keys...)
}
