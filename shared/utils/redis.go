package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/rentfolio/go-rental-management/shared/models"
)

var (
	RedisClient *redis.Client
	ctx         = context.Background()
)

// PropertyTenantsTTL bounds how stale a cached current-tenants list can get.
const PropertyTenantsTTL = 5 * time.Minute

// InitRedis initializes the Redis client. Callers may treat failure as
// non-fatal: every cache helper falls through when the client is nil.
func InitRedis() error {
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost"
	}

	redisPort := os.Getenv("REDIS_PORT")
	if redisPort == "" {
		redisPort = "6379"
	}

	addr := fmt.Sprintf("%s:%s", redisHost, redisPort)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	RedisClient = client
	return nil
}

// CloseRedis closes the Redis connection
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// GetRedisClient returns the Redis client instance (for advanced operations)
func GetRedisClient() *redis.Client {
	return RedisClient
}

// propertyTenantsKey scopes the cache entry to the owner as well as the
// property. A key shared across owners would let one owner read another's
// tenant list straight out of the cache, bypassing the ownership checks the
// database queries enforce.
func propertyTenantsKey(ownerID, propertyID uuid.UUID) string {
	return fmt.Sprintf("property:tenants:%s:%s", ownerID.String(), propertyID.String())
}

// CachePropertyTenants stores the current-tenants list of a property for one
// owner.
func CachePropertyTenants(ownerID, propertyID uuid.UUID, tenants []models.Tenant) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	data, err := json.Marshal(tenants)
	if err != nil {
		return fmt.Errorf("failed to marshal tenants: %w", err)
	}
	return RedisClient.Set(ctx, propertyTenantsKey(ownerID, propertyID), data, PropertyTenantsTTL).Err()
}

// GetCachedPropertyTenants retrieves the cached current-tenants list of a
// property for one owner. Returns an error on cache miss.
func GetCachedPropertyTenants(ownerID, propertyID uuid.UUID) ([]models.Tenant, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}
	data, err := RedisClient.Get(ctx, propertyTenantsKey(ownerID, propertyID)).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("key not found")
	}
	if err != nil {
		return nil, err
	}
	var tenants []models.Tenant
	if err := json.Unmarshal([]byte(data), &tenants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tenants: %w", err)
	}
	return tenants, nil
}

// InvalidatePropertyTenants drops the cached current-tenants list of a
// property after an attach or detach mutated its lease graph.
func InvalidatePropertyTenants(ownerID, propertyID uuid.UUID) {
	if RedisClient == nil {
		return
	}
	RedisClient.Del(ctx, propertyTenantsKey(ownerID, propertyID))
}
