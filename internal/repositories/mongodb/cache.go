package mongodb

import (
	"context"
	"time"
)

// CacheService is the slice of the cache layer the repositories use.
// Passing nil disables caching entirely.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
