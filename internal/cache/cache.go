package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("cache: entry not found")
	// ErrQuotaExceeded is returned by a backend when a write is refused for
	// lack of space.
	ErrQuotaExceeded = errors.New("cache: quota exceeded")
	// ErrEntryTooLarge is a write the backend can never hold, whatever is pruned.
	ErrEntryTooLarge = errors.New("cache: entry too large")
	// ErrSaveFailed means the write failed even after the emergency prune.
	ErrSaveFailed = errors.New("could not save")
	ErrLoadFailed = errors.New("could not load")
)

// Backend is a raw key-value store. A zero ttl means no expiry.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
