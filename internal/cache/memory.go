package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/coocood/freecache"
)

const (
	megabyte = 1024 * 1024
	// DefaultMemorySizeMB leaves room for 128KB entries, freecache refuses
	// anything above 1/1024 of its size
	DefaultMemorySizeMB = 128

	freecacheEntryHeader = 24
)

var _ Backend = (*MemoryBackend)(nil)

// MemoryBackend keeps entries in a freecache segment. freecache evicts
// silently when full, so an explicit entry quota is what surfaces
// ErrQuotaExceeded.
type MemoryBackend struct {
	cache      *freecache.Cache
	maxEntries int64
	// serializes the quota check with the write
	writeMutex sync.Mutex
}

func NewMemoryBackend(sizeMB, maxEntries int) *MemoryBackend {
	if sizeMB <= 0 {
		sizeMB = DefaultMemorySizeMB
	}
	return &MemoryBackend{
		cache:      freecache.NewCache(sizeMB * megabyte),
		maxEntries: int64(maxEntries),
	}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	val, err := m.cache.Get([]byte(key))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return val, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.writeMutex.Lock()
	defer m.writeMutex.Unlock()

	if m.maxEntries > 0 && m.cache.EntryCount() >= m.maxEntries {
		if _, err := m.cache.Get([]byte(key)); err != nil {
			return ErrQuotaExceeded
		}
	}

	expireSeconds := 0
	if ttl > 0 {
		expireSeconds = int(ttl.Seconds())
	}

	if err := m.cache.Set([]byte(key), value, expireSeconds); err != nil {
		if errors.Is(err, freecache.ErrLargeEntry) || errors.Is(err, freecache.ErrLargeKey) {
			return fmt.Errorf("%w: %d bytes: %s", ErrEntryTooLarge, len(key)+len(value), err)
		}
		return err
	}

	return nil
}

// MaxMemoryEntryBytes is the largest key plus value a backend of sizeMB
// accepts: a quarter of one of the 256 segments, less the entry header.
func MaxMemoryEntryBytes(sizeMB int) int {
	return sizeMB*megabyte/1024 - freecacheEntryHeader
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.cache.Del([]byte(key))
	return nil
}

func (m *MemoryBackend) Keys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	it := m.cache.NewIterator()
	for e := it.Next(); e != nil; e = it.Next() {
		k := string(e.Key)
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryBackend) Close() error {
	m.cache.Clear()
	return nil
}
