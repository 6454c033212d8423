package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

var _ Backend = (*MapBackend)(nil)

// MapBackend is a plain map guarded by a mutex, handy in tests.
// When maxEntries is positive, writes of new keys beyond it fail with
// ErrQuotaExceeded.
type MapBackend struct {
	mutex      sync.Mutex
	entries    map[string][]byte
	maxEntries int
	// FailWrites forces every Set to fail with the given error.
	FailWrites error
}

func NewMapBackend(maxEntries int) *MapBackend {
	return &MapBackend{
		entries:    make(map[string][]byte),
		maxEntries: maxEntries,
	}
}

func (m *MapBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	val, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MapBackend) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.FailWrites != nil {
		return m.FailWrites
	}

	if _, exists := m.entries[key]; !exists && m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		return ErrQuotaExceeded
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries[key] = stored
	return nil
}

func (m *MapBackend) Delete(_ context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MapBackend) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var keys []string
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MapBackend) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.entries)
}

func (m *MapBackend) Close() error {
	return nil
}
