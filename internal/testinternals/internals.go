package testinternals

import (
	"sync"
	"time"

	"github.com/2beens/fitquest/internal/cache"
	"github.com/2beens/fitquest/internal/telemetry/metrics"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
)

// Clock is a settable clock shared by the store and the code under test.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type Internals struct {
	Clock          *Clock
	Backend        *cache.MapBackend
	Store          *cache.Store
	MetricsManager *metrics.Manager

	// redis
	RedisClient *redis.Client
	RedisMock   redismock.ClientMock
}

// DefaultStart is a monday morning in UTC.
var DefaultStart = time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)

func NewTestingInternals() *Internals {
	return NewTestingInternalsAt(DefaultStart, time.UTC)
}

func NewTestingInternalsAt(start time.Time, location *time.Location) *Internals {
	clock := NewClock(start)
	backend := cache.NewMapBackend(0)
	metricsManager := metrics.NewTestManager()
	store := cache.NewStore(cache.StoreParams{
		Backend:        backend,
		Location:       location,
		Now:            clock.Now,
		MetricsManager: metricsManager,
	})

	return &Internals{
		Clock:          clock,
		Backend:        backend,
		Store:          store,
		MetricsManager: metricsManager,
	}
}

// WithRedisMock sets up a mocked redis client. Its pool reaper keeps running,
// so callers ignore it in goleak.
func (i *Internals) WithRedisMock() *Internals {
	i.RedisClient, i.RedisMock = redismock.NewClientMock()
	return i
}
