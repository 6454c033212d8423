package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fitquest/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const (
	DefaultRetention = 30 * 24 * time.Hour
	// backends drop entries a while after the store considers them expired,
	// so the store clock stays the only authority on expiry
	backendTTLSlack = time.Hour
)

type entry struct {
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetchedAt"`
	TTL       time.Duration   `json:"ttl,omitempty"`
}

func (e *entry) expired(now time.Time) bool {
	if e.TTL <= 0 {
		return false
	}
	return now.Sub(e.FetchedAt) > e.TTL
}

// Store keeps JSON values in a Backend. Values written with a TTL read as
// absent once more than TTL has passed since they were written.
type Store struct {
	backend        Backend
	retention      time.Duration
	location       *time.Location
	now            func() time.Time
	metricsManager *metrics.Manager
}

type StoreParams struct {
	Backend        Backend
	Retention      time.Duration
	Location       *time.Location
	Now            func() time.Time
	MetricsManager *metrics.Manager
}

func NewStore(params StoreParams) *Store {
	s := &Store{
		backend:        params.Backend,
		retention:      params.Retention,
		location:       params.Location,
		now:            params.Now,
		metricsManager: params.MetricsManager,
	}
	if s.retention <= 0 {
		s.retention = DefaultRetention
	}
	if s.location == nil {
		s.location = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Now returns the store clock in the configured location.
func (s *Store) Now() time.Time {
	return s.now().In(s.location)
}

func (s *Store) Location() *time.Location {
	return s.location
}

// Get decodes the value under key into v. A missing, expired or unreadable
// entry yields ErrNotFound.
func (s *Store) Get(ctx context.Context, key string, v interface{}) error {
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %s: %w", ErrLoadFailed, key, err)
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		log.Warnf("cache: unreadable entry [%s]: %s", key, err)
		return ErrNotFound
	}

	if e.expired(s.now()) {
		log.Tracef("cache: entry [%s] expired, fetched at %s", key, e.FetchedAt)
		return ErrNotFound
	}

	if err := json.Unmarshal(e.Payload, v); err != nil {
		log.Warnf("cache: unreadable payload [%s]: %s", key, err)
		return ErrNotFound
	}

	return nil
}

func (s *Store) Set(ctx context.Context, key string, v interface{}) error {
	return s.SetWithTTL(ctx, key, v, 0)
}

func (s *Store) SetWithTTL(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal value for %s: %w", key, err)
	}

	raw, err := json.Marshal(entry{
		Payload:   payload,
		FetchedAt: s.now(),
		TTL:       ttl,
	})
	if err != nil {
		return fmt.Errorf("marshal entry for %s: %w", key, err)
	}

	return s.write(ctx, key, raw, ttl)
}

func (s *Store) write(ctx context.Context, key string, raw []byte, ttl time.Duration) error {
	var backendTTL time.Duration
	if ttl > 0 {
		backendTTL = ttl + backendTTLSlack
	}

	err := s.backend.Set(ctx, key, raw, backendTTL)
	if err == nil {
		return nil
	}

	if !errors.Is(err, ErrQuotaExceeded) {
		s.countWriteFailure("backend")
		log.Errorf("cache: write [%s]: %s", key, err)
		return fmt.Errorf("%w: %s: %w", ErrSaveFailed, key, err)
	}

	log.Warnf("cache: quota exceeded writing [%s], running emergency prune", key)
	if removed, pruneErr := s.Prune(ctx); pruneErr != nil {
		log.Warnf("cache: emergency prune removed %d entries with errors: %s", removed, pruneErr)
	}

	if err := s.backend.Set(ctx, key, raw, backendTTL); err != nil {
		s.countWriteFailure("quota")
		log.Errorf("cache: still cannot write [%s] after emergency prune: %s", key, err)
		return fmt.Errorf("%w: %s: %w", ErrSaveFailed, key, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.backend.Keys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: keys %s: %w", ErrLoadFailed, prefix, err)
	}
	return keys, nil
}

// DeletePrefix removes every key starting with prefix.
func (s *Store) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	keys, err := s.Keys(ctx, prefix)
	if err != nil {
		return 0, err
	}

	removed := 0
	var errs error
	for _, k := range keys {
		if err := s.Delete(ctx, k); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		removed++
	}
	return removed, errs
}

// Prune drops plans dated before the retention window for all profiles,
// and entries whose TTL has run out.
func (s *Store) Prune(ctx context.Context) (int, error) {
	removed, errs := s.PruneDated(ctx, AllPlansPrefix())

	expired, err := s.pruneExpired(ctx, ExercisesPrefix())
	removed += expired
	errs = multierr.Append(errs, err)

	if s.metricsManager != nil {
		s.metricsManager.CounterStorePrunes.Inc()
		s.metricsManager.CounterStorePrunedEntries.Add(float64(removed))
	}
	log.Debugf("cache: prune removed %d entries", removed)

	return removed, errs
}

// PruneDated drops dated plan keys under prefix older than the retention window.
func (s *Store) PruneDated(ctx context.Context, prefix string) (int, error) {
	keys, err := s.Keys(ctx, prefix)
	if err != nil {
		return 0, err
	}

	cutoff := s.RetentionCutoff()
	removed := 0
	var errs error
	for _, k := range keys {
		_, date, err := ParsePlanKey(k)
		if err != nil {
			log.Tracef("cache: prune skipping key [%s]: %s", k, err)
			continue
		}
		if !date.Before(cutoff) {
			continue
		}
		if err := s.Delete(ctx, k); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		removed++
	}

	return removed, errs
}

// RetentionCutoff is the oldest calendar date still retained.
func (s *Store) RetentionCutoff() time.Time {
	now := s.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -int(s.retention/(24*time.Hour)))
}

func (s *Store) pruneExpired(ctx context.Context, prefix string) (int, error) {
	keys, err := s.Keys(ctx, prefix)
	if err != nil {
		return 0, err
	}

	now := s.now()
	removed := 0
	var errs error
	for _, k := range keys {
		raw, err := s.backend.Get(ctx, k)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(raw, &e); err == nil && !e.expired(now) {
			continue
		}
		if err := s.Delete(ctx, k); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		removed++
	}

	return removed, errs
}

func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) countWriteFailure(reason string) {
	if s.metricsManager != nil {
		s.metricsManager.CounterStoreWriteFailures.WithLabelValues(reason).Inc()
	}
}
