package profile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/2beens/fitquest/internal/cache"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const MaxProfiles = 6

var (
	ErrNotFound     = errors.New("profile not found")
	ErrLimitReached = fmt.Errorf("profile limit of %d reached", MaxProfiles)
	ErrNoActive     = errors.New("no active profile")
)

// Repo keeps profiles and the active profile pointer in the cache store.
type Repo struct {
	store *cache.Store
	// serializes create and delete, which check the profile count
	mu sync.Mutex
}

func NewRepo(store *cache.Store) *Repo {
	return &Repo{
		store: store,
	}
}

// Create stores a new profile, which also becomes the active one when
// no profile is active yet.
func (r *Repo) Create(ctx context.Context, p Profile) (*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) >= MaxProfiles {
		return nil, ErrLimitReached
	}

	p.ApplyDefaults()
	p.ID = uuid.NewString()
	now := r.store.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := r.store.Set(ctx, cache.ProfileKey(p.ID), p); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	if _, err := r.ActiveID(ctx); errors.Is(err, ErrNoActive) {
		if err := r.SetActive(ctx, p.ID); err != nil {
			log.Errorf("profile: set first profile %s active: %s", p.ID, err)
		}
	}

	return &p, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Profile, error) {
	var p Profile
	if err := r.store.Get(ctx, cache.ProfileKey(id), &p); err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns all profiles, oldest first.
func (r *Repo) List(ctx context.Context) ([]Profile, error) {
	keys, err := r.store.Keys(ctx, cache.ProfilesPrefix())
	if err != nil {
		return nil, fmt.Errorf("list profile keys: %w", err)
	}

	profiles := make([]Profile, 0, len(keys))
	for _, k := range keys {
		var p Profile
		if err := r.store.Get(ctx, k, &p); err != nil {
			if errors.Is(err, cache.ErrNotFound) {
				continue
			}
			return nil, err
		}
		profiles = append(profiles, p)
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
	})

	return profiles, nil
}

// Update replaces the editable fields of an existing profile.
func (r *Repo) Update(ctx context.Context, p Profile) (*Profile, error) {
	current, err := r.Get(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	p.ApplyDefaults()
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = r.store.Now()

	if err := r.store.Set(ctx, cache.ProfileKey(p.ID), p); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	return &p, nil
}

// Delete removes the profile together with its plans and progression.
// If it was active, the oldest remaining profile becomes active.
func (r *Repo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.Get(ctx, id); err != nil {
		return err
	}

	var errs error
	if err := r.store.Delete(ctx, cache.ProfileKey(id)); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if _, err := r.store.DeletePrefix(ctx, cache.PlanPrefix(id)); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("delete plans: %w", err))
	}
	if err := r.store.Delete(ctx, cache.ProgressionKey(id)); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("delete progression: %w", err))
	}

	activeID, err := r.ActiveID(ctx)
	if err != nil && !errors.Is(err, ErrNoActive) {
		return multierr.Append(errs, err)
	}
	if activeID != id {
		return errs
	}

	remaining, err := r.List(ctx)
	if err != nil {
		return multierr.Append(errs, err)
	}
	if len(remaining) == 0 {
		return multierr.Append(errs, r.store.Delete(ctx, cache.ActiveProfileKey()))
	}

	return multierr.Append(errs, r.SetActive(ctx, remaining[0].ID))
}

func (r *Repo) SetActive(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	if err := r.store.Set(ctx, cache.ActiveProfileKey(), id); err != nil {
		return fmt.Errorf("save active profile: %w", err)
	}
	return nil
}

func (r *Repo) ActiveID(ctx context.Context) (string, error) {
	var id string
	if err := r.store.Get(ctx, cache.ActiveProfileKey(), &id); err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return "", ErrNoActive
		}
		return "", err
	}
	if id == "" {
		return "", ErrNoActive
	}
	return id, nil
}

func (r *Repo) Active(ctx context.Context) (*Profile, error) {
	id, err := r.ActiveID(ctx)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}
