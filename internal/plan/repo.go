package plan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/2beens/fitquest/internal/cache"

	log "github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("plan not found")

// Repo stores one plan per profile and calendar date.
type Repo struct {
	store *cache.Store
}

func NewRepo(store *cache.Store) *Repo {
	return &Repo{
		store: store,
	}
}

func (r *Repo) Now() time.Time {
	return r.store.Now()
}

// Save stores the plan under its date and drops that profile's plans older
// than the retention window.
func (r *Repo) Save(ctx context.Context, plan *WorkoutPlan) error {
	date, err := time.Parse(cache.DateLayout, plan.Date)
	if err != nil {
		return fmt.Errorf("plan date %q: %w", plan.Date, err)
	}

	if err := r.store.Set(ctx, cache.PlanKey(plan.ProfileID, date), plan); err != nil {
		return err
	}

	if removed, err := r.store.PruneDated(ctx, cache.PlanPrefix(plan.ProfileID)); err != nil {
		log.Warnf("plan: prune old plans for %s: %s", plan.ProfileID, err)
	} else if removed > 0 {
		log.Debugf("plan: pruned %d old plans for %s", removed, plan.ProfileID)
	}

	return nil
}

func (r *Repo) Get(ctx context.Context, profileID string, date time.Time) (*WorkoutPlan, error) {
	var plan WorkoutPlan
	if err := r.store.Get(ctx, cache.PlanKey(profileID, date), &plan); err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *Repo) Delete(ctx context.Context, profileID string, date time.Time) error {
	return r.store.Delete(ctx, cache.PlanKey(profileID, date))
}

// ListForProfile returns the stored plans of a profile, newest first.
func (r *Repo) ListForProfile(ctx context.Context, profileID string) ([]*WorkoutPlan, error) {
	keys, err := r.store.Keys(ctx, cache.PlanPrefix(profileID))
	if err != nil {
		return nil, fmt.Errorf("list plan keys: %w", err)
	}

	plans := make([]*WorkoutPlan, 0, len(keys))
	for _, k := range keys {
		var plan WorkoutPlan
		if err := r.store.Get(ctx, k, &plan); err != nil {
			if errors.Is(err, cache.ErrNotFound) {
				continue
			}
			return nil, err
		}
		plans = append(plans, &plan)
	}

	sort.Slice(plans, func(i, j int) bool {
		return plans[i].Date > plans[j].Date
	})

	return plans, nil
}

func (r *Repo) DeleteAllForProfile(ctx context.Context, profileID string) (int, error) {
	return r.store.DeletePrefix(ctx, cache.PlanPrefix(profileID))
}
