package progression

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fitquest/internal/cache"
	"github.com/2beens/fitquest/internal/events"
	"github.com/2beens/fitquest/internal/plan"
	"github.com/2beens/fitquest/internal/telemetry/metrics"
	"github.com/2beens/fitquest/internal/telemetry/tracing"
	"github.com/2beens/fitquest/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=engine_mocks_test.go -package=progression_test
type completionPublisher interface {
	PublishWorkoutCompleted(ctx context.Context, event events.WorkoutCompleted) error
}

type Result struct {
	Progression *State       `json:"progression"`
	NewBadges   []BadgeState `json:"newBadges"`
	XPEarned    int          `json:"xpEarned"`
	LeveledUp   bool         `json:"leveledUp"`
	NewLevel    int          `json:"newLevel"`
}

// Engine owns progression state. All read-modify-write cycles for one
// profile run under that profile's lock.
type Engine struct {
	store          *cache.Store
	publisher      completionPublisher
	historyLimit   int
	metricsManager *metrics.Manager
	locks          pkg.KeyedMutex
}

type EngineParams struct {
	Store          *cache.Store
	Publisher      completionPublisher
	HistoryLimit   int
	MetricsManager *metrics.Manager
}

func NewEngine(params EngineParams) *Engine {
	e := &Engine{
		store:          params.Store,
		publisher:      params.Publisher,
		historyLimit:   params.HistoryLimit,
		metricsManager: params.MetricsManager,
	}
	if e.historyLimit <= 0 {
		e.historyLimit = DefaultHistoryLimit
	}
	return e
}

func (e *Engine) GetOrInit(ctx context.Context, profileID string) (*State, error) {
	unlock := e.locks.Lock(profileID)
	defer unlock()
	return e.loadOrInit(ctx, profileID)
}

func (e *Engine) loadOrInit(ctx context.Context, profileID string) (*State, error) {
	var s State
	err := e.store.Get(ctx, cache.ProgressionKey(profileID), &s)
	switch {
	case err == nil:
		if s.migrate() {
			log.Debugf("progression: migrated stored state of %s", profileID)
		}
		s.ProfileID = profileID
		return &s, nil
	case !errors.Is(err, cache.ErrNotFound):
		return nil, fmt.Errorf("load progression: %w", err)
	}

	fresh := NewState(profileID)
	if err := e.save(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

func (e *Engine) save(ctx context.Context, s *State) error {
	if err := e.store.Set(ctx, cache.ProgressionKey(s.ProfileID), s); err != nil {
		return fmt.Errorf("save progression: %w", err)
	}
	return nil
}

// CompleteWorkout records a completed plan at the current time.
func (e *Engine) CompleteWorkout(ctx context.Context, profileID string, p *plan.WorkoutPlan, feedback *plan.Feedback) (*Result, error) {
	return e.CompleteWorkoutAt(ctx, profileID, p, feedback, e.store.Now())
}

// CompleteWorkoutAt updates streak, XP, history, difficulty and badges for a
// plan completed at the given time, then stores the new state.
func (e *Engine) CompleteWorkoutAt(
	ctx context.Context,
	profileID string,
	p *plan.WorkoutPlan,
	feedback *plan.Feedback,
	at time.Time,
) (_ *Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "progression.completeWorkout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("profile.id", profileID))

	if feedback != nil && !feedback.Valid() {
		return nil, fmt.Errorf("unknown feedback: %s", *feedback)
	}

	unlock := e.locks.Lock(profileID)
	defer unlock()

	s, err := e.loadOrInit(ctx, profileID)
	if err != nil {
		return nil, err
	}

	at = at.In(e.store.Location())
	prevLevel := s.Level()

	UpdateStreak(s, at)

	xpEarned := CalcXP(len(p.Exercises), p.DifficultyTier, feedback, s.StreakDays)
	s.XP += xpEarned

	s.appendHistory(HistoryEntry{
		Date:           pkg.CalendarDate(at).Format(cache.DateLayout),
		PlanID:         p.ID,
		XPEarned:       xpEarned,
		Completed:      true,
		Feedback:       feedback,
		Environment:    p.Environment,
		DifficultyTier: p.DifficultyTier,
	}, e.historyLimit)

	if feedback != nil {
		s.DifficultyModifier = AdjustDifficulty(s.DifficultyModifier, *feedback)
	}

	newBadges := EvaluateBadges(s, EvalContext{CompletedAt: at}, at)

	if err := e.save(ctx, s); err != nil {
		return nil, err
	}

	newLevel := s.Level()
	result := &Result{
		Progression: s,
		NewBadges:   newBadges,
		XPEarned:    xpEarned,
		LeveledUp:   newLevel > prevLevel,
		NewLevel:    newLevel,
	}
	if result.NewBadges == nil {
		result.NewBadges = []BadgeState{}
	}

	e.record(result)
	e.publish(ctx, p, feedback, at, result)

	span.SetAttributes(
		attribute.Int("xp.earned", xpEarned),
		attribute.Int("streak", s.StreakDays),
	)
	log.Debugf("progression: %s earned %d xp, streak %d, level %d", profileID, xpEarned, s.StreakDays, newLevel)

	return result, nil
}

// ApplyFeedback adjusts the difficulty modifier without completing a workout.
func (e *Engine) ApplyFeedback(ctx context.Context, profileID string, feedback plan.Feedback) (*State, error) {
	if !feedback.Valid() {
		return nil, fmt.Errorf("unknown feedback: %s", feedback)
	}

	unlock := e.locks.Lock(profileID)
	defer unlock()

	s, err := e.loadOrInit(ctx, profileID)
	if err != nil {
		return nil, err
	}

	s.DifficultyModifier = AdjustDifficulty(s.DifficultyModifier, feedback)
	if err := e.save(ctx, s); err != nil {
		return nil, err
	}

	return s, nil
}

func (e *Engine) record(result *Result) {
	if e.metricsManager == nil {
		return
	}
	e.metricsManager.CounterWorkoutsCompleted.Inc()
	e.metricsManager.HistogramXPEarned.Observe(float64(result.XPEarned))
	for _, b := range result.NewBadges {
		e.metricsManager.CounterBadgesUnlocked.WithLabelValues(b.ID).Inc()
	}
}

// publish never fails the completion, the state is already stored.
func (e *Engine) publish(ctx context.Context, p *plan.WorkoutPlan, feedback *plan.Feedback, at time.Time, result *Result) {
	if e.publisher == nil {
		return
	}

	badgeIDs := make([]string, 0, len(result.NewBadges))
	for _, b := range result.NewBadges {
		badgeIDs = append(badgeIDs, b.ID)
	}
	event := events.WorkoutCompleted{
		ProfileID:      result.Progression.ProfileID,
		PlanID:         p.ID,
		Date:           pkg.CalendarDate(at).Format(cache.DateLayout),
		CompletedAt:    at,
		Environment:    string(p.Environment),
		DifficultyTier: p.DifficultyTier,
		XPEarned:       result.XPEarned,
		TotalXP:        result.Progression.XP,
		Level:          result.NewLevel,
		LeveledUp:      result.LeveledUp,
		StreakDays:     result.Progression.StreakDays,
		NewBadges:      badgeIDs,
	}
	if feedback != nil {
		event.Feedback = string(*feedback)
	}

	if err := e.publisher.PublishWorkoutCompleted(ctx, event); err != nil {
		log.Errorf("progression: publish completion of %s: %s", p.ID, err)
	}
}
