// Package workout ties profiles, daily plans and progression together and
// exposes them over HTTP.
package workout

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fitquest/internal/plan"
	"github.com/2beens/fitquest/internal/profile"
	"github.com/2beens/fitquest/internal/progression"
	"github.com/2beens/fitquest/internal/telemetry/tracing"
	"github.com/2beens/fitquest/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var ErrNoPlanToday = errors.New("no plan for today")

type Completion struct {
	Plan   *plan.WorkoutPlan   `json:"plan"`
	Result *progression.Result `json:"result"`
}

type Service struct {
	profiles  *profile.Repo
	plans     *plan.Repo
	generator *plan.Generator
	engine    *progression.Engine
	// serializes plan mutations per profile
	locks pkg.KeyedMutex
}

type ServiceParams struct {
	Profiles  *profile.Repo
	Plans     *plan.Repo
	Generator *plan.Generator
	Engine    *progression.Engine
}

func NewService(params ServiceParams) *Service {
	return &Service{
		profiles:  params.Profiles,
		plans:     params.Plans,
		generator: params.Generator,
		engine:    params.Engine,
	}
}

func (s *Service) CreateProfile(ctx context.Context, p profile.Profile) (*profile.Profile, error) {
	return s.profiles.Create(ctx, p)
}

func (s *Service) Profile(ctx context.Context, profileID string) (*profile.Profile, error) {
	return s.profiles.Get(ctx, profileID)
}

func (s *Service) Profiles(ctx context.Context) ([]profile.Profile, error) {
	return s.profiles.List(ctx)
}

func (s *Service) UpdateProfile(ctx context.Context, p profile.Profile) (*profile.Profile, error) {
	return s.profiles.Update(ctx, p)
}

func (s *Service) DeleteProfile(ctx context.Context, profileID string) error {
	unlock := s.locks.Lock(profileID)
	defer unlock()
	return s.profiles.Delete(ctx, profileID)
}

func (s *Service) SetActiveProfile(ctx context.Context, profileID string) error {
	return s.profiles.SetActive(ctx, profileID)
}

func (s *Service) ActiveProfile(ctx context.Context) (*profile.Profile, error) {
	return s.profiles.Active(ctx)
}

// TodayPlan returns today's plan for the profile, generating it at the
// profile's current difficulty when needed.
func (s *Service) TodayPlan(ctx context.Context, profileID string, override *plan.SessionOverride) (_ *plan.WorkoutPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workout.todayPlan")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("profile.id", profileID),
		attribute.Bool("override", override != nil),
	)

	p, modifier, err := s.profileAndDifficulty(ctx, profileID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(profileID)
	defer unlock()
	return s.generator.TodayPlan(ctx, p, modifier, override)
}

// RegeneratePlan replaces today's plan with a freshly generated one.
func (s *Service) RegeneratePlan(ctx context.Context, profileID string, override *plan.SessionOverride) (_ *plan.WorkoutPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workout.regeneratePlan")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("profile.id", profileID))

	p, modifier, err := s.profileAndDifficulty(ctx, profileID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(profileID)
	defer unlock()
	return s.generator.Regenerate(ctx, p, modifier, override)
}

// LogSet records a finished set on today's plan.
func (s *Service) LogSet(ctx context.Context, profileID string, exerciseIndex int, set plan.CompletedSet) (*plan.WorkoutPlan, error) {
	if _, err := s.profiles.Get(ctx, profileID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(profileID)
	defer unlock()

	today, err := s.todayPlan(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if set.CompletedAt.IsZero() {
		set.CompletedAt = s.plans.Now()
	}
	if err := plan.MarkSetCompleted(today, exerciseIndex, set); err != nil {
		return nil, err
	}
	if err := s.plans.Save(ctx, today); err != nil {
		return nil, err
	}

	return today, nil
}

// CompleteWorkout closes today's plan with optional feedback and awards
// progression for it.
func (s *Service) CompleteWorkout(ctx context.Context, profileID string, feedback *plan.Feedback) (_ *Completion, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workout.complete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("profile.id", profileID))

	if _, err := s.profiles.Get(ctx, profileID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(profileID)
	defer unlock()

	today, err := s.todayPlan(ctx, profileID)
	if err != nil {
		return nil, err
	}

	now := s.plans.Now()
	if err := plan.MarkCompleted(today, feedback, now); err != nil {
		return nil, err
	}
	if err := s.plans.Save(ctx, today); err != nil {
		return nil, err
	}

	result, err := s.engine.CompleteWorkoutAt(ctx, profileID, today, feedback, now)
	if err != nil {
		// reopen the plan so the completion can be retried
		today.Completed = false
		today.CompletedAt = nil
		today.Feedback = nil
		if saveErr := s.plans.Save(ctx, today); saveErr != nil {
			log.Errorf("workout: reopen plan %s after failed completion: %s", today.ID, saveErr)
		}
		return nil, err
	}

	return &Completion{
		Plan:   today,
		Result: result,
	}, nil
}

func (s *Service) ApplyFeedback(ctx context.Context, profileID string, feedback plan.Feedback) (*progression.State, error) {
	if _, err := s.profiles.Get(ctx, profileID); err != nil {
		return nil, err
	}
	return s.engine.ApplyFeedback(ctx, profileID, feedback)
}

func (s *Service) Progression(ctx context.Context, profileID string) (*progression.State, error) {
	if _, err := s.profiles.Get(ctx, profileID); err != nil {
		return nil, err
	}
	return s.engine.GetOrInit(ctx, profileID)
}

// Plans lists the stored plans of the profile, newest first.
func (s *Service) Plans(ctx context.Context, profileID string) ([]*plan.WorkoutPlan, error) {
	if _, err := s.profiles.Get(ctx, profileID); err != nil {
		return nil, err
	}
	return s.plans.ListForProfile(ctx, profileID)
}

func (s *Service) profileAndDifficulty(ctx context.Context, profileID string) (*profile.Profile, float64, error) {
	p, err := s.profiles.Get(ctx, profileID)
	if err != nil {
		return nil, 0, err
	}
	state, err := s.engine.GetOrInit(ctx, profileID)
	if err != nil {
		return nil, 0, fmt.Errorf("load progression: %w", err)
	}
	return p, state.DifficultyModifier, nil
}

func (s *Service) todayPlan(ctx context.Context, profileID string) (*plan.WorkoutPlan, error) {
	today, err := s.plans.Get(ctx, profileID, s.generator.Today())
	if errors.Is(err, plan.ErrNotFound) {
		return nil, ErrNoPlanToday
	}
	return today, err
}
