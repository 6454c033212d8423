package plan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fitquest/internal/cache"
	"github.com/2beens/fitquest/internal/catalog"
	"github.com/2beens/fitquest/internal/equipment"
	"github.com/2beens/fitquest/internal/profile"
	"github.com/2beens/fitquest/internal/telemetry/metrics"
	"github.com/2beens/fitquest/internal/telemetry/tracing"
	"github.com/2beens/fitquest/pkg"
	"github.com/2beens/fitquest/pkg/seeded"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TriggerInitial    = "initial"
	TriggerOverride   = "override"
	TriggerRegenerate = "regenerate"
)

//go:generate mockgen -source=$GOFILE -destination=generator_mocks_test.go -package=plan_test
type exerciseSource interface {
	GetExercises(ctx context.Context, environment equipment.Environment, categoryKey string, equipmentIDs []int) []catalog.ExerciseRecord
}

// Generator assembles daily plans from exercise pools. Two calls with the
// same profile, date, difficulty and pool contents select the same exercises
// in the same order.
type Generator struct {
	source         exerciseSource
	repo           *Repo
	metricsManager *metrics.Manager
}

type GeneratorParams struct {
	Source         exerciseSource
	Repo           *Repo
	MetricsManager *metrics.Manager
}

func NewGenerator(params GeneratorParams) *Generator {
	return &Generator{
		source:         params.Source,
		repo:           params.Repo,
		metricsManager: params.MetricsManager,
	}
}

type Request struct {
	Profile            *profile.Profile
	DifficultyModifier float64
	// calendar date of the plan, see pkg.CalendarDate
	Date     time.Time
	Override *SessionOverride
}

// Today is the current calendar date in the store's location.
func (g *Generator) Today() time.Time {
	return pkg.CalendarDate(g.repo.Now())
}

// TodayPlan returns the stored plan for today, creating it when missing.
// A session override always builds and stores a fresh plan.
func (g *Generator) TodayPlan(
	ctx context.Context,
	p *profile.Profile,
	difficultyModifier float64,
	override *SessionOverride,
) (*WorkoutPlan, error) {
	req := Request{
		Profile:            p,
		DifficultyModifier: difficultyModifier,
		Date:               g.Today(),
		Override:           override,
	}

	if override != nil {
		return g.generateAndSave(ctx, req, TriggerOverride)
	}

	existing, err := g.repo.Get(ctx, p.ID, req.Date)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, ErrNotFound):
		// unreadable state is rebuilt rather than surfaced
		log.Warnf("plan: load today's plan for %s: %s", p.ID, err)
	}

	return g.generateAndSave(ctx, req, TriggerInitial)
}

// Regenerate drops today's plan and builds a new one.
func (g *Generator) Regenerate(
	ctx context.Context,
	p *profile.Profile,
	difficultyModifier float64,
	override *SessionOverride,
) (*WorkoutPlan, error) {
	today := g.Today()
	if err := g.repo.Delete(ctx, p.ID, today); err != nil {
		log.Warnf("plan: drop today's plan for %s: %s", p.ID, err)
	}

	return g.generateAndSave(ctx, Request{
		Profile:            p,
		DifficultyModifier: difficultyModifier,
		Date:               today,
		Override:           override,
	}, TriggerRegenerate)
}

// GeneratePlan builds a plan for req and stores it, replacing any plan
// already stored for that date.
func (g *Generator) GeneratePlan(ctx context.Context, req Request) (*WorkoutPlan, error) {
	trigger := TriggerInitial
	if req.Override != nil {
		trigger = TriggerOverride
	}
	return g.generateAndSave(ctx, req, trigger)
}

func (g *Generator) generateAndSave(ctx context.Context, req Request, trigger string) (_ *WorkoutPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "plan.generate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("profile.id", req.Profile.ID),
		attribute.String("trigger", trigger),
	)

	plan := g.Build(ctx, req)
	if err := g.repo.Save(ctx, plan); err != nil {
		return nil, fmt.Errorf("save plan: %w", err)
	}

	if g.metricsManager != nil {
		g.metricsManager.CounterPlansGenerated.WithLabelValues(trigger).Inc()
	}
	log.Debugf("plan: %s generated for %s on %s with %d exercises", plan.ID, plan.ProfileID, plan.Date, len(plan.Exercises))

	return plan, nil
}

// Build assembles a plan without storing it.
func (g *Generator) Build(ctx context.Context, req Request) *WorkoutPlan {
	p := req.Profile
	date := pkg.CalendarDate(req.Date)
	dateStr := date.Format(cache.DateLayout)

	environment := p.DefaultEnvironment
	accessories := []string{}
	if req.Override != nil {
		if req.Override.Environment != "" {
			environment = req.Override.Environment
		}
		if req.Override.Accessories != nil {
			accessories = append(accessories, req.Override.Accessories...)
		}
	}
	if !equipment.IsKnown(environment) {
		environment = equipment.HomeNoEquipment
	}
	equipmentIDs := equipment.Resolve(environment, accessories).IDs()

	rotation := RotationFor(date)
	count := ExerciseCount(p.FitnessLevel)
	tier := TierFromModifier(req.DifficultyModifier)
	preset := PresetForTier(tier)

	exercises := make([]WorkoutExercise, 0, count)
	for _, categoryKey := range rotation {
		if len(exercises) >= count {
			break
		}

		pool := g.source.GetExercises(ctx, environment, categoryKey, equipmentIDs)
		if p.IsMinor() {
			pool = withoutHighImpact(pool)
		}

		seq := seeded.FromString(dateStr + p.ID + categoryKey)
		shuffled := seeded.Shuffle(seq, pool)

		remaining := count - len(exercises)
		share := (remaining+len(rotation)-1)/len(rotation) + 1
		for _, rec := range shuffled[:min(share, len(shuffled))] {
			if len(exercises) >= count {
				break
			}
			exercises = append(exercises, prescribe(rec, preset))
		}
	}

	return &WorkoutPlan{
		ID:                       uuid.NewString(),
		ProfileID:                p.ID,
		GeneratedAt:              g.repo.Now(),
		Date:                     dateStr,
		DifficultyTier:           tier,
		Environment:              environment,
		Accessories:              accessories,
		Exercises:                exercises,
		EstimatedDurationMinutes: EstimateDurationMinutes(exercises),
	}
}

func prescribe(rec catalog.ExerciseRecord, preset Preset) WorkoutExercise {
	effort := RepEffort(preset.Reps)
	if rec.Timed() {
		effort = TimedEffort(rec.DurationSeconds)
	}
	return WorkoutExercise{
		ExerciseRecord: rec,
		Sets:           preset.Sets,
		Effort:         effort,
		RestSeconds:    preset.RestSeconds,
		CompletedSets:  []CompletedSet{},
	}
}

// withoutHighImpact keeps network records, which carry no impact rating,
// and fallback records not flagged high impact.
func withoutHighImpact(pool []catalog.ExerciseRecord) []catalog.ExerciseRecord {
	filtered := make([]catalog.ExerciseRecord, 0, len(pool))
	for _, rec := range pool {
		if rec.Source == catalog.ProvenanceNetwork || !rec.HighImpact {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}
