package plan

import (
	"time"

	"github.com/2beens/fitquest/internal/catalog"
	"github.com/2beens/fitquest/internal/equipment"
)

type Feedback string

const (
	FeedbackTooEasy   Feedback = "too_easy"
	FeedbackJustRight Feedback = "just_right"
	FeedbackTooHard   Feedback = "too_hard"
)

func (f Feedback) Valid() bool {
	switch f {
	case FeedbackTooEasy, FeedbackJustRight, FeedbackTooHard:
		return true
	}
	return false
}

type EffortKind string

const (
	EffortReps EffortKind = "reps"
	EffortTime EffortKind = "time"
)

// Effort is either a rep count or a hold/work duration, never both.
type Effort struct {
	Kind    EffortKind `json:"kind"`
	Reps    int        `json:"reps,omitempty"`
	Seconds int        `json:"seconds,omitempty"`
}

func RepEffort(reps int) Effort {
	return Effort{Kind: EffortReps, Reps: reps}
}

func TimedEffort(seconds int) Effort {
	return Effort{Kind: EffortTime, Seconds: seconds}
}

// WorkSeconds is the time one set takes, excluding rest.
func (e Effort) WorkSeconds() int {
	if e.Kind == EffortTime {
		return e.Seconds
	}
	return e.Reps * SecondsPerRep
}

type CompletedSet struct {
	Reps        int       `json:"reps,omitempty"`
	Seconds     int       `json:"seconds,omitempty"`
	CompletedAt time.Time `json:"completedAt"`
}

type WorkoutExercise struct {
	catalog.ExerciseRecord
	Sets          int            `json:"sets"`
	Effort        Effort         `json:"effort"`
	RestSeconds   int            `json:"restSeconds"`
	CompletedSets []CompletedSet `json:"completedSets"`
}

func (e *WorkoutExercise) Done() bool {
	return len(e.CompletedSets) >= e.Sets
}

type WorkoutPlan struct {
	ID                       string                `json:"id"`
	ProfileID                string                `json:"profileId"`
	GeneratedAt              time.Time             `json:"generatedAt"`
	Date                     string                `json:"date"`
	DifficultyTier           int                   `json:"difficulty"`
	Environment              equipment.Environment `json:"environment"`
	Accessories              []string              `json:"accessories"`
	Exercises                []WorkoutExercise     `json:"exercises"`
	EstimatedDurationMinutes int                   `json:"estimatedDurationMinutes"`
	Completed                bool                  `json:"completed"`
	CompletedAt              *time.Time            `json:"completedAt,omitempty"`
	Feedback                 *Feedback             `json:"feedback"`
}

// SessionOverride replaces the profile's default environment for one session.
type SessionOverride struct {
	Environment equipment.Environment `json:"environment"`
	Accessories []string              `json:"accessories"`
}
