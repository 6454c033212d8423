package plan

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrPlanCompleted    = errors.New("plan already completed")
	ErrExerciseNotFound = errors.New("exercise not in plan")
	ErrAllSetsDone      = errors.New("all sets of the exercise are done")
)

// MarkSetCompleted records one finished set of the exercise at index.
func MarkSetCompleted(plan *WorkoutPlan, index int, set CompletedSet) error {
	if plan.Completed {
		return ErrPlanCompleted
	}
	if index < 0 || index >= len(plan.Exercises) {
		return fmt.Errorf("%w: index %d", ErrExerciseNotFound, index)
	}

	ex := &plan.Exercises[index]
	if ex.Done() {
		return ErrAllSetsDone
	}

	if set.Reps == 0 && set.Seconds == 0 {
		switch ex.Effort.Kind {
		case EffortTime:
			set.Seconds = ex.Effort.Seconds
		default:
			set.Reps = ex.Effort.Reps
		}
	}
	ex.CompletedSets = append(ex.CompletedSets, set)

	return nil
}

// MarkCompleted closes the plan. Feedback may be nil.
func MarkCompleted(plan *WorkoutPlan, feedback *Feedback, at time.Time) error {
	if plan.Completed {
		return ErrPlanCompleted
	}
	if feedback != nil && !feedback.Valid() {
		return fmt.Errorf("unknown feedback: %s", *feedback)
	}

	plan.Completed = true
	plan.CompletedAt = &at
	plan.Feedback = feedback

	return nil
}

// CompletedSetCount counts finished sets across all exercises.
func (p *WorkoutPlan) CompletedSetCount() int {
	n := 0
	for _, ex := range p.Exercises {
		n += len(ex.CompletedSets)
	}
	return n
}
