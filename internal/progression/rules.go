package progression

import (
	"math"
	"time"

	"github.com/2beens/fitquest/internal/cache"
	"github.com/2beens/fitquest/internal/plan"
	"github.com/2beens/fitquest/pkg"
)

const (
	baseXP              = 50
	xpPerExercise       = 5
	xpPerTier           = 10
	justRightBonusXP    = 10
	streakBonusPerDay   = 0.05
	maxStreakMultiplier = 2.0
	feedbackStep        = 0.5
)

// UpdateStreak advances the streak for a workout completed on date.
// Another workout the same day changes nothing, the next day extends the
// streak, and any other gap restarts it at 1.
func UpdateStreak(s *State, date time.Time) {
	gap := -1
	if last, err := time.Parse(cache.DateLayout, s.LastWorkoutDate); err == nil {
		gap = pkg.DaysBetween(last, date)
	}

	switch gap {
	case 0:
	case 1:
		s.StreakDays++
	default:
		s.StreakDays = 1
	}

	s.LongestStreakDays = max(s.LongestStreakDays, s.StreakDays)
	s.LastWorkoutDate = pkg.CalendarDate(date).Format(cache.DateLayout)
}

func StreakMultiplier(streakDays int) float64 {
	return math.Min(1+streakBonusPerDay*float64(streakDays), maxStreakMultiplier)
}

// CalcXP returns the experience for a completed workout.
func CalcXP(exerciseCount, difficultyTier int, feedback *plan.Feedback, streakDays int) int {
	if difficultyTier <= 0 {
		difficultyTier = int(plan.DefaultDifficultyModifier)
	}
	xp := baseXP + xpPerExercise*exerciseCount + xpPerTier*difficultyTier
	if feedback != nil && *feedback == plan.FeedbackJustRight {
		xp += justRightBonusXP
	}
	return int(math.Round(float64(xp) * StreakMultiplier(streakDays)))
}

// AdjustDifficulty moves the modifier half a step per feedback, within [1,5].
func AdjustDifficulty(modifier float64, feedback plan.Feedback) float64 {
	if modifier <= 0 {
		modifier = plan.DefaultDifficultyModifier
	}
	switch feedback {
	case plan.FeedbackTooEasy:
		modifier += feedbackStep
	case plan.FeedbackTooHard:
		modifier -= feedbackStep
	}
	return math.Max(plan.MinDifficulty, math.Min(plan.MaxDifficulty, modifier))
}
