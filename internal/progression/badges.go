package progression

import (
	"time"

	"github.com/2beens/fitquest/internal/cache"
	"github.com/2beens/fitquest/internal/plan"
	"github.com/2beens/fitquest/pkg"
)

const (
	BadgeFirstWorkout = "first_workout"
	BadgeStreak3      = "streak_3"
	BadgeStreak7      = "streak_7"
	BadgeStreak30     = "streak_30"
	BadgeLevel5       = "level_5"
	BadgeLevel10      = "level_10"
	BadgePerfectWeek  = "perfect_week"
	BadgeEarlyBird    = "early_bird"
	BadgeIronWill     = "iron_will"
	BadgeExplorer     = "explorer"

	earlyBirdHour          = 8
	perfectWeekDays        = 7
	ironWillTooHardCount   = 3
	explorerEnvironmentMin = 3
)

// EvalContext describes the completion that triggered badge evaluation.
type EvalContext struct {
	// local time of the completion
	CompletedAt time.Time
}

type badgeDef struct {
	id          string
	name        string
	description string
	unlocked    func(s *State, ec EvalContext) bool
}

func (d badgeDef) initial() BadgeState {
	return BadgeState{
		ID:          d.id,
		Name:        d.name,
		Description: d.description,
	}
}

// catalog order is the order newly unlocked badges are reported in
var badgeCatalog = []badgeDef{
	{BadgeFirstWorkout, "First Step", "Complete your first workout", func(s *State, _ EvalContext) bool {
		return completedWorkouts(s) >= 1
	}},
	{BadgeStreak3, "On a Roll", "3 days in a row", func(s *State, _ EvalContext) bool {
		return s.StreakDays >= 3
	}},
	{BadgeStreak7, "Week Warrior", "7-day streak", func(s *State, _ EvalContext) bool {
		return s.StreakDays >= 7
	}},
	{BadgeStreak30, "Unstoppable", "30-day streak", func(s *State, _ EvalContext) bool {
		return s.StreakDays >= 30
	}},
	{BadgeLevel5, "Rising Star", "Reach Level 5", func(s *State, _ EvalContext) bool {
		return s.Level() >= 5
	}},
	{BadgeLevel10, "Fitness Pro", "Reach Level 10", func(s *State, _ EvalContext) bool {
		return s.Level() >= 10
	}},
	{BadgePerfectWeek, "Perfect Week", "7 workouts in 7 days", func(s *State, ec EvalContext) bool {
		return distinctWorkoutDays(s, ec.CompletedAt, perfectWeekDays) >= perfectWeekDays
	}},
	{BadgeEarlyBird, "Early Bird", "Work out before 8 AM", func(_ *State, ec EvalContext) bool {
		return !ec.CompletedAt.IsZero() && ec.CompletedAt.Hour() < earlyBirdHour
	}},
	{BadgeIronWill, "Iron Will", "Push through 3 \"Too Hard\" sessions", func(s *State, _ EvalContext) bool {
		return feedbackCount(s, plan.FeedbackTooHard) >= ironWillTooHardCount
	}},
	{BadgeExplorer, "Explorer", "Try 3 different environments", func(s *State, _ EvalContext) bool {
		return distinctEnvironments(s) >= explorerEnvironmentMin
	}},
}

func initBadges() []BadgeState {
	badges := make([]BadgeState, 0, len(badgeCatalog))
	for _, def := range badgeCatalog {
		badges = append(badges, def.initial())
	}
	return badges
}

// EvaluateBadges unlocks every locked badge whose rule now holds and returns
// those badges in catalog order. Unlocked badges are never evaluated again.
func EvaluateBadges(s *State, ec EvalContext, unlockedAt time.Time) []BadgeState {
	var newlyUnlocked []BadgeState
	for _, def := range badgeCatalog {
		idx := -1
		for i := range s.Badges {
			if s.Badges[i].ID == def.id {
				idx = i
				break
			}
		}
		if idx < 0 || s.Badges[idx].Unlocked {
			continue
		}
		if !def.unlocked(s, ec) {
			continue
		}

		at := unlockedAt
		s.Badges[idx].Unlocked = true
		s.Badges[idx].UnlockedAt = &at
		newlyUnlocked = append(newlyUnlocked, s.Badges[idx])
	}
	return newlyUnlocked
}

func completedWorkouts(s *State) int {
	n := 0
	for _, h := range s.History {
		if h.Completed {
			n++
		}
	}
	return n
}

// distinctWorkoutDays counts calendar days with a completed workout within
// the window of days ending on the day of now.
func distinctWorkoutDays(s *State, now time.Time, window int) int {
	today := pkg.CalendarDate(now)
	from := today.AddDate(0, 0, -(window - 1)).Format(cache.DateLayout)
	to := today.Format(cache.DateLayout)
	days := make(map[string]struct{})
	for _, h := range s.History {
		if h.Completed && h.Date >= from && h.Date <= to {
			days[h.Date] = struct{}{}
		}
	}
	return len(days)
}

func feedbackCount(s *State, feedback plan.Feedback) int {
	n := 0
	for _, h := range s.History {
		if h.Feedback != nil && *h.Feedback == feedback {
			n++
		}
	}
	return n
}

func distinctEnvironments(s *State) int {
	envs := make(map[string]struct{})
	for _, h := range s.History {
		if h.Environment != "" {
			envs[string(h.Environment)] = struct{}{}
		}
	}
	return len(envs)
}
