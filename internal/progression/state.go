package progression

import (
	"time"

	"github.com/2beens/fitquest/internal/equipment"
	"github.com/2beens/fitquest/internal/plan"
)

const (
	XPPerLevel          = 200
	DefaultHistoryLimit = 90
)

type BadgeState struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlockedAt"`
}

type HistoryEntry struct {
	Date           string                `json:"date"`
	PlanID         string                `json:"planId,omitempty"`
	XPEarned       int                   `json:"xpEarned"`
	Completed      bool                  `json:"completed"`
	Feedback       *plan.Feedback        `json:"feedback"`
	Environment    equipment.Environment `json:"environment,omitempty"`
	DifficultyTier int                   `json:"difficulty,omitempty"`
}

// State is the progression of one profile. Level is derived from XP.
type State struct {
	ProfileID          string         `json:"profileId"`
	XP                 int            `json:"xp"`
	StreakDays         int            `json:"streakDays"`
	LongestStreakDays  int            `json:"longestStreakDays"`
	LastWorkoutDate    string         `json:"lastWorkoutDate,omitempty"`
	DifficultyModifier float64        `json:"difficultyModifier"`
	Badges             []BadgeState   `json:"badges"`
	History            []HistoryEntry `json:"history"`
}

func NewState(profileID string) *State {
	return &State{
		ProfileID:          profileID,
		DifficultyModifier: plan.DefaultDifficultyModifier,
		Badges:             initBadges(),
		History:            []HistoryEntry{},
	}
}

func (s *State) Level() int {
	return Level(s.XP)
}

func Level(xp int) int {
	return xp/XPPerLevel + 1
}

func (s *State) Badge(id string) (BadgeState, bool) {
	for _, b := range s.Badges {
		if b.ID == id {
			return b, true
		}
	}
	return BadgeState{}, false
}

// migrate appends catalog badges the stored state predates and repairs
// fields older states may lack.
func (s *State) migrate() bool {
	changed := false
	for _, def := range badgeCatalog {
		if _, ok := s.Badge(def.id); !ok {
			s.Badges = append(s.Badges, def.initial())
			changed = true
		}
	}
	if s.DifficultyModifier <= 0 {
		s.DifficultyModifier = plan.DefaultDifficultyModifier
		changed = true
	}
	if s.History == nil {
		s.History = []HistoryEntry{}
	}
	return changed
}

func (s *State) appendHistory(entry HistoryEntry, limit int) {
	s.History = append(s.History, entry)
	if limit > 0 && len(s.History) > limit {
		s.History = append([]HistoryEntry(nil), s.History[len(s.History)-limit:]...)
	}
}
