// Package events publishes workout completion events for downstream consumers.
package events

import (
	"context"
	"time"
)

const TypeWorkoutCompleted = "workout.completed"

type WorkoutCompleted struct {
	Type           string    `json:"type"`
	ProfileID      string    `json:"profileId"`
	PlanID         string    `json:"planId"`
	Date           string    `json:"date"`
	CompletedAt    time.Time `json:"completedAt"`
	Environment    string    `json:"environment"`
	DifficultyTier int       `json:"difficulty"`
	Feedback       string    `json:"feedback,omitempty"`
	XPEarned       int       `json:"xpEarned"`
	TotalXP        int       `json:"totalXp"`
	Level          int       `json:"level"`
	LeveledUp      bool      `json:"leveledUp"`
	StreakDays     int       `json:"streakDays"`
	NewBadges      []string  `json:"newBadges"`
}

type Publisher interface {
	PublishWorkoutCompleted(ctx context.Context, event WorkoutCompleted) error
	Close() error
}
