package events

import (
	"context"

	log "github.com/sirupsen/logrus"
)

var _ Publisher = (*LogPublisher)(nil)

// LogPublisher only logs events. Used when kafka is disabled.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) PublishWorkoutCompleted(_ context.Context, event WorkoutCompleted) error {
	log.WithFields(log.Fields{
		"profile_id": event.ProfileID,
		"plan_id":    event.PlanID,
		"xp":         event.XPEarned,
		"streak":     event.StreakDays,
		"badges":     event.NewBadges,
	}).Info("workout completed")
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
