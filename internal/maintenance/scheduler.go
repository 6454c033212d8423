// Package maintenance runs the periodic store cleanup.
package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/fitquest/internal/telemetry/tracing"

	"github.com/robfig/cron"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultRunTimeout = 2 * time.Minute

type pruner interface {
	Prune(ctx context.Context) (int, error)
}

// Scheduler prunes retired plans and expired exercise pools on a cron schedule.
// Runs never overlap.
type Scheduler struct {
	cron       *cron.Cron
	pruner     pruner
	runTimeout time.Duration
	running    sync.Mutex
}

func NewScheduler(schedule string, p pruner, runTimeout time.Duration) (*Scheduler, error) {
	if runTimeout <= 0 {
		runTimeout = DefaultRunTimeout
	}
	s := &Scheduler{
		cron:       cron.New(),
		pruner:     p,
		runTimeout: runTimeout,
	}

	if err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return nil, fmt.Errorf("add maintenance schedule %q: %w", schedule, err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	log.Debugf("maintenance: scheduler started")
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Debugf("maintenance: scheduler stopped")
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil {
		log.Errorf("maintenance: %s", err)
	}
}

// RunOnce prunes the store now. It is skipped when a run is already in progress.
func (s *Scheduler) RunOnce(ctx context.Context) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "maintenance.run")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !s.running.TryLock() {
		log.Debugf("maintenance: previous run still in progress, skipping")
		return 0, nil
	}
	defer s.running.Unlock()

	removed, err := s.pruner.Prune(ctx)
	span.SetAttributes(attribute.Int("removed", removed))
	if err != nil {
		return removed, fmt.Errorf("prune store: %w", err)
	}

	log.Infof("maintenance: pruned %d entries", removed)
	return removed, nil
}
