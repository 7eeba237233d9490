package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// Pipeline is the unit of work the scheduler drives.
type Pipeline interface {
	Run(ctx context.Context) (domain.RunReport, error)
}

// Status is a point-in-time view of scheduler state.
type Status struct {
	Active     bool
	LastReport *domain.RunReport
}

// Service serializes pipeline runs. At most one run is in flight: a
// trigger that arrives while a run is active is rejected, never queued.
type Service struct {
	pipeline Pipeline
	trigger  ports.Trigger
	log      *slog.Logger

	mu         sync.Mutex
	active     bool
	lastReport *domain.RunReport
}

// NewService wires the pipeline to its schedule trigger.
func NewService(pipeline Pipeline, trigger ports.Trigger, log *slog.Logger) *Service {
	return &Service{pipeline: pipeline, trigger: trigger, log: log}
}

// Start subscribes to the trigger. Scheduled firings that collide with
// an active run are skipped with a log line rather than surfaced.
func (s *Service) Start(ctx context.Context) error {
	return s.trigger.Start(ctx, func(at time.Time) {
		if _, err := s.TriggerManual(ctx); err != nil {
			s.log.Warn("scheduled run skipped", "fired_at", at, "error", err)
		}
	})
}

// Stop detaches from the trigger. An in-flight run keeps going until
// its own context ends.
func (s *Service) Stop(ctx context.Context) error {
	return s.trigger.Stop(ctx)
}

// TriggerManual starts a run immediately. It fails with
// domain.ErrRunInProgress when one is already active.
func (s *Service) TriggerManual(ctx context.Context) (domain.RunReport, error) {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return domain.RunReport{}, domain.ErrRunInProgress
	}
	s.active = true
	s.mu.Unlock()

	report, err := s.pipeline.Run(ctx)

	s.mu.Lock()
	s.active = false
	s.lastReport = &report
	s.mu.Unlock()

	return report, err
}

// Status reports whether a run is active and the last finished report.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{Active: s.active}
	if s.lastReport != nil {
		report := *s.lastReport
		status.LastReport = &report
	}
	return status
}
