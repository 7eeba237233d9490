package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"ContentCurator/internal/ports"
)

// CronTrigger fires the daily acquisition job at a fixed local time.
type CronTrigger struct {
	hour     int
	minute   int
	location *time.Location
	runner   *cron.Cron
}

var _ ports.Trigger = (*CronTrigger)(nil)

// NewCronTrigger builds a trigger firing daily at hour:minute in loc.
func NewCronTrigger(hour, minute int, loc *time.Location) *CronTrigger {
	if loc == nil {
		loc = time.UTC
	}
	return &CronTrigger{hour: hour, minute: minute, location: loc}
}

// Start registers the job and begins the cron loop. Calling Start on a
// running trigger is a no-op.
func (c *CronTrigger) Start(_ context.Context, job func(time.Time)) error {
	if job == nil {
		return fmt.Errorf("cron trigger needs a job")
	}
	if c.runner != nil {
		return nil
	}

	runner := cron.New(cron.WithLocation(c.location))
	spec := fmt.Sprintf("%d %d * * *", c.minute, c.hour)
	if _, err := runner.AddFunc(spec, func() { job(time.Now().In(c.location)) }); err != nil {
		return fmt.Errorf("register cron spec %q: %w", spec, err)
	}

	runner.Start()
	c.runner = runner
	return nil
}

// Stop halts the cron loop and waits for a running job callback to return.
func (c *CronTrigger) Stop(ctx context.Context) error {
	if c.runner == nil {
		return nil
	}

	done := c.runner.Stop().Done()
	c.runner = nil
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
