package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultAutoCheckoutSpec = "0 20 * * *"

// AutoCheckoutScheduler runs a job on a cron schedule in a fixed zone.
type AutoCheckoutScheduler struct {
	cron     *cron.Cron
	spec     string
	schedule cron.Schedule
	loc      *time.Location
	timeout  time.Duration
	job      func(ctx context.Context) error
}

// NewAutoCheckoutScheduler validates spec and registers job. Runs that
// overlap are skipped rather than queued.
func NewAutoCheckoutScheduler(spec string, loc *time.Location, job func(ctx context.Context) error) (*AutoCheckoutScheduler, error) {
	if spec == "" {
		spec = DefaultAutoCheckoutSpec
	}
	if loc == nil {
		loc = time.UTC
	}

	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid auto-checkout schedule %q: %w", spec, err)
	}

	s := &AutoCheckoutScheduler{
		spec:     spec,
		schedule: schedule,
		loc:      loc,
		timeout:  5 * time.Minute,
		job:      job,
	}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	s.cron.Schedule(schedule, cron.FuncJob(s.run))
	return s, nil
}

func (s *AutoCheckoutScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.job(ctx); err != nil {
		log.Printf("auto-checkout: run failed: %v", err)
	}
}

func (s *AutoCheckoutScheduler) Start() {
	s.cron.Start()
	log.Printf("Scheduled auto-checkout task (%s)", s.spec)
}

// Stop waits for a running job to finish or ctx to expire.
func (s *AutoCheckoutScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// Next reports the first run after t.
func (s *AutoCheckoutScheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.loc))
}
