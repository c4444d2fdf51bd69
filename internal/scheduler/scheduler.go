// Package scheduler triggers periodic report runs
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"attendance-reporter/internal/services"
)

// runTimeout bounds one scheduled run; a monthly report over many departments
// is the slowest case.
const runTimeout = time.Hour

// Scheduler fires report runs on cron specs. It is the only component that
// reads the wall clock; the time is passed down to the report service.
type Scheduler struct {
	cron *cron.Cron
	gen  services.ReportGenerator
	loc  *time.Location
	now  func() time.Time
}

// New creates a scheduler evaluating cron specs in loc
func New(gen services.ReportGenerator, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc)),
		gen:  gen,
		loc:  loc,
		now:  time.Now,
	}
}

// Register adds a report run for period on a five-field cron spec
func (s *Scheduler) Register(spec string, period services.Period) error {
	if _, err := s.cron.AddFunc(spec, s.job(period)); err != nil {
		return fmt.Errorf("invalid %s schedule %q: %w", period, spec, err)
	}
	log.Printf("⏰ Scheduled %s report: %s", period, spec)
	return nil
}

func (s *Scheduler) job(period services.Period) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		now := s.now().In(s.loc)
		if _, err := s.gen.Generate(ctx, period, now); err != nil {
			if errors.Is(err, services.ErrRunInProgress) {
				log.Printf("⏭️  Skipping scheduled %s report: %v", period, err)
				return
			}
			log.Printf("Scheduled %s report failed: %v", period, err)
		}
	}
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("Scheduler started. Waiting for jobs...")
}

// Stop stops the scheduler and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Printf("Scheduler stop timed out: %v", ctx.Err())
	}
}
