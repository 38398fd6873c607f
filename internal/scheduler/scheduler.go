package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler fires a job once a day at a fixed local time. Firings that
// arrive while a previous run is still going are dropped, never queued: a
// slow broadcast blocks the next one instead of overlapping it.
type Scheduler struct {
	cron      *cron.Cron
	job       func(ctx context.Context)
	running   atomic.Bool
	startedAt atomic.Int64
}

func New(hour, minute int, job func(ctx context.Context)) (*Scheduler, error) {
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("hour must be in 0..23, got %d", hour)
	}

	if minute < 0 || minute > 59 {
		return nil, fmt.Errorf("minute must be in 0..59, got %d", minute)
	}

	s := &Scheduler{
		cron: cron.New(),
		job:  job,
	}

	spec := fmt.Sprintf("%d %d * * *", minute, hour)

	if _, err := s.cron.AddFunc(spec, func() {
		s.TryRun(context.Background())
	}); err != nil {
		return nil, err
	}

	return s, nil
}

// TryRun runs the job unless one is already running, in which case the
// firing is dropped. Returns whether the job ran.
func (s *Scheduler) TryRun(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		started := time.Unix(s.startedAt.Load(), 0)
		log.Printf("broadcast trigger dropped: run in progress since %s", started.Format(time.RFC3339))
		return false
	}

	// record the start before anything else: a concurrent loser reads it
	// for its drop log
	s.startedAt.Store(time.Now().Unix())

	defer s.running.Store(false)

	s.job(ctx)

	return true
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the trigger and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
