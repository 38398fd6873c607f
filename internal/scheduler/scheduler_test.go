package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestNewRejectsBadTimeOfDay(t *testing.T) {
	job := func(context.Context) {}

	tests := []struct {
		hour, minute int
	}{
		{-1, 0},
		{24, 0},
		{9, -1},
		{9, 60},
	}

	for _, tt := range tests {
		if _, err := New(tt.hour, tt.minute, job); err == nil {
			t.Errorf("New(%d, %d) accepted an invalid time of day", tt.hour, tt.minute)
		}
	}

	if _, err := New(9, 30, job); err != nil {
		t.Errorf("New(9, 30) failed: %v", err)
	}
}

func TestTryRunDropsOverlappingFiring(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	s, err := New(9, 0, func(context.Context) {
		close(started)
		<-release
	})

	if err != nil {
		t.Fatal(err)
	}

	first := make(chan bool)

	go func() {
		first <- s.TryRun(context.Background())
	}()

	<-started

	// the run's start time is on record before the job does any work, so
	// an overlapping firing never logs the epoch as the run's start
	if s.startedAt.Load() == 0 {
		t.Error("start time not recorded before the job began")
	}

	// second firing arrives while the first run is still going
	if s.TryRun(context.Background()) {
		t.Error("overlapping firing ran instead of being dropped")
	}

	close(release)

	if !<-first {
		t.Error("first firing reported as dropped")
	}
}

func TestTryRunRunsAgainAfterCompletion(t *testing.T) {
	runs := 0

	s, err := New(9, 0, func(context.Context) {
		runs++
	})

	if err != nil {
		t.Fatal(err)
	}

	if !s.TryRun(context.Background()) || !s.TryRun(context.Background()) {
		t.Fatal("sequential firings were dropped")
	}

	if runs != 2 {
		t.Errorf("job ran %d times, want 2", runs)
	}
}

func TestStartStop(t *testing.T) {
	s, err := New(9, 0, func(context.Context) {})

	if err != nil {
		t.Fatal(err)
	}

	s.Start()

	done := make(chan struct{})

	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}
