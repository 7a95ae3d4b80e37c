package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestIntervalRunsJobImmediately(t *testing.T) {
	t.Parallel()

	fired := make(chan time.Time, 1)
	s := NewInterval(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx, func(now time.Time) { fired <- now }); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer func() { _ = s.Stop(context.Background()) }()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("job did not fire immediately")
	}
}

func TestIntervalStopIsIdempotent(t *testing.T) {
	t.Parallel()

	s := NewInterval(time.Hour)
	ctx := context.Background()

	if err := s.Start(ctx, func(time.Time) {}); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("first Stop error: %v", err)
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("second Stop error: %v", err)
	}
}

func TestIntervalNilJob(t *testing.T) {
	t.Parallel()

	s := NewInterval(time.Hour)
	if err := s.Start(context.Background(), nil); err != nil {
		t.Fatalf("nil job should be a no-op, got %v", err)
	}
}
