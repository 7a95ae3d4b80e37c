package scheduler

import (
	"context"
	"time"

	"DealScanner/internal/ports"
)

// Interval triggers the job immediately and then on a fixed interval.
type Interval struct {
	every time.Duration
	stop  chan struct{}
}

var _ ports.Scheduler = (*Interval)(nil)

// NewInterval builds a scheduler firing every d; non-positive d defaults to
// one hour.
func NewInterval(d time.Duration) *Interval {
	if d <= 0 {
		d = time.Hour
	}
	return &Interval{every: d}
}

// Start begins ticking. The job runs once right away, then per tick, until
// the context is cancelled or Stop is called.
func (s *Interval) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	if s.stop != nil {
		return nil
	}

	s.stop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(s.every)
		defer ticker.Stop()
		job(time.Now())
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine.
func (s *Interval) Stop(ctx context.Context) error {
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil
	return nil
}
