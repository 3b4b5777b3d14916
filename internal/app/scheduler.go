package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/vigil/pkg/logger"
)

const defaultInterval = time.Hour

// Scheduler triggers ingestion passes at a fixed interval. A tick that
// arrives while the previous pass is still running is skipped, never queued.
type Scheduler struct {
	svc      *Service
	interval time.Duration
	onStart  bool
	logger   logger.Logger

	shutdown chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// SchedulerOption applies a configuration option to the Scheduler.
type SchedulerOption func(*Scheduler)

// WithInterval sets the tick interval between passes.
func WithInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithRunOnStart triggers a pass immediately on Start instead of waiting
// for the first tick.
func WithRunOnStart(on bool) SchedulerOption {
	return func(s *Scheduler) {
		s.onStart = on
	}
}

// WithSchedulerLogger sets a custom logger for the scheduler.
func WithSchedulerLogger(l logger.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScheduler creates a scheduler driving svc.
func NewScheduler(svc *Service, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		svc:      svc,
		interval: defaultInterval,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("scheduler")
	}

	return s
}

// Start launches the tick loop. It returns immediately; passes run on a
// background goroutine until Stop or ctx cancellation.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		defer close(s.done)

		if s.onStart {
			s.trigger(ctx)
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info(ctx, "scheduler stopping, context cancelled")
				return
			case <-s.shutdown:
				s.logger.Info(ctx, "scheduler stopping")
				return
			case <-ticker.C:
				s.trigger(ctx)
			}
		}
	}()
}

// trigger runs a pass on its own goroutine so a long pass cannot stall the
// tick loop. Overlap is rejected inside RunPass.
func (s *Scheduler) trigger(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.svc.RunPass(ctx); err != nil {
			if errors.Is(err, ErrPassInProgress) {
				s.logger.Warn(ctx, "skipping tick, previous pass still running")
				return
			}
			s.logger.Error(ctx, "ingestion pass failed", logger.Error(err))
		}
	}()
}

// Stop shuts the tick loop down and waits for any in-flight pass to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.shutdown)
	})
	<-s.done
	s.wg.Wait()
}
