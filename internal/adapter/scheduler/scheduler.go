// Package scheduler runs delayed, keyed tasks in process.
package scheduler

import (
	"context"
	"sync"
	"time"

	"multichain-settlement/internal/metrics"

	"github.com/rs/zerolog"
)

// Scheduler implements ports.Scheduler with one timer per key. A key has at
// most one pending or running task; the task's own key is free again once it
// starts, so a task may schedule its successor under the same key.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    zerolog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
	wg      sync.WaitGroup
}

// New creates a scheduler. Tasks receive a context that is cancelled by Stop.
func New(log zerolog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:     ctx,
		cancel:  cancel,
		log:     log.With().Str("component", "scheduler").Logger(),
		pending: make(map[string]*time.Timer),
	}
}

// Schedule runs task after delay. It returns false if key already has a
// pending task or the scheduler is stopped.
func (s *Scheduler) Schedule(key string, delay time.Duration, task func(ctx context.Context)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	if _, exists := s.pending[key]; exists {
		return false
	}

	s.wg.Add(1)
	s.pending[key] = time.AfterFunc(delay, func() { s.run(key, task) })
	metrics.ScheduledTasks.Inc()
	return true
}

// Pending reports whether key has a task waiting to run.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[key]
	return ok
}

func (s *Scheduler) run(key string, task func(ctx context.Context)) {
	defer s.wg.Done()

	s.mu.Lock()
	delete(s.pending, key)
	closed := s.closed
	s.mu.Unlock()
	metrics.ScheduledTasks.Dec()

	if closed {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("task", key).Interface("panic", r).Msg("Scheduled task panicked")
		}
	}()
	task(s.ctx)
}

// Stop cancels pending timers, cancels the task context and waits for
// running tasks, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	for key, timer := range s.pending {
		if timer.Stop() {
			delete(s.pending, key)
			metrics.ScheduledTasks.Dec()
			s.wg.Done()
		}
	}
	s.mu.Unlock()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
