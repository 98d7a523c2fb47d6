// Package scheduler runs periodic maintenance tasks in the background.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidTask is returned by Add for a task without a name, interval or function
var ErrInvalidTask = errors.New("scheduler: task needs a name, a positive interval and a run function")

// Task is a unit of work run on a fixed interval
type Task struct {
	Name     string
	Interval time.Duration
	// Timeout bounds a single run. Zero means the interval.
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Scheduler runs registered tasks until stopped. A run that is still going
// when the next tick fires is not overlapped.
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// New creates a Scheduler
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{logger: logger}
}

// Add registers a task. Tasks added after Start wait for the next Start.
func (s *Scheduler) Add(task Task) error {
	if task.Name == "" || task.Interval <= 0 || task.Run == nil {
		return ErrInvalidTask
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
	return nil
}

// Start launches one loop per task
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	for _, task := range s.tasks {
		s.wg.Add(1)
		go s.runLoop(ctx, task)
		s.logger.Info("Scheduled task started",
			zap.String("task", task.Name),
			zap.Duration("interval", task.Interval))
	}
	return nil
}

// Stop cancels the loops and waits for running tasks to return
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether Start has been called without a matching Stop
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *Scheduler) runLoop(ctx context.Context, task Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, task)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, task Task) {
	timeout := task.Timeout
	if timeout <= 0 {
		timeout = task.Interval
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Scheduled task panicked",
				zap.String("task", task.Name),
				zap.Any("panic", r))
		}
	}()

	start := time.Now()
	if err := task.Run(runCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("Scheduled task failed",
			zap.String("task", task.Name),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return
	}
	s.logger.Debug("Scheduled task finished",
		zap.String("task", task.Name),
		zap.Duration("duration", time.Since(start)))
}
