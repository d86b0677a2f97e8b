package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/observability"
)

// Task is one periodic job owning its own ticker.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler drives the periodic sweeps. Each task runs on its own goroutine
// and cadence; tasks never overlap with themselves and stop when the
// context is cancelled.
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task
	wg     sync.WaitGroup
}

// New creates a scheduler.
func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

// Register adds a task. Must be called before Start.
func (s *Scheduler) Register(task Task) {
	if task.Run == nil || task.Interval <= 0 {
		return
	}
	s.tasks = append(s.tasks, task)
}

// Start launches all registered tasks until ctx is cancelled. A failing run
// is logged and the task keeps its schedule; task errors are never fatal.
func (s *Scheduler) Start(ctx context.Context) {
	for _, task := range s.tasks {
		s.wg.Add(1)
		go func(task Task) {
			defer s.wg.Done()
			s.logger.Info("sweep task started",
				zap.String("task", task.Name),
				zap.Duration("interval", task.Interval))

			ticker := time.NewTicker(task.Interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					s.logger.Info("sweep task stopped", zap.String("task", task.Name))
					return
				case <-ticker.C:
					if err := task.Run(ctx); err != nil {
						observability.SweepFailures.WithLabelValues(task.Name).Inc()
						s.logger.Error("sweep run failed",
							zap.String("task", task.Name),
							zap.Error(err))
					}
				}
			}
		}(task)
	}
}

// Wait blocks until all tasks have exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
