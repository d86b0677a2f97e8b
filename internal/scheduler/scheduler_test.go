package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestSchedulerRunsTasksUntilCancelled(t *testing.T) {
	sched := New(zap.NewNop())

	var runs int64
	sched.Register(Task{
		Name:     "counter",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			atomic.AddInt64(&runs, 1)
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	sched.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	sched.Wait()

	if atomic.LoadInt64(&runs) == 0 {
		t.Fatal("task never ran")
	}
	after := atomic.LoadInt64(&runs)
	time.Sleep(20 * time.Millisecond)
	if atomic.LoadInt64(&runs) != after {
		t.Fatal("task kept running after cancellation")
	}
}

func TestSchedulerKeepsScheduleOnTaskError(t *testing.T) {
	sched := New(zap.NewNop())

	var runs int64
	sched.Register(Task{
		Name:     "flaky",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			atomic.AddInt64(&runs, 1)
			return errors.New("boom")
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	sched.Start(ctx)
	time.Sleep(40 * time.Millisecond)
	cancel()
	sched.Wait()

	if atomic.LoadInt64(&runs) < 2 {
		t.Fatalf("runs = %d, want the task to survive its own errors", atomic.LoadInt64(&runs))
	}
}

func TestSchedulerRejectsInvalidTasks(t *testing.T) {
	sched := New(zap.NewNop())
	sched.Register(Task{Name: "no-run", Interval: time.Second})
	sched.Register(Task{Name: "no-interval", Run: func(ctx context.Context) error { return nil }})
	if len(sched.tasks) != 0 {
		t.Fatalf("tasks = %d, want invalid registrations dropped", len(sched.tasks))
	}
}
