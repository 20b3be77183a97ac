package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	p := New(Config{Threads: 2})
	defer p.Close()

	if p == nil {
		t.Fatal("New() should not return nil")
	}
	if p.NumThreads() != 2 {
		t.Errorf("NumThreads() = %d, want 2", p.NumThreads())
	}
	if p.Name() == "" {
		t.Error("Name() should not be empty")
	}
}

func TestNew_NegativeThreadsClampedToZero(t *testing.T) {
	p := New(Config{Threads: -3})
	defer p.Close()

	if p.NumThreads() != 0 {
		t.Errorf("NumThreads() = %d, want 0", p.NumThreads())
	}
}

func TestSetNumThreads(t *testing.T) {
	p := New(Config{})
	defer p.Close()

	for _, n := range []int{0, 1, 4, 8, 2, 0} {
		if err := p.SetNumThreads(n); err != nil {
			t.Fatalf("SetNumThreads(%d) error = %v", n, err)
		}
		if p.NumThreads() != n {
			t.Errorf("NumThreads() = %d, want %d", p.NumThreads(), n)
		}
	}
}

func TestSetNumThreads_Negative(t *testing.T) {
	p := New(Config{Threads: 3})
	defer p.Close()

	err := p.SetNumThreads(-1)
	if !errors.Is(err, ErrInvalidThreadCount) {
		t.Errorf("SetNumThreads(-1) error = %v, want ErrInvalidThreadCount", err)
	}
	if p.NumThreads() != 3 {
		t.Errorf("NumThreads() = %d after failed resize, want 3", p.NumThreads())
	}
}

func TestAddTask_Nil(t *testing.T) {
	p := New(Config{Threads: 1})
	defer p.Close()

	if err := p.AddTask(nil); !errors.Is(err, ErrNilTask) {
		t.Errorf("AddTask(nil) error = %v, want ErrNilTask", err)
	}
}

func TestAddTask_InlineWithZeroWorkers(t *testing.T) {
	p := New(Config{})
	g := NewTaskGroup()

	var order []int
	for i := 0; i < 5; i++ {
		n := i
		err := p.AddTask(NewTask(g, func(ctx context.Context) error {
			order = append(order, n)
			return nil
		}))
		if err != nil {
			t.Fatalf("AddTask() error = %v", err)
		}
	}

	// Inline execution completes before AddTask returns, so no Wait
	// is needed and the order is the call order.
	if len(order) != 5 {
		t.Fatalf("executed %d tasks inline, want 5", len(order))
	}
	for i, n := range order {
		if n != i {
			t.Errorf("order[%d] = %d, want %d", i, n, i)
		}
	}
	if g.Pending() != 0 {
		t.Errorf("Pending() = %d after inline execution, want 0", g.Pending())
	}
}

func TestAddTask_ExecutesExactlyOnce(t *testing.T) {
	p := New(Config{Threads: 4})
	defer p.Close()

	const tasks = 200
	counts := make([]int32, tasks)
	g := NewTaskGroup()

	for i := 0; i < tasks; i++ {
		n := i
		if err := p.AddTask(NewTask(g, func(ctx context.Context) error {
			atomic.AddInt32(&counts[n], 1)
			return nil
		})); err != nil {
			t.Fatalf("AddTask() error = %v", err)
		}
	}
	g.Wait()

	for i, c := range counts {
		if c != 1 {
			t.Errorf("task %d executed %d times, want 1", i, c)
		}
	}
}

func TestSingleWorkerPreservesSubmissionOrder(t *testing.T) {
	p := New(Config{Threads: 1})
	defer p.Close()

	g := NewTaskGroup()
	var mu sync.Mutex
	var order []int

	for i := 0; i < 50; i++ {
		n := i
		if err := p.AddTask(NewTask(g, func(ctx context.Context) error {
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			return nil
		})); err != nil {
			t.Fatalf("AddTask() error = %v", err)
		}
	}
	g.Wait()

	if len(order) != 50 {
		t.Fatalf("executed %d tasks, want 50", len(order))
	}
	for i, n := range order {
		if n != i {
			t.Fatalf("order[%d] = %d, want %d", i, n, i)
		}
	}
}

func TestConcurrencyBoundedByWorkerCount(t *testing.T) {
	const workers = 3

	p := New(Config{Threads: workers})
	defer p.Close()

	g := NewTaskGroup()
	var current, peak int32

	for i := 0; i < 30; i++ {
		if err := p.AddTask(NewTask(g, func(ctx context.Context) error {
			c := atomic.AddInt32(&current, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if c <= old || atomic.CompareAndSwapInt32(&peak, old, c) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&current, -1)
			return nil
		})); err != nil {
			t.Fatalf("AddTask() error = %v", err)
		}
	}
	g.Wait()

	if got := atomic.LoadInt32(&peak); got > workers {
		t.Errorf("peak concurrency = %d, want <= %d", got, workers)
	}
}

func TestShrinkWaitsForQueuedTasks(t *testing.T) {
	p := New(Config{Threads: 4})
	defer p.Close()

	g := NewTaskGroup()
	var done int32

	for i := 0; i < 10; i++ {
		if err := p.AddTask(NewTask(g, func(ctx context.Context) error {
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&done, 1)
			return nil
		})); err != nil {
			t.Fatalf("AddTask() error = %v", err)
		}
	}

	// Shrinking to zero must block until every queued task has run.
	if err := p.SetNumThreads(0); err != nil {
		t.Fatalf("SetNumThreads(0) error = %v", err)
	}
	if got := atomic.LoadInt32(&done); got != 10 {
		t.Errorf("completed = %d when SetNumThreads(0) returned, want 10", got)
	}

	if err := p.SetNumThreads(2); err != nil {
		t.Fatalf("SetNumThreads(2) error = %v", err)
	}
	if p.NumThreads() != 2 {
		t.Errorf("NumThreads() = %d, want 2", p.NumThreads())
	}
}

func TestClose_RunsQueuedTasks(t *testing.T) {
	p := New(Config{Threads: 2})

	g := NewTaskGroup()
	var done int32
	for i := 0; i < 20; i++ {
		if err := p.AddTask(NewTask(g, func(ctx context.Context) error {
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&done, 1)
			return nil
		})); err != nil {
			t.Fatalf("AddTask() error = %v", err)
		}
	}

	p.Close()
	if got := atomic.LoadInt32(&done); got != 20 {
		t.Errorf("completed = %d after Close, want 20", got)
	}
	if p.NumThreads() != 0 {
		t.Errorf("NumThreads() = %d after Close, want 0", p.NumThreads())
	}
}

func TestPoolReusableAfterClose(t *testing.T) {
	p := New(Config{Threads: 2})
	p.Close()

	if err := p.SetNumThreads(1); err != nil {
		t.Fatalf("SetNumThreads(1) after Close error = %v", err)
	}
	defer p.Close()

	g := NewTaskGroup()
	var ran int32
	if err := p.AddTask(NewTask(g, func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	g.Wait()

	if atomic.LoadInt32(&ran) != 1 {
		t.Error("task did not run on reused pool")
	}
}

func TestTaskFaultsDoNotKillWorkers(t *testing.T) {
	p := New(Config{Threads: 2, Logger: discardLogger{}})
	defer p.Close()

	g := NewTaskGroup()
	if err := p.AddTask(NewNamedTask(g, "panics", func(ctx context.Context) error {
		panic("boom")
	})); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if err := p.AddTask(NewNamedTask(g, "fails", func(ctx context.Context) error {
		return fmt.Errorf("expected failure")
	})); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}

	var ran int32
	if err := p.AddTask(NewTask(g, func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	g.Wait()

	if atomic.LoadInt32(&ran) != 1 {
		t.Error("pool stopped executing after a task fault")
	}

	stats := p.Stats()
	if stats.FailedTasks != 2 {
		t.Errorf("FailedTasks = %d, want 2", stats.FailedTasks)
	}
	if stats.CompletedTasks != 1 {
		t.Errorf("CompletedTasks = %d, want 1", stats.CompletedTasks)
	}
}

func TestConcurrentSubmitters(t *testing.T) {
	p := New(Config{Threads: 4})
	defer p.Close()

	g := NewTaskGroup()
	var executed int32
	var wg sync.WaitGroup

	for s := 0; s < 8; s++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_ = p.AddTask(NewTask(g, func(ctx context.Context) error {
					atomic.AddInt32(&executed, 1)
					return nil
				}))
			}
		}()
	}
	wg.Wait()
	g.Wait()

	if got := atomic.LoadInt32(&executed); got != 200 {
		t.Errorf("executed = %d, want 200", got)
	}
}

func TestStats(t *testing.T) {
	p := New(Config{Name: "stats-pool", Threads: 2})
	defer p.Close()

	g := NewTaskGroup()
	for i := 0; i < 10; i++ {
		_ = p.AddTask(NewTask(g, func(ctx context.Context) error {
			return nil
		}))
	}
	g.Wait()

	stats := p.Stats()
	if stats.Name != "stats-pool" {
		t.Errorf("Stats().Name = %q, want %q", stats.Name, "stats-pool")
	}
	if stats.Workers != 2 {
		t.Errorf("Stats().Workers = %d, want 2", stats.Workers)
	}
	if stats.CompletedTasks != 10 {
		t.Errorf("Stats().CompletedTasks = %d, want 10", stats.CompletedTasks)
	}
	if stats.Stopping {
		t.Error("Stats().Stopping = true on a running pool")
	}
}

func BenchmarkAddTask(b *testing.B) {
	p := New(Config{Threads: 4, Logger: discardLogger{}})
	defer p.Close()

	g := NewTaskGroup()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = p.AddTask(NewTask(g, func(ctx context.Context) error {
			return nil
		}))
	}
	g.Wait()
}

// discardLogger silences expected task failures in tests.
type discardLogger struct{}

func (discardLogger) Errorf(format string, args ...interface{}) {}
func (discardLogger) Infof(format string, args ...interface{})  {}
func (discardLogger) Debugf(format string, args ...interface{}) {}
