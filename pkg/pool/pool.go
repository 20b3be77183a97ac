package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
	"github.com/google/uuid"
)

// Config configures a ThreadPool
type Config struct {
	// Name labels the pool in logs and metrics. Defaults to a
	// generated id.
	Name string

	// Threads is the initial worker count. Zero means every
	// submitted task runs inline on the caller's goroutine.
	Threads int

	// Context is passed to every task's Execute. Defaults to
	// context.Background().
	Context context.Context

	// Logger receives task failures. Defaults to the stdlib logger.
	Logger Logger

	// Observer receives metrics events. Optional.
	Observer Observer
}

// ThreadPool owns a FIFO queue of pending tasks and a set of worker
// goroutines. Submission and resizing are safe from any number of
// concurrent goroutines.
//
// Three locks guard the shared state: taskMu for the queue and its
// count, threadMu for the worker list and its count, stopMu for the
// stopping flag. No lock is ever held across a task's Execute.
type ThreadPool struct {
	name   string
	ctx    context.Context
	logger Logger
	obs    Observer

	taskMu   sync.Mutex
	tasks    *queue.Queue // FIFO of Task
	numTasks int          // fast access to queue length
	taskSem  *semaphore   // workers wait on this for ready tasks

	threadMu   sync.Mutex
	threads    []*workerThread
	numThreads int
	threadSem  *semaphore // posted when a worker enters its loop

	stopMu   sync.Mutex
	stopping bool

	// counters (atomic)
	completedTasks int64
	failedTasks    int64
	inlineTasks    int64
}

// Stats is a point-in-time snapshot of pool state.
type Stats struct {
	Name           string
	Workers        int
	QueuedTasks    int
	CompletedTasks int64
	FailedTasks    int64
	InlineTasks    int64
	Stopping       bool
}

// New creates a ThreadPool with the given configuration.
func New(cfg Config) *ThreadPool {
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Logger == nil {
		cfg.Logger = NewDefaultLogger()
	}
	if cfg.Name == "" {
		cfg.Name = "pool-" + uuid.NewString()[:8]
	}
	if cfg.Threads < 0 {
		cfg.Threads = 0
	}

	p := &ThreadPool{
		name:      cfg.Name,
		ctx:       cfg.Context,
		logger:    cfg.Logger,
		obs:       cfg.Observer,
		tasks:     queue.New(),
		taskSem:   newSemaphore(),
		threadSem: newSemaphore(),
	}

	if cfg.Threads > 0 {
		// Cannot fail: the count is non-negative here.
		_ = p.SetNumThreads(cfg.Threads)
	}
	return p
}

// Name returns the pool's label used in logs and metrics.
func (p *ThreadPool) Name() string {
	return p.name
}

// NumThreads returns the current worker count.
func (p *ThreadPool) NumThreads() int {
	p.threadMu.Lock()
	defer p.threadMu.Unlock()
	return p.numThreads
}

// SetNumThreads resizes the pool to count workers.
//
// Growing spawns count-current new workers. Shrinking (including to
// zero) is a full stop-and-restart: every existing worker drains its
// view of the queue, exits and is joined before fresh workers are
// spawned. There is no incremental removal of a subset of workers.
// The call blocks until the resize is complete; already-queued tasks
// are never discarded.
func (p *ThreadPool) SetNumThreads(count int) error {
	if count < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidThreadCount, count)
	}

	p.threadMu.Lock()
	defer p.threadMu.Unlock()

	if count < p.numThreads {
		// Stop all existing workers once the queue is empty.
		p.finish()
	}
	for p.numThreads < count {
		p.threads = append(p.threads, newWorkerThread(p))
		p.numThreads++
	}

	p.observeWorkerCount(p.numThreads)
	p.logger.Debugf("pool %s: resized to %d workers", p.name, p.numThreads)
	return nil
}

// AddTask submits a task for execution. A submitted task executes
// exactly once; tasks submitted to the same pool are dispatched in
// submission order.
//
// If the pool currently has zero workers the task executes
// synchronously on the calling goroutine, with the group's pending
// count raised and lowered around the call.
func (p *ThreadPool) AddTask(task Task) error {
	if task == nil {
		return ErrNilTask
	}

	// threadMu guards numThreads for the inline-vs-queued decision.
	p.threadMu.Lock()
	defer p.threadMu.Unlock()

	p.observeSubmitted()

	if p.numThreads == 0 {
		group := task.Group()
		group.addTask()
		p.runTask(task)
		group.retire()
		atomic.AddInt64(&p.inlineTasks, 1)
		return nil
	}

	p.taskMu.Lock()
	p.tasks.Add(task)
	p.numTasks++
	depth := p.numTasks
	// The group increment happens under taskMu so that a concurrent
	// Wait observes the increment and the enqueue atomically.
	task.Group().addTask()
	p.taskMu.Unlock()

	p.observeQueueDepth(depth)
	p.taskSem.post()
	return nil
}

// Close stops the pool, executing every already-queued task first,
// and joins all workers. The pool can be resized and reused after
// Close returns.
func (p *ThreadPool) Close() {
	p.threadMu.Lock()
	defer p.threadMu.Unlock()
	p.finish()
}

// Stats returns a snapshot of the pool's counters and sizes.
func (p *ThreadPool) Stats() Stats {
	p.taskMu.Lock()
	queued := p.numTasks
	p.taskMu.Unlock()

	p.threadMu.Lock()
	workers := p.numThreads
	p.threadMu.Unlock()

	return Stats{
		Name:           p.name,
		Workers:        workers,
		QueuedTasks:    queued,
		CompletedTasks: atomic.LoadInt64(&p.completedTasks),
		FailedTasks:    atomic.LoadInt64(&p.failedTasks),
		InlineTasks:    atomic.LoadInt64(&p.inlineTasks),
		Stopping:       p.stopped(),
	}
}

// runTask executes one task with the pool's fault policy: a panic or
// returned error is logged and counted, and the worker survives.
func (p *ThreadPool) runTask(task Task) {
	start := time.Now()
	err := p.safeExecute(task)
	d := time.Since(start)

	if err != nil {
		atomic.AddInt64(&p.failedTasks, 1)
		p.logger.Errorf("pool %s: task %s failed: %v", p.name, taskName(task), err)
	} else {
		atomic.AddInt64(&p.completedTasks, 1)
	}
	p.observeDone(d, err)
}

func (p *ThreadPool) safeExecute(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v", r)
		}
	}()
	return task.Execute(p.ctx)
}

func (p *ThreadPool) stopped() bool {
	p.stopMu.Lock()
	defer p.stopMu.Unlock()
	return p.stopping
}

func (p *ThreadPool) stop() {
	p.stopMu.Lock()
	p.stopping = true
	p.stopMu.Unlock()
}

// finish drains and joins every worker, then resets the queue and
// worker bookkeeping. Caller must hold threadMu.
//
// Each worker exits only when it observes an empty queue with the
// stopping flag set, so queued work is never silently discarded.
func (p *ThreadPool) finish() {
	p.stop()

	// Post once per worker so each eventually wakes with an empty
	// queue, and consume each worker's started signal before joining
	// it. A worker whose loop has not begun is never torn down.
	for i := 0; i < p.numThreads; i++ {
		p.taskSem.post()
		p.threadSem.wait()
	}

	for _, w := range p.threads {
		w.join()
	}

	p.taskMu.Lock()
	p.stopMu.Lock()
	p.threads = nil
	p.tasks = queue.New()
	p.numThreads = 0
	p.numTasks = 0
	p.stopping = false
	p.stopMu.Unlock()
	p.taskMu.Unlock()

	p.observeWorkerCount(0)
	p.observeQueueDepth(0)
}
