package pool

// workerThread owns one goroutine bound to the pool's shared state.
// Workers are created when the pool grows and joined only as part of
// a full drain in finish, never individually.
type workerThread struct {
	pool *ThreadPool
	done chan struct{}
}

// newWorkerThread launches the worker goroutine immediately.
func newWorkerThread(p *ThreadPool) *workerThread {
	w := &workerThread{
		pool: p,
		done: make(chan struct{}),
	}
	go w.run()
	return w
}

// run is the worker loop.
//
// The queue lock is never held across Execute: holding it there would
// serialize all task execution through one worker.
func (w *workerThread) run() {
	defer close(w.done)

	p := w.pool

	// Signal that the loop has started. finish consumes one of these
	// per worker before joining, so a worker is never torn down
	// before its first iteration.
	p.threadSem.post()

	for {
		// Wait for a task to become available (or a stop wakeup).
		p.taskSem.wait()

		p.taskMu.Lock()
		if p.numTasks > 0 {
			// Pop the FIFO head.
			task := p.tasks.Remove().(Task)
			p.numTasks--
			depth := p.numTasks
			p.taskMu.Unlock()

			p.observeQueueDepth(depth)
			p.runTask(task)

			p.taskMu.Lock()
			task.Group().retire()
			p.taskMu.Unlock()
		} else if p.stopped() {
			p.taskMu.Unlock()
			return
		} else {
			p.taskMu.Unlock()
		}
	}
}

// join blocks until the worker goroutine has exited its loop.
func (w *workerThread) join() {
	<-w.done
}
