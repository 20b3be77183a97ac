package pool

import (
	"time"
)

// Observer receives pool events for metrics collection
// Implementations live outside this package (see observability/prometheus)
// so the core does not depend on a metrics backend
type Observer interface {
	// TaskSubmitted is called once per accepted submission, queued or inline
	TaskSubmitted(pool string)

	// TaskDone is called after each execution with its duration
	// err is non-nil if the task returned an error or panicked
	TaskDone(pool string, d time.Duration, err error)

	// QueueDepth reports the number of queued tasks after a change
	QueueDepth(pool string, depth int)

	// WorkerCount reports the worker count after a resize
	WorkerCount(pool string, count int)
}

func (p *ThreadPool) observeSubmitted() {
	if p.obs != nil {
		p.obs.TaskSubmitted(p.name)
	}
}

func (p *ThreadPool) observeDone(d time.Duration, err error) {
	if p.obs != nil {
		p.obs.TaskDone(p.name, d, err)
	}
}

func (p *ThreadPool) observeQueueDepth(depth int) {
	if p.obs != nil {
		p.obs.QueueDepth(p.name, depth)
	}
}

func (p *ThreadPool) observeWorkerCount(count int) {
	if p.obs != nil {
		p.obs.WorkerCount(p.name, count)
	}
}
