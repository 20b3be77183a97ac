package pool

import (
	"sync"
)

// semaphore is a counting semaphore built on a mutex and condition
// variable. Workers park on it while the queue is empty; submission
// posts it once per task. There is no upper bound on the count.
type semaphore struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count int
}

func newSemaphore() *semaphore {
	s := &semaphore{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// post increments the count and wakes one waiter.
func (s *semaphore) post() {
	s.mu.Lock()
	s.count++
	s.cond.Signal()
	s.mu.Unlock()
}

// wait blocks until the count is positive, then consumes one unit.
func (s *semaphore) wait() {
	s.mu.Lock()
	for s.count == 0 {
		s.cond.Wait()
	}
	s.count--
	s.mu.Unlock()
}
