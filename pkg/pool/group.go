package pool

import (
	"sync"

	"github.com/google/uuid"
)

// TaskGroup is a completion barrier over a set of related tasks.
// It behaves like an inverted semaphore: Wait blocks while the number
// of pending tasks is above zero and returns once it reaches zero.
//
// A group must stay alive until every task bound to it has finished,
// so callers are expected to Wait before letting a group go out of
// scope while submissions are outstanding.
type TaskGroup struct {
	id string

	mu      sync.Mutex
	drained *sync.Cond
	pending int
}

// NewTaskGroup creates an empty group with an open gate.
func NewTaskGroup() *TaskGroup {
	g := &TaskGroup{
		id: uuid.NewString(),
	}
	g.drained = sync.NewCond(&g.mu)
	return g
}

// ID returns the group's unique identifier, stable for its lifetime.
func (g *TaskGroup) ID() string {
	return g.id
}

// Pending returns a snapshot of the number of not-yet-finished tasks.
func (g *TaskGroup) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}

// addTask registers one more pending task with the group.
//
// Must be called while holding the submitting pool's queue lock so
// that the increment and the queue append are observed atomically by
// a concurrent Wait.
func (g *TaskGroup) addTask() {
	g.mu.Lock()
	g.pending++
	g.mu.Unlock()
}

// retire marks one task as finished. When the count reaches zero all
// goroutines blocked in Wait are released.
func (g *TaskGroup) retire() {
	g.mu.Lock()
	g.pending--
	if g.pending == 0 {
		g.drained.Broadcast()
	}
	g.mu.Unlock()
}

// Wait blocks the calling goroutine until every task bound to the
// group has finished executing. This is the only way to observe that
// the group has drained; it says nothing about other groups sharing
// the same pool.
//
// Never call Wait from inside a task that belongs to this group: the
// worker running that task cannot also retire it, so the call would
// self-deadlock.
func (g *TaskGroup) Wait() {
	g.mu.Lock()
	for g.pending > 0 {
		g.drained.Wait()
	}
	g.mu.Unlock()
}
