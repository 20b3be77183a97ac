package pool

import (
	"context"
)

// Task represents a unit of work bound to a TaskGroup
// The pool stores and invokes tasks purely through this interface
type Task interface {
	// Execute performs the task work. It is invoked by exactly one
	// worker, exactly once, with no pool locks held, and must not
	// assume which goroutine runs it.
	// ctx is the pool's base context
	Execute(ctx context.Context) error

	// Group returns the TaskGroup the task is bound to
	// The group must stay alive for the task's entire lifetime
	Group() *TaskGroup
}

// Named is implemented by tasks that carry a human-readable name
// The pool uses it when logging task failures
type Named interface {
	Name() string
}

// funcTask adapts a plain function to the Task interface
type funcTask struct {
	group *TaskGroup
	name  string
	fn    func(ctx context.Context) error
}

// NewTask creates a Task from a function, bound to the given group
func NewTask(group *TaskGroup, fn func(ctx context.Context) error) Task {
	return &funcTask{
		group: group,
		name:  "task",
		fn:    fn,
	}
}

// NewNamedTask creates a Task with a custom name for logging
func NewNamedTask(group *TaskGroup, name string, fn func(ctx context.Context) error) Task {
	return &funcTask{
		group: group,
		name:  name,
		fn:    fn,
	}
}

// Execute implements Task
func (t *funcTask) Execute(ctx context.Context) error {
	return t.fn(ctx)
}

// Group implements Task
func (t *funcTask) Group() *TaskGroup {
	return t.group
}

// Name implements Named
func (t *funcTask) Name() string {
	return t.name
}

// taskName resolves a loggable name for any task.
func taskName(t Task) string {
	if n, ok := t.(Named); ok {
		return n.Name()
	}
	return "task"
}
