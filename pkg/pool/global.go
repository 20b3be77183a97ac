package pool

import (
	"sync"
)

// The process-wide default pool. Created on first use with zero
// workers, so programs that never resize it get synchronous inline
// execution.
var (
	globalOnce sync.Once
	globalPool *ThreadPool
)

// Global returns the process-wide default pool. Safe to call from any
// goroutine; the pool is created on first use and lives for the rest
// of the process.
func Global() *ThreadPool {
	globalOnce.Do(func() {
		globalPool = New(Config{Name: "global"})
	})
	return globalPool
}

// AddGlobalTask submits a task to the process-wide default pool.
func AddGlobalTask(task Task) error {
	return Global().AddTask(task)
}
