// Package pool provides a fixed-size worker pool with group-based
// completion barriers.
//
// Callers create a TaskGroup, bind Tasks to it and submit them to a
// ThreadPool. The pool dispatches tasks FIFO to a set of persistent
// worker goroutines; Wait on the group blocks until every task bound
// to it has finished executing.
//
// Typical usage:
//
//	p := pool.New(pool.Config{Threads: 4})
//	defer p.Close()
//
//	g := pool.NewTaskGroup()
//	for i := 0; i < 100; i++ {
//		p.AddTask(pool.NewTask(g, func(ctx context.Context) error {
//			// work
//			return nil
//		}))
//	}
//	g.Wait()
//
// A pool with zero workers executes submitted tasks synchronously on
// the caller's goroutine. The process-wide default pool returned by
// Global starts at zero workers for exactly that reason: programs that
// never resize it get plain inline execution.
package pool
