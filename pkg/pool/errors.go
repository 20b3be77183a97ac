package pool

import (
	"errors"
)

var (
	// ErrInvalidThreadCount is returned by SetNumThreads for a negative count
	ErrInvalidThreadCount = errors.New("thread count must be non-negative")

	// ErrNilTask is returned when a nil task is submitted
	ErrNilTask = errors.New("task cannot be nil")
)
