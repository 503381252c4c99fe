package engine

import "errors"

var (
	// ErrWrongThread is returned when a host-thread-only operation is
	// attempted from another OS thread.
	ErrWrongThread = errors.New("engine: called off the host thread")

	// ErrNotInitialized is returned when an operation needs an engine that
	// has not been attached yet or has already been shut down.
	ErrNotInitialized = errors.New("engine: not initialized")

	// ErrNoFrame is returned by FrontSurface when nothing has been
	// composited yet.
	ErrNoFrame = errors.New("engine: no current frame")
)

// OpError records the operation that failed with one of the sentinel
// errors above.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error {
	return e.Err
}
