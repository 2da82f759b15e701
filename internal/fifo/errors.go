package fifo

import "errors"

var (
	ErrAlreadyInitialized   = errors.New("fifo: already initialized")
	ErrNotInitialized       = errors.New("fifo: not initialized")
	ErrInvalidHandle        = errors.New("fifo: invalid handle")
	ErrQueueFull            = errors.New("fifo: queue full")
	ErrQueueEmpty           = errors.New("fifo: queue empty")
	ErrInvalidMessageLength = errors.New("fifo: invalid message length")
	ErrInvariant            = errors.New("fifo: invariant violated")
)

// IsUnusable reports whether err belongs to the "handle not usable" class:
// a null, stale, or uninitialized handle.
func IsUnusable(err error) bool {
	return errors.Is(err, ErrNotInitialized) || errors.Is(err, ErrInvalidHandle)
}
