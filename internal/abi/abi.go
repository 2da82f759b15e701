// Package abi translates fifo operations into the integer and sentinel
// contract seen by C callers. Nothing here returns a Go error.
package abi

import (
	"errors"

	"github.com/danmuck/cmdfifo/internal/fifo"
)

// Write status codes.
const (
	StatusOK            int32 = 0
	StatusQueueFull     int32 = -1
	StatusInvalidHandle int32 = -2
)

// Read sentinel command ids.
const (
	ReadEmpty         = fifo.CommandEmpty
	ReadInvalidHandle = fifo.CommandInvalid
)

// ProbeValue is returned by the boundary probe export.
const ProbeValue uint32 = 42

// Init returns a non-zero handle, or 0 when a generation is already live.
func Init(f *fifo.Fifo) uintptr {
	h, err := f.Init()
	if err != nil {
		return 0
	}
	return uintptr(h)
}

// Write enqueues min(len(data), fifo.PayloadSize) bytes under commandID.
func Write(f *fifo.Fifo, h uintptr, commandID int32, data []byte) int32 {
	err := f.Write(fifo.Handle(h), commandID, data)
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, fifo.ErrQueueFull):
		return StatusQueueFull
	case fifo.IsUnusable(err):
		return StatusInvalidHandle
	default:
		// Only reachable with a FaultHandler that returns. Never report an
		// invariant fault as full.
		return StatusInvalidHandle
	}
}

// Read dequeues one message, or a zero-payload sentinel message.
func Read(f *fifo.Fifo, h uintptr) fifo.Message {
	m, err := f.Read(fifo.Handle(h))
	switch {
	case err == nil:
		return m
	case errors.Is(err, fifo.ErrQueueEmpty):
		return fifo.SentinelMessage(ReadEmpty)
	default:
		return fifo.SentinelMessage(ReadInvalidHandle)
	}
}

// Destroy tears down the live generation. Null and stale handles are no-ops.
func Destroy(f *fifo.Fifo, h uintptr) {
	_ = f.Teardown(fifo.Handle(h))
}
