package abi

import (
	"bytes"
	"testing"

	"github.com/danmuck/cmdfifo/internal/fifo"
	"github.com/danmuck/cmdfifo/internal/testutil/testlog"
)

func newFifo(t *testing.T) *fifo.Fifo {
	t.Helper()
	testlog.Start(t)
	return fifo.New(fifo.Options{FaultHandler: func(err error) {
		t.Errorf("unexpected fault: %v", err)
	}})
}

func payload(i int) []byte {
	data := make([]byte, fifo.PayloadSize)
	for j := range data {
		data[j] = byte(i*10 + j)
	}
	return data
}

func TestInitReturnsZeroWhenLive(t *testing.T) {
	f := newFifo(t)
	h := Init(f)
	if h == 0 {
		t.Fatalf("expected non-zero handle")
	}
	if again := Init(f); again != 0 {
		t.Fatalf("expected 0 on second init, got %d", again)
	}
	Destroy(f, h)
	if h2 := Init(f); h2 == 0 || h2 == h {
		t.Fatalf("expected new non-zero handle, got %d (old %d)", h2, h)
	}
}

func TestWriteStatusCodes(t *testing.T) {
	f := newFifo(t)
	if got := Write(f, 0, 1, nil); got != StatusInvalidHandle {
		t.Fatalf("null handle: %d", got)
	}
	if got := Write(f, 1, 1, nil); got != StatusInvalidHandle {
		t.Fatalf("uninitialized: %d", got)
	}

	h := Init(f)
	for i := 0; i < fifo.Capacity; i++ {
		if got := Write(f, h, int32(i), payload(i)); got != StatusOK {
			t.Fatalf("write %d: %d", i, got)
		}
	}
	if got := Write(f, h, 8, nil); got != StatusQueueFull {
		t.Fatalf("full: %d", got)
	}
	Destroy(f, h)
	if got := Write(f, h, 1, nil); got != StatusInvalidHandle {
		t.Fatalf("after destroy: %d", got)
	}
}

func TestReadSentinels(t *testing.T) {
	f := newFifo(t)
	zero := [fifo.PayloadSize]byte{}

	m := Read(f, 0)
	if m.CommandID != ReadInvalidHandle || m.Payload != zero {
		t.Fatalf("null handle read: %+v", m)
	}
	m = Read(f, 3)
	if m.CommandID != ReadInvalidHandle || m.Payload != zero {
		t.Fatalf("uninitialized read: %+v", m)
	}

	h := Init(f)
	m = Read(f, h)
	if m.CommandID != ReadEmpty || m.Payload != zero {
		t.Fatalf("empty read: %+v", m)
	}
}

func TestHostProgramFlow(t *testing.T) {
	f := newFifo(t)
	h := Init(f)
	for i := 0; i < 5; i++ {
		if got := Write(f, h, int32(i), payload(i)); got != StatusOK {
			t.Fatalf("write %d: %d", i, got)
		}
	}
	for i := 0; i < 5; i++ {
		m := Read(f, h)
		if m.CommandID != int32(i) {
			t.Fatalf("read %d: id=%d", i, m.CommandID)
		}
		if !bytes.Equal(m.Payload[:], payload(i)) {
			t.Fatalf("read %d: payload mismatch", i)
		}
	}
	if m := Read(f, h); m.CommandID != ReadEmpty {
		t.Fatalf("expected empty, got %d", m.CommandID)
	}
	Destroy(f, h)
	Destroy(f, h)
	Destroy(f, 0)
}

func TestWriteTruncatesLongBuffer(t *testing.T) {
	f := newFifo(t)
	h := Init(f)
	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i + 1)
	}
	if got := Write(f, h, 1, data); got != StatusOK {
		t.Fatalf("write: %d", got)
	}
	m := Read(f, h)
	if !bytes.Equal(m.Payload[:], data[:fifo.PayloadSize]) {
		t.Fatalf("payload mismatch: %v", m.Payload)
	}
}

func TestStaleDestroyKeepsLiveGeneration(t *testing.T) {
	f := newFifo(t)
	old := Init(f)
	Destroy(f, old)
	live := Init(f)
	Destroy(f, old)
	if got := Write(f, live, 1, nil); got != StatusOK {
		t.Fatalf("live generation torn down by stale handle: %d", got)
	}
}
