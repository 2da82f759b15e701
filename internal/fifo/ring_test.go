package fifo

import (
	"errors"
	"testing"
)

func TestRingWrapsAcrossLaps(t *testing.T) {
	var r Ring
	p, c := r.Split()

	next := int32(0)
	want := int32(0)
	for lap := 0; lap < 5; lap++ {
		for i := 0; i < 5; i++ {
			if err := p.Push(Message{CommandID: next}); err != nil {
				t.Fatalf("push %d: %v", next, err)
			}
			next++
		}
		for i := 0; i < 5; i++ {
			m, err := c.Pop()
			if err != nil {
				t.Fatalf("pop: %v", err)
			}
			if m.CommandID != want {
				t.Fatalf("got %d want %d", m.CommandID, want)
			}
			want++
		}
		if r.Len() != 0 {
			t.Fatalf("lap %d: len=%d", lap, r.Len())
		}
	}
}

func TestRingFullAndEmptyLeaveStateUnchanged(t *testing.T) {
	var r Ring
	p, c := r.Split()

	if _, err := c.Pop(); !errors.Is(err, ErrQueueEmpty) {
		t.Fatalf("expected ErrQueueEmpty, got %v", err)
	}
	for i := 0; i < r.Cap(); i++ {
		if err := p.Push(Message{CommandID: int32(i)}); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := p.Push(Message{CommandID: 99}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if r.Len() != Capacity {
		t.Fatalf("len=%d", r.Len())
	}
	m, err := c.Pop()
	if err != nil || m.CommandID != 0 {
		t.Fatalf("pop after full: id=%d err=%v", m.CommandID, err)
	}
}

func TestRingPopClearsSlot(t *testing.T) {
	var r Ring
	p, c := r.Split()
	if err := p.Push(NewMessage(3, []byte{1, 2, 3})); err != nil {
		t.Fatalf("push: %v", err)
	}
	if _, err := c.Pop(); err != nil {
		t.Fatalf("pop: %v", err)
	}
	if r.slots[0] != (Message{}) {
		t.Fatalf("slot not cleared: %+v", r.slots[0])
	}
}

func TestRingResetEmpties(t *testing.T) {
	var r Ring
	p, _ := r.Split()
	_ = p.Push(Message{CommandID: 1})
	_ = p.Push(Message{CommandID: 2})
	r.reset()
	if r.Len() != 0 {
		t.Fatalf("len after reset: %d", r.Len())
	}
	for i, s := range r.slots {
		if s != (Message{}) {
			t.Fatalf("slot %d not cleared", i)
		}
	}
}

func TestReleasedViewsReportInvariant(t *testing.T) {
	var r Ring
	p, c := r.Split()
	p.release()
	c.release()
	if err := p.Push(Message{}); !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
	if _, err := c.Pop(); !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
}

func TestOverlappingViewUseReportsInvariant(t *testing.T) {
	var r Ring
	p, c := r.Split()
	p.busy.Store(true)
	c.busy.Store(true)
	if err := p.Push(Message{}); !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
	if _, err := c.Pop(); !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("rejected push changed ring: len=%d", r.Len())
	}
}

func BenchmarkRingPushPop(b *testing.B) {
	var r Ring
	p, c := r.Split()
	m := NewMessage(1, []byte("bench"))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = p.Push(m)
		_, _ = c.Pop()
	}
}
