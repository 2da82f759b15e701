package fifo

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Capacity is the fixed number of slots in a Ring.
const Capacity = 8

const ringMask = Capacity - 1

// Ring is a bounded single-producer/single-consumer FIFO over a fixed slot
// array. The consumer advances head, the producer advances tail; each index
// sits on its own cache line.
type Ring struct {
	_     cpu.CacheLinePad
	head  atomic.Uint64
	_     cpu.CacheLinePad
	tail  atomic.Uint64
	_     cpu.CacheLinePad
	slots [Capacity]Message
}

// Producer is the push-only view of a Ring.
type Producer struct {
	ring *Ring
	busy atomic.Bool
}

// Consumer is the pop-only view of a Ring.
type Consumer struct {
	ring *Ring
	busy atomic.Bool
}

// Split returns the producer and consumer views over r. Callers must hold
// at most one live pair per ring.
func (r *Ring) Split() (*Producer, *Consumer) {
	return &Producer{ring: r}, &Consumer{ring: r}
}

// Len returns the number of queued messages.
func (r *Ring) Len() int {
	tail := r.tail.Load()
	head := r.head.Load()
	return int(tail - head)
}

// Cap returns Capacity.
func (r *Ring) Cap() int {
	return Capacity
}

// reset empties r. No views may be live.
func (r *Ring) reset() {
	r.head.Store(0)
	r.tail.Store(0)
	r.slots = [Capacity]Message{}
}

// Push stores m, or returns ErrQueueFull without modifying the ring.
func (p *Producer) Push(m Message) error {
	if !p.busy.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: concurrent producer", ErrInvariant)
	}
	defer p.busy.Store(false)

	r := p.ring
	if r == nil {
		return fmt.Errorf("%w: push on released producer", ErrInvariant)
	}
	tail := r.tail.Load()
	head := r.head.Load()
	switch used := tail - head; {
	case used > Capacity:
		return fmt.Errorf("%w: ring holds %d of %d", ErrInvariant, used, Capacity)
	case used == Capacity:
		return ErrQueueFull
	}
	r.slots[tail&ringMask] = m
	r.tail.Store(tail + 1)
	return nil
}

// Pop removes the oldest message, or returns ErrQueueEmpty.
func (c *Consumer) Pop() (Message, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return Message{}, fmt.Errorf("%w: concurrent consumer", ErrInvariant)
	}
	defer c.busy.Store(false)

	r := c.ring
	if r == nil {
		return Message{}, fmt.Errorf("%w: pop on released consumer", ErrInvariant)
	}
	head := r.head.Load()
	tail := r.tail.Load()
	switch {
	case head > tail || tail-head > Capacity:
		return Message{}, fmt.Errorf("%w: head=%d tail=%d", ErrInvariant, head, tail)
	case head == tail:
		return Message{}, ErrQueueEmpty
	}
	idx := head & ringMask
	m := r.slots[idx]
	r.slots[idx] = Message{}
	r.head.Store(head + 1)
	return m, nil
}

func (p *Producer) release() {
	p.ring = nil
}

func (c *Consumer) release() {
	c.ring = nil
}
