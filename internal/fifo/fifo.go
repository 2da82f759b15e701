package fifo

import (
	"errors"
	"sync"

	"github.com/danmuck/cmdfifo/internal/logging"
	"github.com/rs/zerolog"
)

// Lifecycle operation labels passed to Recorder.
const (
	OpInit     = "init"
	OpTeardown = "teardown"
)

// Recorder observes fifo outcomes. A nil error is success. Implementations
// are called on the write path and must not block or allocate.
type Recorder interface {
	RecordWrite(err error)
	RecordRead(err error)
	RecordLifecycle(op string, err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordWrite(error)             {}
func (nopRecorder) RecordRead(error)              {}
func (nopRecorder) RecordLifecycle(string, error) {}

// FaultHandler receives invariant violations. The default handler logs and
// panics, which aborts the host process when called through cgo.
type FaultHandler func(err error)

// Options configures a Fifo. Zero values select defaults.
type Options struct {
	Logger       *zerolog.Logger
	Recorder     Recorder
	FaultHandler FaultHandler
}

// Status is a point-in-time view of the lifecycle state.
type Status struct {
	Initialized bool   `json:"initialized"`
	Generation  uint64 `json:"generation"`
	Len         int    `json:"len"`
	Cap         int    `json:"cap"`
}

// Fifo is the lifecycle context around one Ring. Init and Teardown take the
// exclusive lock; Write and Read share it, so the producer and consumer never
// wait on each other and never overlap a teardown.
type Fifo struct {
	mu          sync.RWMutex
	ring        Ring
	producer    *Producer
	consumer    *Consumer
	initialized bool
	generation  uint64

	log   zerolog.Logger
	rec   Recorder
	fault FaultHandler
}

var (
	defaultOnce sync.Once
	defaultFifo *Fifo
)

// InitDefault builds the process-wide Fifo from opts on first call. Later
// calls ignore opts and return the same instance.
func InitDefault(opts Options) *Fifo {
	defaultOnce.Do(func() {
		defaultFifo = New(opts)
	})
	return defaultFifo
}

// Default returns the process-wide Fifo.
func Default() *Fifo {
	return InitDefault(Options{})
}

// New builds an uninitialized Fifo.
func New(opts Options) *Fifo {
	f := &Fifo{rec: opts.Recorder, fault: opts.FaultHandler}
	if opts.Logger != nil {
		f.log = *opts.Logger
	} else {
		f.log = logging.Component("fifo")
	}
	if f.rec == nil {
		f.rec = nopRecorder{}
	}
	if f.fault == nil {
		f.fault = f.panicFault
	}
	return f
}

// Init starts a new generation with an empty ring. It fails with
// ErrAlreadyInitialized, leaving the live generation untouched, when one is
// already active.
func (f *Fifo) Init() (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.initialized {
		f.log.Warn().Uint64("generation", f.generation).Msg("fifo.Init rejected: already initialized")
		f.rec.RecordLifecycle(OpInit, ErrAlreadyInitialized)
		return NullHandle, ErrAlreadyInitialized
	}

	f.ring.reset()
	f.producer, f.consumer = f.ring.Split()
	f.initialized = true
	f.generation++
	if f.generation == 0 {
		f.generation = 1
	}

	h := Handle(f.generation)
	f.log.Info().Stringer("handle", h).Int("capacity", Capacity).Msg("fifo.Init ready")
	f.rec.RecordLifecycle(OpInit, nil)
	return h, nil
}

// Teardown releases the producer/consumer views and empties the ring. A null
// handle or an uninitialized fifo is a no-op. A handle from an earlier
// generation returns ErrInvalidHandle and changes nothing.
func (f *Fifo) Teardown(h Handle) error {
	if h.IsNull() {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.initialized {
		return nil
	}
	if h.Generation() != f.generation {
		f.log.Warn().Stringer("handle", h).Uint64("generation", f.generation).Msg("fifo.Teardown rejected: stale handle")
		f.rec.RecordLifecycle(OpTeardown, ErrInvalidHandle)
		return ErrInvalidHandle
	}

	dropped := f.ring.Len()
	f.producer.release()
	f.consumer.release()
	f.producer, f.consumer = nil, nil
	f.ring.reset()
	f.initialized = false

	f.log.Info().Stringer("handle", h).Int("dropped", dropped).Msg("fifo.Teardown complete")
	f.rec.RecordLifecycle(OpTeardown, nil)
	return nil
}

// Write copies at most PayloadSize bytes of data into a message and enqueues
// it. Excess bytes are truncated.
func (f *Fifo) Write(h Handle, commandID int32, data []byte) error {
	return f.WriteMessage(h, NewMessage(commandID, data))
}

// WriteMessage enqueues m. It returns ErrQueueFull, or an error for which
// IsUnusable is true, without blocking.
func (f *Fifo) WriteMessage(h Handle, m Message) error {
	err := f.push(h, m)
	f.rec.RecordWrite(err)
	return err
}

// Read dequeues the oldest message. On error the returned message is zero.
func (f *Fifo) Read(h Handle) (Message, error) {
	m, err := f.pop(h)
	f.rec.RecordRead(err)
	return m, err
}

// Status returns the current lifecycle snapshot.
func (f *Fifo) Status() Status {
	f.mu.RLock()
	defer f.mu.RUnlock()
	st := Status{Initialized: f.initialized, Generation: f.generation, Cap: Capacity}
	if f.initialized {
		st.Len = f.ring.Len()
	}
	return st
}

func (f *Fifo) push(h Handle, m Message) error {
	if h.IsNull() {
		return ErrInvalidHandle
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if err := f.usableLocked(h); err != nil {
		return err
	}
	err := f.producer.Push(m)
	if errors.Is(err, ErrInvariant) {
		f.fault(err)
	}
	return err
}

func (f *Fifo) pop(h Handle) (Message, error) {
	if h.IsNull() {
		return Message{}, ErrInvalidHandle
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if err := f.usableLocked(h); err != nil {
		return Message{}, err
	}
	m, err := f.consumer.Pop()
	if errors.Is(err, ErrInvariant) {
		f.fault(err)
	}
	if err != nil {
		return Message{}, err
	}
	return m, nil
}

// usableLocked validates h against the live generation. Caller holds mu.
func (f *Fifo) usableLocked(h Handle) error {
	if !f.initialized {
		return ErrNotInitialized
	}
	if h.Generation() != f.generation {
		return ErrInvalidHandle
	}
	if f.producer == nil || f.consumer == nil {
		err := ErrInvariant
		f.fault(err)
		return err
	}
	return nil
}

func (f *Fifo) panicFault(err error) {
	f.log.Error().Err(err).Uint64("generation", f.generation).Msg("fifo fatal fault")
	panic(err)
}
