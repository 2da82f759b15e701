package host

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danmuck/cmdfifo/internal/dispatch"
	"github.com/danmuck/cmdfifo/internal/fifo"
	"github.com/danmuck/cmdfifo/internal/logging"
	"github.com/danmuck/cmdfifo/internal/observability"
	"github.com/rs/zerolog"
)

const adminShutdownTimeout = 2 * time.Second

// Status is the admin view of a running host.
type Status struct {
	Node     string         `json:"node"`
	Cycle    uint64         `json:"cycle"`
	Fifo     fifo.Status    `json:"fifo"`
	Producer ProducerReport `json:"producer"`
	Consumer dispatch.Stats `json:"consumer"`
	Commands []string       `json:"commands"`
}

// CycleReport summarizes one generation.
type CycleReport struct {
	Handle   fifo.Handle
	Producer ProducerReport
	Consumer dispatch.Stats
	Drained  int
}

// Host drives generations of one fifo: it is that fifo's only producer and
// only consumer while Run is active.
type Host struct {
	cfg  Config
	fifo *fifo.Fifo
	reg  *dispatch.Registry
	log  zerolog.Logger

	cycle   atomic.Uint64
	queued  atomic.Int64
	dropped atomic.Int64

	mu   sync.RWMutex
	loop *dispatch.Loop
	last dispatch.Stats
}

func New(f *fifo.Fifo, reg *dispatch.Registry, cfg Config) *Host {
	cfg.Consumer.Node = cfg.Node
	return &Host{
		cfg:  cfg,
		fifo: f,
		reg:  reg,
		log:  logging.Component("host").With().Str("node", cfg.Node).Logger(),
	}
}

// Run executes ReinitCycles generations. With an admin address it keeps
// serving until ctx is done.
func (h *Host) Run(ctx context.Context) error {
	if err := h.cfg.validate(); err != nil {
		return err
	}

	adminErr := make(chan error, 1)
	adminCtx, stopAdmin := context.WithCancel(ctx)
	defer stopAdmin()
	serving := strings.TrimSpace(h.cfg.AdminListenAddr) != ""
	if serving {
		go func() {
			adminErr <- h.serveAdmin(adminCtx, h.cfg.AdminListenAddr)
		}()
	}

	for i := 0; i < h.cfg.ReinitCycles; i++ {
		if ctx.Err() != nil {
			break
		}
		report, err := h.RunCycle(ctx)
		if err != nil {
			return err
		}
		h.log.Info().
			Stringer("handle", report.Handle).
			Int("queued", report.Producer.Queued).
			Int("dropped", report.Producer.Dropped).
			Uint64("dispatched", report.Consumer.Dispatched).
			Uint64("unknown", report.Consumer.Unknown).
			Msg("host.Run cycle complete")
	}

	if !serving {
		return nil
	}
	select {
	case <-ctx.Done():
	case err := <-adminErr:
		return err
	}
	stopAdmin()
	return <-adminErr
}

// RunCycle initializes the fifo, runs the producer and consumer until the
// producer finishes, drains what is left, and tears down.
func (h *Host) RunCycle(ctx context.Context) (CycleReport, error) {
	handle, err := h.fifo.Init()
	if err != nil {
		return CycleReport{}, fmt.Errorf("host: init: %w", err)
	}
	cycle := h.cycle.Add(1)
	defer func() {
		if err := h.fifo.Teardown(handle); err != nil {
			h.log.Warn().Err(err).Uint64("cycle", cycle).Msg("host.RunCycle teardown failed")
		}
		observability.SetFifoDepth(h.cfg.Node, 0)
	}()

	loop := dispatch.NewLoop(h.fifo, handle, h.reg, h.cfg.Consumer)
	h.setLoop(loop)

	loopCtx, stopLoop := context.WithCancel(ctx)
	loopErr := make(chan error, 1)
	go func() {
		loopErr <- loop.Run(loopCtx)
	}()

	src := NewInterruptSource(h.cfg.Producer, h.cfg.Node, h.log)
	produced, prodErr := src.Run(ctx, h.fifo, handle)
	h.queued.Add(int64(produced.Queued))
	h.dropped.Add(int64(produced.Dropped))
	observability.SetFifoDepth(h.cfg.Node, h.fifo.Status().Len)

	stopLoop()
	if err := <-loopErr; err != nil {
		return CycleReport{}, fmt.Errorf("host: consumer: %w", err)
	}
	if prodErr != nil {
		return CycleReport{}, fmt.Errorf("host: producer: %w", prodErr)
	}

	drained := 0
	for {
		n, err := loop.DrainOnce(context.WithoutCancel(ctx))
		if err != nil {
			return CycleReport{}, fmt.Errorf("host: drain: %w", err)
		}
		drained += n
		if n == 0 {
			break
		}
	}

	stats := loop.Stats()
	h.setLast(stats)
	return CycleReport{Handle: handle, Producer: produced, Consumer: stats, Drained: drained}, nil
}

func (h *Host) Status() Status {
	regs := h.reg.List()
	commands := make([]string, 0, len(regs))
	for _, reg := range regs {
		commands = append(commands, fmt.Sprintf("%d:%s", reg.CommandID, reg.Name))
	}
	return Status{
		Node:     h.cfg.Node,
		Cycle:    h.cycle.Load(),
		Fifo:     h.fifo.Status(),
		Producer: ProducerReport{Queued: int(h.queued.Load()), Dropped: int(h.dropped.Load())},
		Consumer: h.consumerStats(),
		Commands: commands,
	}
}

func (h *Host) setLoop(l *dispatch.Loop) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loop = l
}

func (h *Host) setLast(s dispatch.Stats) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = s
	h.loop = nil
}

func (h *Host) consumerStats() dispatch.Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.loop != nil {
		return h.loop.Stats()
	}
	return h.last
}

func (h *Host) serveAdmin(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              strings.TrimSpace(addr),
		Handler:           h.AdminHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		h.log.Info().Str("addr", srv.Addr).Msg("host.serveAdmin listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("host: admin: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), adminShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("host: admin shutdown: %w", err)
	}
	<-errCh
	return nil
}
