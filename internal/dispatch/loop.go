package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/danmuck/cmdfifo/internal/fifo"
	"github.com/danmuck/cmdfifo/internal/logging"
	"github.com/danmuck/cmdfifo/internal/observability"
	"github.com/rs/zerolog"
)

var ErrInvalidPollInterval = errors.New("dispatch: invalid poll interval")

// Source is the read half of a fifo.
type Source interface {
	Read(h fifo.Handle) (fifo.Message, error)
}

type LoopConfig struct {
	Node         string
	PollInterval time.Duration
	DrainBatch   int
}

func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		Node:         "cmdfifo.local",
		PollInterval: 10 * time.Millisecond,
		DrainBatch:   fifo.Capacity,
	}
}

// Stats counts loop outcomes since construction.
type Stats struct {
	Polls      uint64 `json:"polls"`
	Dispatched uint64 `json:"dispatched"`
	Unknown    uint64 `json:"unknown"`
	Failed     uint64 `json:"failed"`
}

// Loop drains one fifo handle into a Registry.
type Loop struct {
	src    Source
	handle fifo.Handle
	reg    *Registry
	cfg    LoopConfig
	log    zerolog.Logger

	polls      atomic.Uint64
	dispatched atomic.Uint64
	unknown    atomic.Uint64
	failed     atomic.Uint64
}

func NewLoop(src Source, h fifo.Handle, reg *Registry, cfg LoopConfig) *Loop {
	def := DefaultLoopConfig()
	if cfg.Node == "" {
		cfg.Node = def.Node
	}
	if cfg.DrainBatch <= 0 {
		cfg.DrainBatch = def.DrainBatch
	}
	return &Loop{
		src:    src,
		handle: h,
		reg:    reg,
		cfg:    cfg,
		log:    logging.Component("dispatch").With().Str("node", cfg.Node).Stringer("handle", h).Logger(),
	}
}

// Run polls every PollInterval until ctx is done, returning nil, or until the
// handle stops being usable, returning that error.
func (l *Loop) Run(ctx context.Context) error {
	if l.cfg.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}
	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()

	l.log.Info().Dur("poll_interval", l.cfg.PollInterval).Int("drain_batch", l.cfg.DrainBatch).Msg("dispatch.Loop.Run start")
	for {
		select {
		case <-ctx.Done():
			l.log.Info().Interface("stats", l.Stats()).Msg("dispatch.Loop.Run shutdown")
			return nil
		case <-ticker.C:
			if _, err := l.DrainOnce(ctx); err != nil {
				l.log.Warn().Err(err).Msg("dispatch.Loop.Run stopped")
				return err
			}
		}
	}
}

// DrainOnce dispatches up to DrainBatch messages and returns how many were
// read. An empty queue ends the batch early and is not an error.
func (l *Loop) DrainOnce(ctx context.Context) (int, error) {
	l.polls.Add(1)
	n := 0
	for n < l.cfg.DrainBatch {
		m, err := l.src.Read(l.handle)
		if errors.Is(err, fifo.ErrQueueEmpty) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
		l.dispatch(ctx, m)
	}
	return n, nil
}

func (l *Loop) Stats() Stats {
	return Stats{
		Polls:      l.polls.Load(),
		Dispatched: l.dispatched.Load(),
		Unknown:    l.unknown.Load(),
		Failed:     l.failed.Load(),
	}
}

func (l *Loop) dispatch(ctx context.Context, m fifo.Message) {
	err := l.reg.Dispatch(ctx, m)
	switch {
	case err == nil:
		l.dispatched.Add(1)
		observability.RecordDispatch(l.cfg.Node, observability.ResultHandled)
	case errors.Is(err, ErrUnknownCommand):
		l.unknown.Add(1)
		observability.RecordDispatch(l.cfg.Node, observability.ResultUnknown)
		l.log.Warn().Int32("command_id", m.CommandID).Msg("dispatch.Loop unknown command")
	default:
		l.failed.Add(1)
		observability.RecordDispatch(l.cfg.Node, observability.ResultError)
		l.log.Warn().Err(err).Int32("command_id", m.CommandID).Msg("dispatch.Loop handler failed")
	}
}
