package host

import (
	"context"
	"errors"
	"time"

	"github.com/danmuck/cmdfifo/internal/fifo"
	"github.com/danmuck/cmdfifo/internal/observability"
	"github.com/rs/zerolog"
)

// Writer is the write half of a fifo.
type Writer interface {
	Write(h fifo.Handle, commandID int32, data []byte) error
}

// ProducerReport summarizes one interrupt run.
type ProducerReport struct {
	Queued  int `json:"queued"`
	Dropped int `json:"dropped"`
}

// InterruptSource emits Count commands with ids 0..Count-1. Interrupt i
// carries payload byte j = i*10 + j. A full queue drops the interrupt.
type InterruptSource struct {
	cfg  ProducerConfig
	node string
	log  zerolog.Logger
}

func NewInterruptSource(cfg ProducerConfig, node string, log zerolog.Logger) *InterruptSource {
	return &InterruptSource{cfg: cfg, node: node, log: log}
}

// Run fires every interrupt, or stops early on ctx or an unusable handle.
func (s *InterruptSource) Run(ctx context.Context, w Writer, h fifo.Handle) (ProducerReport, error) {
	var report ProducerReport
	buf := make([]byte, s.cfg.PayloadLen)

	var tick <-chan time.Time
	if s.cfg.Interval > 0 {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for i := 0; i < s.cfg.Count; i++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return report, nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return report, nil
		}

		FillPayload(buf, i)
		err := w.Write(h, int32(i), buf)
		switch {
		case err == nil:
			report.Queued++
			observability.RecordInterrupt(s.node, true)
		case errors.Is(err, fifo.ErrQueueFull):
			report.Dropped++
			observability.RecordInterrupt(s.node, false)
			s.log.Debug().Int("command_id", i).Msg("host.InterruptSource dropped: queue full")
		default:
			return report, err
		}
	}
	return report, nil
}

// FillPayload writes the interrupt pattern for command i into buf.
func FillPayload(buf []byte, i int) {
	for j := range buf {
		buf[j] = byte(i*10 + j)
	}
}
