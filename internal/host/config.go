package host

import (
	"errors"
	"strings"
	"time"

	"github.com/danmuck/cmdfifo/internal/dispatch"
	"github.com/danmuck/cmdfifo/internal/fifo"
)

var (
	ErrInvalidReinitCycles = errors.New("host: invalid reinit cycles")
	ErrInvalidNode         = errors.New("host: invalid node")
)

// ProducerConfig shapes the simulated interrupt stream.
type ProducerConfig struct {
	Count      int
	Interval   time.Duration
	PayloadLen int
}

// Config configures one host run.
type Config struct {
	Node            string
	ReinitCycles    int
	Producer        ProducerConfig
	Consumer        dispatch.LoopConfig
	AdminListenAddr string
}

// DefaultConfig is five full-size interrupts drained by one consumer over
// one generation.
func DefaultConfig() Config {
	consumer := dispatch.DefaultLoopConfig()
	return Config{
		Node:         consumer.Node,
		ReinitCycles: 1,
		Producer: ProducerConfig{
			Count:      5,
			Interval:   20 * time.Millisecond,
			PayloadLen: fifo.PayloadSize,
		},
		Consumer: consumer,
	}
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Node) == "" {
		return ErrInvalidNode
	}
	if c.ReinitCycles < 1 {
		return ErrInvalidReinitCycles
	}
	if c.Consumer.PollInterval <= 0 {
		return dispatch.ErrInvalidPollInterval
	}
	return nil
}
