package host

import (
	"context"
	"fmt"

	"github.com/danmuck/cmdfifo/internal/dispatch"
	"github.com/danmuck/cmdfifo/internal/fifo"
	"github.com/rs/zerolog"
)

// LogHandler logs each command it receives. It stands in for the device
// control code that would consume commands on real hardware.
func LogHandler(log zerolog.Logger) dispatch.Handler {
	return dispatch.HandlerFunc(func(_ context.Context, m fifo.Message) error {
		log.Info().Int32("command_id", m.CommandID).Hex("payload_head", m.Payload[:8]).Msg("host command")
		return nil
	})
}

// BuiltinRegistry registers LogHandler for every command id the simulated
// interrupt source emits.
func BuiltinRegistry(cfg Config, log zerolog.Logger) (*dispatch.Registry, error) {
	reg := dispatch.NewRegistry()
	h := LogHandler(log)
	for id := 0; id < cfg.Producer.Count; id++ {
		if err := reg.Register(int32(id), fmt.Sprintf("sim.command.%d", id), h); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
