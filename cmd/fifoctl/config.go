package main

import (
	"fmt"
	"strings"

	"github.com/danmuck/cmdfifo/internal/config"
	"github.com/danmuck/cmdfifo/internal/host"
	"github.com/danmuck/cmdfifo/internal/logging"
	"github.com/rs/zerolog"
)

type settings struct {
	Host        host.Config
	LogLevel    zerolog.Level
	HasLogLevel bool
}

// loadSettings overlays the keys defined in path onto host.DefaultConfig.
func loadSettings(path string) (settings, error) {
	out := settings{Host: host.DefaultConfig()}
	cfg := &out.Host

	raw, meta, err := config.Decode(path)
	if err != nil {
		return settings{}, fmt.Errorf("load fifoctl config: %w", err)
	}

	if meta.IsDefined("node") {
		cfg.Node = strings.TrimSpace(raw.Node)
	}
	if meta.IsDefined("reinit_cycles") {
		cfg.ReinitCycles = raw.ReinitCycles
	}
	if meta.IsDefined("log_level") {
		lvl, ok := logging.ParseLevel(raw.LogLevel)
		if !ok {
			return settings{}, fmt.Errorf("parse log_level: unknown level %q", raw.LogLevel)
		}
		out.LogLevel = lvl
		out.HasLogLevel = true
	}

	if meta.IsDefined("producer", "count") {
		cfg.Producer.Count = raw.Producer.Count
	}
	if meta.IsDefined("producer", "interval") {
		d, err := config.ParseDuration("producer.interval", raw.Producer.Interval, false)
		if err != nil {
			return settings{}, err
		}
		cfg.Producer.Interval = d
	}
	if meta.IsDefined("producer", "payload_len") {
		cfg.Producer.PayloadLen = raw.Producer.PayloadLen
	}

	if meta.IsDefined("consumer", "poll_interval") {
		d, err := config.ParseDuration("consumer.poll_interval", raw.Consumer.PollInterval, true)
		if err != nil {
			return settings{}, err
		}
		cfg.Consumer.PollInterval = d
	}
	if meta.IsDefined("consumer", "drain_batch") {
		cfg.Consumer.DrainBatch = raw.Consumer.DrainBatch
	}

	if meta.IsDefined("admin", "listen_addr") {
		cfg.AdminListenAddr = strings.TrimSpace(raw.Admin.ListenAddr)
	}
	return out, nil
}
