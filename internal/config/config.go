package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

var (
	ErrUnknownKeys  = errors.New("config: unknown keys")
	ErrInvalidValue = errors.New("config: invalid value")
)

// MaxPayloadLen bounds producer.payload_len. Lengths above the fifo payload
// size are allowed and exercise truncation.
const MaxPayloadLen = 4096

// File is the fifoctl TOML shape. Durations stay strings until Validate.
type File struct {
	Node         string          `toml:"node"`
	ReinitCycles int             `toml:"reinit_cycles"`
	LogLevel     string          `toml:"log_level"`
	Producer     ProducerSection `toml:"producer"`
	Consumer     ConsumerSection `toml:"consumer"`
	Admin        AdminSection    `toml:"admin"`
}

type ProducerSection struct {
	Count      int    `toml:"count"`
	Interval   string `toml:"interval"`
	PayloadLen int    `toml:"payload_len"`
}

type ConsumerSection struct {
	PollInterval string `toml:"poll_interval"`
	DrainBatch   int    `toml:"drain_batch"`
}

type AdminSection struct {
	ListenAddr string `toml:"listen_addr"`
}

// Decode reads path and rejects keys the File shape does not know.
func Decode(path string) (File, toml.MetaData, error) {
	var f File
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return File{}, toml.MetaData{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return File{}, toml.MetaData{}, fmt.Errorf("%w (%s): %s", ErrUnknownKeys, path, strings.Join(keys, ", "))
	}
	if err := Validate(f, meta); err != nil {
		return File{}, toml.MetaData{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return f, meta, nil
}

// Validate checks every key that meta reports as defined.
func Validate(f File, meta toml.MetaData) error {
	if meta.IsDefined("node") && strings.TrimSpace(f.Node) == "" {
		return fmt.Errorf("%w: node is empty", ErrInvalidValue)
	}
	if meta.IsDefined("reinit_cycles") && f.ReinitCycles < 1 {
		return fmt.Errorf("%w: reinit_cycles must be >= 1", ErrInvalidValue)
	}
	if meta.IsDefined("producer", "count") && f.Producer.Count < 0 {
		return fmt.Errorf("%w: producer.count must be >= 0", ErrInvalidValue)
	}
	if meta.IsDefined("producer", "payload_len") && (f.Producer.PayloadLen < 0 || f.Producer.PayloadLen > MaxPayloadLen) {
		return fmt.Errorf("%w: producer.payload_len must be in [0, %d]", ErrInvalidValue, MaxPayloadLen)
	}
	if meta.IsDefined("consumer", "drain_batch") && f.Consumer.DrainBatch < 1 {
		return fmt.Errorf("%w: consumer.drain_batch must be >= 1", ErrInvalidValue)
	}
	if meta.IsDefined("producer", "interval") {
		if _, err := ParseDuration("producer.interval", f.Producer.Interval, false); err != nil {
			return err
		}
	}
	if meta.IsDefined("consumer", "poll_interval") {
		if _, err := ParseDuration("consumer.poll_interval", f.Consumer.PollInterval, true); err != nil {
			return err
		}
	}
	return nil
}

// ParseDuration parses raw for key. Zero is rejected when positive is set.
func ParseDuration(key, raw string, positive bool) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: parse %s: %w", ErrInvalidValue, key, err)
	}
	if d < 0 || (positive && d == 0) {
		return 0, fmt.Errorf("%w: %s out of range: %s", ErrInvalidValue, key, d)
	}
	return d, nil
}
