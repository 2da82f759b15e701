package config

import (
	"fmt"
	"os"
)

func Template() string {
	return fifoctlTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(fifoctlTemplate), 0o600)
}

const fifoctlTemplate = `node = "cmdfifo.local"
reinit_cycles = 1
log_level = "info"

[producer]
count = 5
interval = "20ms"
payload_len = 64

[consumer]
poll_interval = "10ms"
drain_batch = 8

[admin]
listen_addr = ""
`
