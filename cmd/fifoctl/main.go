package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/danmuck/cmdfifo/internal/fifo"
	"github.com/danmuck/cmdfifo/internal/host"
	"github.com/danmuck/cmdfifo/internal/logging"
	"github.com/danmuck/cmdfifo/internal/observability"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "", "path to fifoctl TOML config (defaults built in)")
	adminAddr := flag.String("admin", "", "admin listen address, overrides admin.listen_addr")
	flag.Parse()

	logging.ConfigureRuntime()

	s := settings{Host: host.DefaultConfig()}
	if path := strings.TrimSpace(*configPath); path != "" {
		loaded, err := loadSettings(path)
		if err != nil {
			fatalf("%v", err)
		}
		s = loaded
	}
	if s.HasLogLevel && os.Getenv(logging.EnvLogLevel) == "" {
		zerolog.SetGlobalLevel(s.LogLevel)
	}
	if addr := strings.TrimSpace(*adminAddr); addr != "" {
		s.Host.AdminListenAddr = addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f := fifo.InitDefault(fifo.Options{Recorder: observability.NewFifoRecorder(s.Host.Node)})
	reg, err := host.BuiltinRegistry(s.Host, logging.Component("commands"))
	if err != nil {
		fatalf("%v", err)
	}
	if err := host.New(f, reg, s.Host).Run(ctx); err != nil {
		fatalf("%v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fifoctl: "+format+"\n", args...)
	os.Exit(1)
}
