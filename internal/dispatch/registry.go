package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/danmuck/cmdfifo/internal/fifo"
)

var (
	ErrHandlerExists   = errors.New("dispatch: handler already registered")
	ErrHandlerNil      = errors.New("dispatch: handler is nil")
	ErrReservedCommand = errors.New("dispatch: command id is reserved")
	ErrUnknownCommand  = errors.New("dispatch: unknown command")
)

// Handler processes one dequeued message.
type Handler interface {
	Handle(ctx context.Context, m fifo.Message) error
}

type HandlerFunc func(ctx context.Context, m fifo.Message) error

func (fn HandlerFunc) Handle(ctx context.Context, m fifo.Message) error {
	return fn(ctx, m)
}

// Registration describes one registered command.
type Registration struct {
	CommandID int32
	Name      string
	Handler   Handler
}

// Registry maps command ids to handlers.
type Registry struct {
	mu    sync.RWMutex
	items map[int32]Registration
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[int32]Registration)}
}

// Register binds commandID to h. Negative ids are reserved for sentinels.
func (r *Registry) Register(commandID int32, name string, h Handler) error {
	if h == nil {
		return ErrHandlerNil
	}
	if commandID < 0 {
		return fmt.Errorf("%w: %d", ErrReservedCommand, commandID)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("command.%d", commandID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[commandID]; ok {
		return fmt.Errorf("%w: %d (%s)", ErrHandlerExists, commandID, existing.Name)
	}
	r.items[commandID] = Registration{CommandID: commandID, Name: name, Handler: h}
	return nil
}

func (r *Registry) Resolve(commandID int32) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.items[commandID]
	return reg, ok
}

// List returns registrations ordered by command id.
func (r *Registry) List() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Registration, 0, len(r.items))
	for _, reg := range r.items {
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CommandID < out[j].CommandID
	})
	return out
}

// Dispatch routes m to its handler.
func (r *Registry) Dispatch(ctx context.Context, m fifo.Message) error {
	reg, ok := r.Resolve(m.CommandID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownCommand, m.CommandID)
	}
	return reg.Handler.Handle(ctx, m)
}
