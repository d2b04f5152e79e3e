package command

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

var ErrUnknownCommand = errors.New("unknown command")

// Registry maps lowercase command names to handlers. A later Register with
// the same name replaces the earlier handler.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]Command{}}
}

func (r *Registry) Register(cmd Command) {
	if cmd == nil {
		return
	}
	r.mu.Lock()
	r.byName[strings.ToLower(cmd.Name())] = cmd
	r.mu.Unlock()
}

func (r *Registry) Execute(ctx context.Context, name string, params map[string]any) error {
	cmd, ok := r.lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return cmd.Execute(ctx, params)
}

func (r *Registry) Count() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Commands returns the handlers ordered by name, for help output.
func (r *Registry) Commands() []Command {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	list := slices.Collect(maps.Values(r.byName))
	r.mu.RUnlock()

	slices.SortFunc(list, func(a, b Command) int { return cmp.Compare(a.Name(), b.Name()) })
	return list
}

func (r *Registry) lookup(name string) (Command, bool) {
	if r == nil || name == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.byName[strings.ToLower(name)]
	return cmd, ok
}
