package command

import (
	"context"
	"maps"

	"github.com/kapu/courtside-go/internal/domain"
)

// CommandEvent is one parsed command waiting to run.
type CommandEvent struct {
	Type   domain.CommandType
	Params map[string]any
}

type Dispatcher interface {
	Publish(ctx context.Context, events ...CommandEvent) (int, error)
}

// NormalizeFunc converts a domain command type plus params into the registry key
// and normalized parameter map used for execution.
type NormalizeFunc func(domain.CommandType, map[string]any) (string, map[string]any)

type sequentialDispatcher struct {
	registry  *Registry
	normalize NormalizeFunc
}

// NewSequentialDispatcher creates a dispatcher that executes command events in
// the order they are received.
func NewSequentialDispatcher(registry *Registry, normalize NormalizeFunc) Dispatcher {
	return &sequentialDispatcher{registry: registry, normalize: normalize}
}

func (d *sequentialDispatcher) Publish(ctx context.Context, events ...CommandEvent) (int, error) {
	if d == nil || d.registry == nil || d.normalize == nil {
		return 0, nil
	}

	executed := 0
	for _, event := range events {
		if event.Type == domain.CommandUnknown {
			continue
		}

		key, params := d.normalize(event.Type, cloneParams(event.Params))
		if err := d.registry.Execute(ctx, key, params); err != nil {
			return executed, err
		}
		executed++
	}
	return executed, nil
}

// Normalize maps command types to registry keys. The favorite and unfavorite
// types share the "fav" handler.
func Normalize(t domain.CommandType, params map[string]any) (string, map[string]any) {
	switch t {
	case domain.CommandFavorite:
		params["action"] = "toggle"
		return "fav", params
	case domain.CommandUnfav:
		params["action"] = "clear"
		return "fav", params
	default:
		return t.String(), params
	}
}

func cloneParams(src map[string]any) map[string]any {
	if src == nil {
		return map[string]any{}
	}
	return maps.Clone(src)
}
