package command

import (
	"context"
	"errors"

	"github.com/kapu/courtside-go/internal/adapter"
	"github.com/kapu/courtside-go/internal/client"
	"go.uber.org/zap"
)

var errNotConfigured = errors.New("command dependencies not configured")

type Command interface {
	Name() string
	Usage() string
	Description() string
	Execute(ctx context.Context, params map[string]any) error
}

type Dependencies struct {
	Session   *client.Session
	Presenter *adapter.Presenter
	Registry  *Registry
	Quit      func()
	Logger    *zap.Logger
}

func (d *Dependencies) ensure() error {
	if d == nil || d.Session == nil || d.Presenter == nil {
		return errNotConfigured
	}
	return nil
}

// reply prints the session status line after an operation.
func (d *Dependencies) reply() error {
	d.Presenter.ShowStatus(d.Session.Status())
	return nil
}

func stringParam(params map[string]any, key string) string {
	v, _ := params[key].(string)
	return v
}

func intParam(params map[string]any, key string) (int, bool) {
	v, ok := params[key].(int)
	return v, ok
}
