package command

import (
	"context"

	"github.com/kapu/courtside-go/internal/adapter"
)

type HelpCommand struct {
	deps *Dependencies
}

func NewHelpCommand(deps *Dependencies) *HelpCommand {
	return &HelpCommand{deps: deps}
}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Usage() string       { return "help" }
func (c *HelpCommand) Description() string { return "Show this list" }

func (c *HelpCommand) Execute(_ context.Context, _ map[string]any) error {
	if c.deps == nil || c.deps.Presenter == nil {
		return errNotConfigured
	}

	commands := c.deps.Registry.Commands()
	entries := make([]adapter.HelpEntry, 0, len(commands))
	for _, cmd := range commands {
		entries = append(entries, adapter.HelpEntry{Usage: cmd.Usage(), Description: cmd.Description()})
	}
	c.deps.Presenter.ShowHelp(entries)
	return nil
}

// QuitCommand ends the prompt loop.
type QuitCommand struct {
	deps *Dependencies
}

func NewQuitCommand(deps *Dependencies) *QuitCommand {
	return &QuitCommand{deps: deps}
}

func (c *QuitCommand) Name() string        { return "quit" }
func (c *QuitCommand) Usage() string       { return "quit" }
func (c *QuitCommand) Description() string { return "Leave courtside" }

func (c *QuitCommand) Execute(_ context.Context, _ map[string]any) error {
	if c.deps != nil && c.deps.Quit != nil {
		c.deps.Quit()
	}
	return nil
}

// RegisterAll registers every terminal command on deps.Registry.
func RegisterAll(deps *Dependencies) {
	for _, cmd := range []Command{
		NewSearchCommand(deps),
		NewGamesCommand(deps),
		NewFavoriteCommand(deps),
		NewShowCommand(deps),
		NewReportCommand(deps),
		NewTweetCommand(deps),
		NewProfileCommand(deps),
		NewHelpCommand(deps),
		NewQuitCommand(deps),
	} {
		deps.Registry.Register(cmd)
	}
}
