package command

import "context"

type SearchCommand struct {
	deps *Dependencies
}

func NewSearchCommand(deps *Dependencies) *SearchCommand {
	return &SearchCommand{deps: deps}
}

func (c *SearchCommand) Name() string        { return "search" }
func (c *SearchCommand) Usage() string       { return "search <name>" }
func (c *SearchCommand) Description() string { return "Find players by name" }

// Execute replaces the result rows; the presenter prints them as they render.
func (c *SearchCommand) Execute(ctx context.Context, params map[string]any) error {
	if err := c.deps.ensure(); err != nil {
		return err
	}
	_, _ = c.deps.Session.Search(ctx, stringParam(params, "query"))
	return c.deps.reply()
}
