package command

import "context"

type ProfileCommand struct {
	deps *Dependencies
}

func NewProfileCommand(deps *Dependencies) *ProfileCommand {
	return &ProfileCommand{deps: deps}
}

func (c *ProfileCommand) Name() string        { return "profile" }
func (c *ProfileCommand) Usage() string       { return "profile <name>" }
func (c *ProfileCommand) Description() string { return "Current season averages" }

func (c *ProfileCommand) Execute(ctx context.Context, params map[string]any) error {
	if err := c.deps.ensure(); err != nil {
		return err
	}
	profile, err := c.deps.Session.Profile(ctx, stringParam(params, "name"))
	if err == nil {
		c.deps.Presenter.ShowProfile(profile)
	}
	return c.deps.reply()
}
