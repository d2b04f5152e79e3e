package command

import "context"

type GamesCommand struct {
	deps *Dependencies
}

func NewGamesCommand(deps *Dependencies) *GamesCommand {
	return &GamesCommand{deps: deps}
}

func (c *GamesCommand) Name() string        { return "games" }
func (c *GamesCommand) Usage() string       { return "games [YYYY-MM-DD]" }
func (c *GamesCommand) Description() string { return "NBA games for a day (today, Eastern)" }

func (c *GamesCommand) Execute(ctx context.Context, params map[string]any) error {
	if err := c.deps.ensure(); err != nil {
		return err
	}
	listing, err := c.deps.Session.Games(ctx, stringParam(params, "date"))
	if err == nil {
		c.deps.Presenter.ShowGames(listing)
	}
	return c.deps.reply()
}
