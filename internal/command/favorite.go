package command

import "context"

// FavoriteCommand toggles the favorite on a result row or clears it.
type FavoriteCommand struct {
	deps *Dependencies
}

func NewFavoriteCommand(deps *Dependencies) *FavoriteCommand {
	return &FavoriteCommand{deps: deps}
}

func (c *FavoriteCommand) Name() string        { return "fav" }
func (c *FavoriteCommand) Usage() string       { return "fav <row> | unfav" }
func (c *FavoriteCommand) Description() string { return "Star or unstar a player" }

func (c *FavoriteCommand) Execute(_ context.Context, params map[string]any) error {
	if err := c.deps.ensure(); err != nil {
		return err
	}

	switch stringParam(params, "action") {
	case "clear":
		c.deps.Session.ClearFavorite()
	default:
		row, _ := intParam(params, "row")
		_, _ = c.deps.Session.ToggleFavoriteRow(row)
	}
	return c.deps.reply()
}

// ShowCommand re-renders the favorite panel, the last rows and the last report.
type ShowCommand struct {
	deps *Dependencies
}

func NewShowCommand(deps *Dependencies) *ShowCommand {
	return &ShowCommand{deps: deps}
}

func (c *ShowCommand) Name() string        { return "show" }
func (c *ShowCommand) Usage() string       { return "show" }
func (c *ShowCommand) Description() string { return "Show favorite, results and report" }

func (c *ShowCommand) Execute(_ context.Context, _ map[string]any) error {
	if err := c.deps.ensure(); err != nil {
		return err
	}
	c.deps.Session.Reconciler().Refresh()
	c.deps.Presenter.ShowReport(c.deps.Session.Report())
	return nil
}
