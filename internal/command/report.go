package command

import "context"

type ReportCommand struct {
	deps *Dependencies
}

func NewReportCommand(deps *Dependencies) *ReportCommand {
	return &ReportCommand{deps: deps}
}

func (c *ReportCommand) Name() string  { return "report" }
func (c *ReportCommand) Usage() string { return "report [row | name]" }
func (c *ReportCommand) Description() string {
	return "AI \"On This Day\" for the favorite, a row or a name"
}

func (c *ReportCommand) Execute(ctx context.Context, params map[string]any) error {
	if err := c.deps.ensure(); err != nil {
		return err
	}

	var err error
	switch stringParam(params, "target") {
	case "row":
		row, _ := intParam(params, "row")
		_, err = c.deps.Session.ReportRow(ctx, row)
	case "name":
		_, err = c.deps.Session.GenerateReport(ctx, stringParam(params, "name"), nil)
	default:
		_, err = c.deps.Session.ReportFavorite(ctx)
	}

	if err != nil {
		return c.deps.reply()
	}
	c.deps.Presenter.ShowReport(c.deps.Session.Report())
	return nil
}
