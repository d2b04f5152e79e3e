package command

import "context"

type TweetCommand struct {
	deps *Dependencies
}

func NewTweetCommand(deps *Dependencies) *TweetCommand {
	return &TweetCommand{deps: deps}
}

func (c *TweetCommand) Name() string        { return "tweet" }
func (c *TweetCommand) Usage() string       { return "tweet @handle" }
func (c *TweetCommand) Description() string { return "Mention @handle with the last report on X" }

func (c *TweetCommand) Execute(ctx context.Context, params map[string]any) error {
	if err := c.deps.ensure(); err != nil {
		return err
	}
	_, _ = c.deps.Session.Tweet(ctx, stringParam(params, "handle"))
	return c.deps.reply()
}
