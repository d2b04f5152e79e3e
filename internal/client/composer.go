package client

import (
	"context"
	"sync"

	"github.com/kapu/courtside-go/internal/compose"
	"github.com/kapu/courtside-go/internal/constants"
	"github.com/kapu/courtside-go/internal/domain"
	apperrors "github.com/kapu/courtside-go/pkg/errors"
	"go.uber.org/zap"
)

// Control is the state of the button that triggers a post.
type Control struct {
	mu       sync.Mutex
	label    string
	disabled bool
}

func NewControl(label string) *Control {
	return &Control{label: label}
}

func (c *Control) Snapshot() (label string, disabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.label, c.disabled
}

// busy disables the control under a progress label and returns the restore func.
func (c *Control) busy(progress string) func() {
	c.mu.Lock()
	original := c.label
	c.label = progress
	c.disabled = true
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		c.label = original
		c.disabled = false
		c.mu.Unlock()
	}
}

type PostAPI interface {
	PostText(ctx context.Context, req domain.PostTextRequest) (*domain.PostResult, error)
}

// PostComposer turns the last report into a mention and posts it. Same-day
// duplicates are rejected by the proxy, never here.
type PostComposer struct {
	api     PostAPI
	reports *ReportPipeline
	control *Control
	logger  *zap.Logger
}

func NewPostComposer(api PostAPI, reports *ReportPipeline, logger *zap.Logger) *PostComposer {
	return &PostComposer{
		api:     api,
		reports: reports,
		control: NewControl(constants.Messages.TweetButtonLabel),
		logger:  logger,
	}
}

func (c *PostComposer) Control() *Control {
	return c.control
}

// ComposeMention builds "@handle report" capped at 280 runes. It needs a
// report and a valid handle, in that order.
func (c *PostComposer) ComposeMention(handle string) (string, error) {
	return compose.ComposeMention(handle, c.reports.State().Text)
}

// PostComposed submits text on behalf of handle. The control is disabled for
// the duration of the call and restored on every return path.
func (c *PostComposer) PostComposed(ctx context.Context, handle, text string) (*domain.PostResult, error) {
	restore := c.control.busy(constants.Messages.PostingLabel)
	defer restore()

	req := domain.PostTextRequest{
		Text:    text,
		Handle:  compose.SanitizeHandle(handle),
		Subject: c.reports.State().SubjectName,
	}
	result, err := c.api.PostText(ctx, req)
	if err != nil {
		c.logger.Warn("Post failed", zap.String("kind", apperrors.KindOf(err)), zap.Error(err))
		return nil, err
	}
	c.logger.Info("Posted mention", zap.String("tweet_id", result.TweetID))
	return result, nil
}

// Tweet composes and posts in one step.
func (c *PostComposer) Tweet(ctx context.Context, handle string) (*domain.PostResult, error) {
	text, err := c.ComposeMention(handle)
	if err != nil {
		return nil, err
	}
	return c.PostComposed(ctx, handle, text)
}
