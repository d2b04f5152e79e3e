package social

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kapu/courtside-go/internal/compose"
	"github.com/kapu/courtside-go/internal/domain"
	"github.com/kapu/courtside-go/internal/metrics"
	"github.com/kapu/courtside-go/internal/service/dedup"
	"github.com/kapu/courtside-go/internal/util"
	apperrors "github.com/kapu/courtside-go/pkg/errors"
	"go.uber.org/zap"
)

// Poster is the X surface the publisher and handlers depend on.
type Poster interface {
	Configured() bool
	Missing() []string
	Post(ctx context.Context, text string) (*domain.PostResult, error)
	Me(ctx context.Context) (*domain.XUser, error)
	UserByUsername(ctx context.Context, handle string) (*domain.XUser, error)
}

// MentionWriter produces the blurb for a mention post.
type MentionWriter interface {
	MentionLine(ctx context.Context, name, monthDay string) (string, error)
}

// Publisher enforces the daily ledger around posting: a handle and subject
// pair is posted at most once per Eastern calendar day.
type Publisher struct {
	poster   Poster
	ledger   dedup.Ledger
	writer   MentionWriter
	recorder metrics.Recorder
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	inflight map[dedup.Key]struct{}
}

func NewPublisher(poster Poster, ledger dedup.Ledger, writer MentionWriter, recorder metrics.Recorder, logger *zap.Logger) *Publisher {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Publisher{
		poster:   poster,
		ledger:   ledger,
		writer:   writer,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
		inflight: make(map[dedup.Key]struct{}),
	}
}

func (p *Publisher) gate() error {
	if p.poster.Configured() {
		return nil
	}
	return apperrors.NewConfigurationError("X client not configured", p.poster.Missing())
}

// PostText posts free text. When handle and subject are both given, the ledger
// rejects a second post for the same pair on the same day with a ConflictError.
func (p *Publisher) PostText(ctx context.Context, req domain.PostTextRequest) (*domain.PostResult, error) {
	if err := p.gate(); err != nil {
		p.recorder.RecordPost(metrics.PostRejected)
		return nil, err
	}

	text := compose.ToTweetLength(req.Text)
	if text == "" {
		p.recorder.RecordPost(metrics.PostRejected)
		return nil, apperrors.NewValidationError("text required", "text", req.Text)
	}

	var key *dedup.Key
	if strings.TrimSpace(req.Handle) != "" && strings.TrimSpace(req.Subject) != "" {
		k := dedup.NewKey(req.Handle, req.Subject, p.now())
		key = &k
	}

	return p.post(ctx, text, key)
}

// Mention generates a fresh blurb for name and posts it as "@handle blurb".
// The handle must exist on X.
func (p *Publisher) Mention(ctx context.Context, req domain.MentionRequest) (*domain.PostResult, error) {
	if err := p.gate(); err != nil {
		p.recorder.RecordPost(metrics.PostRejected)
		return nil, err
	}

	handle, err := compose.ValidateHandle(req.Handle)
	if err != nil {
		p.recorder.RecordPost(metrics.PostRejected)
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		p.recorder.RecordPost(metrics.PostRejected)
		return nil, apperrors.NewValidationError("name required", "name", req.Name)
	}

	if _, err := p.poster.UserByUsername(ctx, handle); err != nil {
		p.recorder.RecordPost(metrics.PostRejected)
		return nil, err
	}

	now := p.now()
	key := dedup.NewKey(handle, name, now)
	if err := p.checkLedger(ctx, key); err != nil {
		return nil, err
	}

	line, err := p.writer.MentionLine(ctx, name, util.MonthDay(now, nil))
	if err != nil {
		p.recorder.RecordPost(metrics.PostFailed)
		return nil, err
	}

	text, err := compose.ComposeMention(handle, line)
	if err != nil {
		p.recorder.RecordPost(metrics.PostRejected)
		return nil, err
	}

	return p.post(ctx, compose.ToTweetLength(text), &key)
}

func (p *Publisher) checkLedger(ctx context.Context, key dedup.Key) error {
	seen, err := p.ledger.Seen(ctx, key)
	if err != nil {
		p.recorder.RecordPost(metrics.PostFailed)
		return err
	}
	if seen {
		p.recorder.RecordPost(metrics.PostDuplicate)
		p.logger.Info("Post rejected by daily ledger", zap.String("key", key.String()))
		return apperrors.NewConflictError("already posted for this handle and subject today", key.String())
	}
	return nil
}

func (p *Publisher) post(ctx context.Context, text string, key *dedup.Key) (*domain.PostResult, error) {
	if key != nil {
		if !p.acquire(*key) {
			p.recorder.RecordPost(metrics.PostDuplicate)
			return nil, apperrors.NewConflictError("a post for this handle and subject is in flight", key.String())
		}
		defer p.release(*key)

		if err := p.checkLedger(ctx, *key); err != nil {
			return nil, err
		}
	}

	result, err := p.poster.Post(ctx, text)
	if err != nil {
		p.recorder.RecordPost(metrics.PostFailed)
		return nil, err
	}
	p.recorder.RecordPost(metrics.PostSent)

	if key != nil {
		entry := dedup.Entry{Key: *key, PostedAt: p.now(), TweetID: result.TweetID}
		if err := p.ledger.Mark(ctx, entry); err != nil {
			// the tweet is out; a ledger failure must not turn it into an error
			p.logger.Error("Failed to record post in ledger", zap.String("key", key.String()), zap.Error(err))
		}
	}

	return result, nil
}

func (p *Publisher) acquire(key dedup.Key) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inflight[key]; busy {
		return false
	}
	p.inflight[key] = struct{}{}
	return true
}

func (p *Publisher) release(key dedup.Key) {
	p.mu.Lock()
	delete(p.inflight, key)
	p.mu.Unlock()
}
