package client

import (
	"context"
	"strings"
	"time"

	"github.com/kapu/courtside-go/internal/compose"
	"github.com/kapu/courtside-go/internal/domain"
	"github.com/kapu/courtside-go/internal/util"
	apperrors "github.com/kapu/courtside-go/pkg/errors"
	"go.uber.org/zap"
)

// ReportState is the last generated report. Text is empty when no report is
// available to post.
type ReportState struct {
	Text        string
	SubjectName string
	GeneratedAt time.Time
}

type ReportAPI interface {
	OnThisDay(ctx context.Context, name, date string) (*domain.OnThisDayResponse, error)
}

// ReportPipeline issues one AI request per call and owns ReportState. Calls
// are not serialized: the last one to finish wins.
type ReportPipeline struct {
	api    ReportAPI
	logger *zap.Logger
	now    func() time.Time
	state  ReportState
}

func NewReportPipeline(api ReportAPI, logger *zap.Logger) *ReportPipeline {
	return &ReportPipeline{api: api, logger: logger, now: time.Now}
}

// Generate asks for an "on this day" report about subject for date, today in
// Eastern time when date is nil. On failure the report text is cleared and
// the error returned unchanged.
func (p *ReportPipeline) Generate(ctx context.Context, subject string, date *time.Time) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", apperrors.NewValidationError("name required", "name", subject)
	}

	day := util.DayET(p.now())
	if date != nil {
		day = date.Format(util.DateLayout)
	}

	resp, err := p.api.OnThisDay(ctx, subject, day)
	if err != nil {
		p.state.Text = ""
		p.logger.Warn("Report generation failed",
			zap.String("subject", subject),
			zap.String("kind", apperrors.KindOf(err)),
			zap.Error(err),
		)
		return "", err
	}

	text := compose.ReportOrPlaceholder(resp.Report)
	p.state = ReportState{Text: text, SubjectName: subject, GeneratedAt: p.now()}
	return text, nil
}

func (p *ReportPipeline) State() ReportState {
	return p.state
}

func (p *ReportPipeline) Reset() {
	p.state = ReportState{}
}
