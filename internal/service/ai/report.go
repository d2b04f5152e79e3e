package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kapu/courtside-go/internal/compose"
	"github.com/kapu/courtside-go/internal/constants"
	"github.com/kapu/courtside-go/internal/prompt"
	apperrors "github.com/kapu/courtside-go/pkg/errors"
	"go.uber.org/zap"
)

// TextGenerator is the part of ModelManager the report service needs.
type TextGenerator interface {
	GenerateText(ctx context.Context, req Request) (Completion, error)
}

type ReportService struct {
	generator TextGenerator
	prompts   *prompt.PromptBuilder
	timeout   time.Duration
	logger    *zap.Logger
}

// NewReportService accepts a nil generator; every call then fails with a
// ConfigurationError instead of reaching the model.
func NewReportService(generator TextGenerator, prompts *prompt.PromptBuilder, timeout time.Duration, logger *zap.Logger) *ReportService {
	if prompts == nil {
		prompts = prompt.NewPromptBuilder()
	}
	if timeout <= 0 {
		timeout = constants.APIConfig.AIGenerateTimeout
	}
	return &ReportService{
		generator: generator,
		prompts:   prompts,
		timeout:   timeout,
		logger:    logger,
	}
}

// OnThisDay asks the model for a one-line blurb about name on monthDay
// ("January 2"). The result is normalized and capped; an empty completion is
// returned as the "No report returned." placeholder.
func (s *ReportService) OnThisDay(ctx context.Context, name, monthDay string) (string, error) {
	raw, err := s.generate(ctx, name, monthDay)
	if err != nil {
		return "", err
	}
	return compose.ReportOrPlaceholder(raw), nil
}

// MentionLine generates the blurb used for a direct mention post, with any
// section header lines the model added folded away.
func (s *ReportService) MentionLine(ctx context.Context, name, monthDay string) (string, error) {
	raw, err := s.generate(ctx, name, monthDay)
	if err != nil {
		return "", err
	}
	return compose.ReportOrPlaceholder(compose.StripSectionHeaders(raw)), nil
}

func (s *ReportService) generate(ctx context.Context, name, monthDay string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.NewValidationError("name required", "name", name)
	}
	if s.generator == nil {
		return "", apperrors.NewConfigurationError("AI report is not configured", []string{"GOOGLE_API_KEY"})
	}

	blurb, err := s.prompts.OnThisDay(name, monthDay, constants.TextLimits.ReportMaxRunes)
	if err != nil {
		return "", apperrors.NewServiceError("failed to build prompt", "ai", "on_this_day", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	completion, err := s.generator.GenerateText(ctx, Request{Prompt: blurb, Preset: PresetBlurb})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", apperrors.NewTimeoutError("AI report", s.timeout, err)
		}
		s.logger.Error("On this day generation failed",
			zap.String("player", name),
			zap.String("month_day", monthDay),
			zap.Error(err),
		)
		return "", err
	}

	s.logger.Info("On this day report generated",
		zap.String("player", name),
		zap.String("month_day", monthDay),
		zap.String("provider", completion.Provider),
		zap.Bool("fallback", completion.Fallback),
		zap.Int("raw_length", len(completion.Text)),
		zap.Duration("took", time.Since(start)),
	)

	return StripMarkup(completion.Text), nil
}
