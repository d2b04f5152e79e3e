package ai

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kapu/courtside-go/internal/constants"
	"github.com/kapu/courtside-go/internal/util"
	apperrors "github.com/kapu/courtside-go/pkg/errors"
	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"
)

var (
	httpStatusRegex = regexp.MustCompile(`\b([45]\d{2})\b`)
	geminiCodeRegex = regexp.MustCompile(`"code":\s*(\d{3})`)
)

type ModelManager struct {
	primary        TextProvider
	fallback       TextProvider
	logger         *zap.Logger
	circuitBreaker *util.CircuitBreaker
}

type ModelManagerConfig struct {
	GeminiAPIKey       string
	OpenAIAPIKey       string
	DefaultGeminiModel string
	DefaultOpenAIModel string
	EnableFallback     bool
}

func NewModelManager(ctx context.Context, cfg ModelManagerConfig, logger *zap.Logger) (*ModelManager, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, apperrors.NewConfigurationError("Gemini API key is not configured", []string{"GOOGLE_API_KEY"})
	}

	geminiClient, err := NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}

	defaultGemini := cfg.DefaultGeminiModel
	if defaultGemini == "" {
		defaultGemini = "gemini-2.5-pro"
	}
	defaultOpenAI := cfg.DefaultOpenAIModel
	if defaultOpenAI == "" {
		defaultOpenAI = "gpt-4.1-mini"
	}

	var fallback TextProvider
	if cfg.EnableFallback {
		if openaiProvider := NewOpenAIProvider(cfg.OpenAIAPIKey, defaultOpenAI, logger); openaiProvider != nil {
			fallback = openaiProvider
			logger.Info("OpenAI fallback enabled", zap.String("model", defaultOpenAI))
		} else {
			logger.Info("OpenAI fallback disabled (no API key)")
		}
	}

	return NewModelManagerWithProviders(NewGeminiProvider(geminiClient, defaultGemini, logger), fallback, logger), nil
}

// NewModelManagerWithProviders wires explicit providers; fallback may be nil.
func NewModelManagerWithProviders(primary, fallback TextProvider, logger *zap.Logger) *ModelManager {
	mm := &ModelManager{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
	mm.circuitBreaker = util.NewCircuitBreaker(util.CircuitBreakerOptions{
		Name:                "ai",
		FailureThreshold:    constants.CircuitBreakerConfig.FailureThreshold,
		ResetTimeout:        constants.CircuitBreakerConfig.ResetTimeout,
		HealthCheckInterval: constants.CircuitBreakerConfig.HealthCheckInterval,
		HealthCheck:         mm.healthCheck,
	}, logger)
	return mm
}

// GenerateText sends one request to the primary provider, and to the fallback
// only when the primary failed for a reason other than the caller's context.
func (mm *ModelManager) GenerateText(ctx context.Context, req Request) (Completion, error) {
	if !mm.circuitBreaker.Allow() {
		return Completion{}, mm.circuitOpenError()
	}

	completion, primaryErr := mm.complete(ctx, mm.primary, req)
	if primaryErr == nil {
		mm.circuitBreaker.RecordSuccess()
		return completion, nil
	}
	mm.recordFailure(primaryErr)
	if mm.fallback == nil || isContextError(primaryErr) {
		return Completion{}, mm.classify(primaryErr)
	}

	mm.logger.Warn("Primary provider failed, trying fallback",
		zap.String("fallback", mm.fallback.Name()),
		zap.Error(primaryErr),
	)
	completion, fallbackErr := mm.complete(ctx, mm.fallback, req)
	if fallbackErr != nil {
		mm.recordFailure(fallbackErr)
		return Completion{}, mm.classify(fallbackErr)
	}
	mm.circuitBreaker.RecordSuccess()
	completion.Fallback = true
	return completion, nil
}

func (mm *ModelManager) complete(ctx context.Context, provider TextProvider, req Request) (Completion, error) {
	if provider == nil {
		return Completion{}, fmt.Errorf("model provider is not configured")
	}
	completion, err := provider.Complete(ctx, req)
	if err != nil {
		mm.logger.Error("Completion failed", zap.String("provider", provider.Name()), zap.Error(err))
		return Completion{}, err
	}
	if completion.Provider == "" {
		completion.Provider = provider.Name()
	}
	return completion, nil
}

func (mm *ModelManager) circuitOpenError() error {
	status := mm.circuitBreaker.Status()
	nextRetry := "unknown"
	if status.NextRetryTime != nil {
		nextRetry = util.FormatET(*status.NextRetryTime, "15:04")
	}
	mm.logger.Error("AI service unavailable (circuit open)",
		zap.String("state", status.State.String()),
		zap.Int("failure_count", status.FailureCount),
		zap.String("next_retry", nextRetry),
	)

	err := apperrors.NewServiceError("AI service temporarily unavailable", "ai", "generate", nil)
	err.StatusCode = 503
	err.Context["next_retry"] = nextRetry
	return err
}

// classify maps a provider failure onto the error taxonomy.
func (mm *ModelManager) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError("AI generation", 0, err)
	}
	if status := providerStatus(err); status > 0 {
		upstream := apperrors.NewUpstreamError("AI", status, err.Error())
		upstream.Cause = err
		return upstream
	}
	return apperrors.NewServiceError("AI generation failed", "ai", "generate", err)
}

func (mm *ModelManager) recordFailure(err error) {
	if err == nil || !isServiceFailure(err) {
		return
	}

	timeout := constants.CircuitBreakerConfig.ResetTimeout
	if providerStatus(err) == 429 {
		timeout = constants.CircuitBreakerConfig.RateLimitTimeout
	}
	mm.circuitBreaker.RecordFailure(timeout)
}

// healthCheck reports whether either provider answers a tiny completion.
func (mm *ModelManager) healthCheck() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	answers := func(p TextProvider) bool {
		if p == nil {
			return false
		}
		c, err := p.Complete(ctx, healthCheckRequest())
		return err == nil && strings.TrimSpace(c.Text) != ""
	}
	primaryOK := answers(mm.primary)
	fallbackOK := !primaryOK && answers(mm.fallback)

	mm.logger.Info("AI health check",
		zap.Bool("primary", primaryOK),
		zap.Bool("fallback", fallbackOK),
	)
	return primaryOK || fallbackOK
}

func (mm *ModelManager) GetCircuitStatus() util.CircuitBreakerStatus {
	return mm.circuitBreaker.Status()
}

func (mm *ModelManager) ResetCircuit() {
	mm.circuitBreaker.Reset()
}

// isServiceFailure reports failures that say something about the provider's
// health (timeouts, 5xx, 429), as opposed to bad requests.
func isServiceFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "ETIMEDOUT") {
		return true
	}
	status := providerStatus(err)
	return status == 429 || status >= 500
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// providerStatus extracts an HTTP status from an SDK error, 0 when none is found.
func providerStatus(err error) int {
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return openaiErr.StatusCode
	}

	msg := err.Error()
	if matches := geminiCodeRegex.FindStringSubmatch(msg); len(matches) > 1 {
		if code, convErr := strconv.Atoi(matches[1]); convErr == nil {
			return code
		}
	}
	if strings.Contains(msg, "Rate limit") || strings.Contains(msg, "quota") {
		return 429
	}
	if matches := httpStatusRegex.FindStringSubmatch(msg); len(matches) > 1 {
		if code, convErr := strconv.Atoi(matches[1]); convErr == nil {
			return code
		}
	}
	return 0
}
