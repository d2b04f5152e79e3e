// Package balldontlie talks to the balldontlie NBA data API.
package balldontlie

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kapu/courtside-go/internal/constants"
	"github.com/kapu/courtside-go/internal/domain"
	"github.com/kapu/courtside-go/internal/metrics"
	apperrors "github.com/kapu/courtside-go/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const collaborator = "balldontlie"

type ClientConfig struct {
	APIKey         string
	BaseURL        string
	RequestsPerMin int
	Timeout        time.Duration
}

// Client issues single, unretried requests. Every call waits on a shared
// limiter so bursts from the proxy stay inside the upstream plan.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	games      GamesCache
	recorder   metrics.Recorder
	logger     *zap.Logger
}

// GamesCache stores games listings per YYYY-MM-DD day.
type GamesCache interface {
	GetGames(ctx context.Context, date string) (*domain.GameListing, bool)
	SetGames(ctx context.Context, date string, listing *domain.GameListing, ttl time.Duration)
}

func NewClient(cfg ClientConfig, games GamesCache, recorder metrics.Recorder, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = constants.APIConfig.BallDontLieBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.APIConfig.BallDontLieTimeout
	}
	rpm := cfg.RequestsPerMin
	if rpm <= 0 {
		rpm = 30
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), min(rpm, 5)),
		games:      games,
		recorder:   recorder,
		logger:     logger,
	}
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dest any) error {
	body, err := c.doRequest(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		c.recorder.RecordUpstream(collaborator, metrics.OutcomeError)
		return apperrors.NewParseError("unexpected balldontlie response", string(body), err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.waitError(ctx, err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperrors.NewServiceError("failed to build request", collaborator, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.callError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.callError(ctx, err)
	}

	c.logger.Debug("balldontlie request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.recorder.RecordUpstream(collaborator, metrics.OutcomeError)
		c.logger.Warn("balldontlie returned an error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, apperrors.NewUpstreamError(collaborator, resp.StatusCode, string(body))
	}

	c.recorder.RecordUpstream(collaborator, metrics.OutcomeOK)
	return body, nil
}

// waitError reports a limiter wait that cannot finish before the deadline as
// a timeout. The limiter fails such waits up front, before ctx expires.
func (c *Client) waitError(ctx context.Context, err error) error {
	if deadline, ok := ctx.Deadline(); ok && ctx.Err() == nil {
		c.recorder.RecordUpstream(collaborator, metrics.OutcomeTimeout)
		c.logger.Warn("balldontlie rate limit wait exceeds deadline", zap.Duration("remaining", time.Until(deadline)))
		return apperrors.NewTimeoutError(collaborator+" request", time.Until(deadline), err)
	}
	return c.callError(ctx, err)
}

// callError separates deadline expiry from other transport failures.
func (c *Client) callError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		c.recorder.RecordUpstream(collaborator, metrics.OutcomeTimeout)
		return apperrors.NewTimeoutError(collaborator+" request", 0, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		c.recorder.RecordUpstream(collaborator, metrics.OutcomeTimeout)
		return apperrors.NewTimeoutError(collaborator+" request", c.httpClient.Timeout, err)
	}
	c.recorder.RecordUpstream(collaborator, metrics.OutcomeTransport)
	return apperrors.NewTransportError(collaborator, err)
}
