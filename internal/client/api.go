package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kapu/courtside-go/internal/constants"
	"github.com/kapu/courtside-go/internal/domain"
	apperrors "github.com/kapu/courtside-go/pkg/errors"
	"go.uber.org/zap"
)

// Collaborator labels used in error messages ("AI error: HTTP 500").
const (
	collabSearch  = "Search"
	collabGames   = "Games"
	collabProfile = "Profile"
	collabAI      = "AI"
	collabPost    = "X post"
)

// APIClient calls the courtside proxy. Each call is one request: nothing is
// retried, and every failure comes back as one error kind.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewAPIClient(baseURL string, timeout time.Duration, logger *zap.Logger) *APIClient {
	if timeout <= 0 {
		timeout = constants.APIConfig.ClientTimeout
	}
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *APIClient) SearchPlayers(ctx context.Context, query string) (*domain.PlayerSearchResult, error) {
	var result domain.PlayerSearchResult
	params := url.Values{"q": {query}}
	if err := c.call(ctx, collabSearch, http.MethodGet, "/api/players/search", params, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) ListGames(ctx context.Context, date string) (*domain.GameListing, error) {
	var listing domain.GameListing
	params := url.Values{"date": {date}}
	if err := c.call(ctx, collabGames, http.MethodGet, "/api/games", params, nil, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// Profile asks for season averages; season 0 lets the proxy pick the current one.
func (c *APIClient) Profile(ctx context.Context, name string, season int) (*domain.PlayerProfile, error) {
	params := url.Values{"name": {name}}
	if season > 0 {
		params.Set("season", strconv.Itoa(season))
	}
	var profile domain.PlayerProfile
	if err := c.call(ctx, collabProfile, http.MethodGet, "/api/players/profile", params, nil, &profile); err != nil {
		if apperrors.StatusOf(err) == http.StatusNotFound {
			return nil, apperrors.NewNotFoundError("player", name)
		}
		return nil, err
	}
	return &profile, nil
}

func (c *APIClient) OnThisDay(ctx context.Context, name, date string) (*domain.OnThisDayResponse, error) {
	var resp domain.OnThisDayResponse
	body := domain.OnThisDayRequest{Name: name, Date: date, TZ: constants.DefaultTimeZone}
	if err := c.call(ctx, collabAI, http.MethodPost, "/api/ai/on-this-day", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PostText treats an explicit ok:false body like a failed status.
func (c *APIClient) PostText(ctx context.Context, req domain.PostTextRequest) (*domain.PostResult, error) {
	var result domain.PostResult
	raw, status, err := c.do(ctx, collabPost, http.MethodPost, "/api/x/post-text", nil, req)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, apperrors.NewParseError("unexpected response from "+collabPost, string(raw), err)
	}
	if !result.OK {
		return nil, apperrors.NewUpstreamError(collabPost, status, string(raw))
	}
	return &result, nil
}

func (c *APIClient) call(ctx context.Context, collaborator, method, path string, params url.Values, payload, dest any) error {
	raw, _, err := c.do(ctx, collaborator, method, path, params, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return apperrors.NewParseError("unexpected response from "+collaborator, string(raw), err)
	}
	return nil
}

// do returns the body of a 2xx response. Anything else is an UpstreamError
// carrying the status and a body excerpt.
func (c *APIClient) do(ctx context.Context, collaborator, method, path string, params url.Values, payload any) ([]byte, int, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, apperrors.NewServiceError("failed to encode request", "client", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, apperrors.NewTransportError(collaborator, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, c.callError(ctx, collaborator, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, c.callError(ctx, collaborator, err)
	}

	c.logger.Debug("Proxy call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, proxyError(collaborator, resp.StatusCode, raw)
	}
	return raw, resp.StatusCode, nil
}

type proxyErrorBody struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Stage   string   `json:"stage"`
	Missing []string `json:"missing"`
}

// proxyError restores the kinds the proxy names on the wire through "code"
// and "stage". Every other failure is an UpstreamError with the status.
func proxyError(collaborator string, status int, raw []byte) error {
	var body proxyErrorBody
	_ = json.Unmarshal(raw, &body)
	message := func(fallback string) string {
		if body.Error != "" {
			return body.Error
		}
		return fallback
	}

	switch {
	case body.Stage == "config" || body.Code == apperrors.CodeConfiguration:
		cfgErr := apperrors.NewConfigurationError(message(collaborator+" is not configured"), body.Missing)
		cfgErr.StatusCode = status
		return cfgErr
	case body.Code == apperrors.CodeConflict || status == http.StatusConflict:
		return apperrors.NewConflictError(message("already posted today"), "")
	case body.Code == apperrors.CodeTimeout:
		timeout := apperrors.NewTimeoutError(collaborator+" request", 0, nil)
		timeout.Message = message(timeout.Message)
		timeout.StatusCode = status
		return timeout
	case body.Code == apperrors.CodeNotFound:
		notFound := apperrors.NewNotFoundError(strings.ToLower(collaborator), "")
		notFound.Message = message(notFound.Message)
		notFound.StatusCode = status
		return notFound
	}
	return apperrors.NewUpstreamError(collaborator, status, string(raw))
}

func (c *APIClient) callError(ctx context.Context, collaborator string, err error) error {
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return apperrors.NewTimeoutError(collaborator+" request", c.httpClient.Timeout, err)
	}
	return apperrors.NewTransportError(collaborator, err)
}
