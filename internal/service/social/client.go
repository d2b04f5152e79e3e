// Package social posts to X and looks up X users.
package social

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/kapu/courtside-go/internal/constants"
	"github.com/kapu/courtside-go/internal/domain"
	"github.com/kapu/courtside-go/internal/metrics"
	"github.com/kapu/courtside-go/internal/util"
	apperrors "github.com/kapu/courtside-go/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const collaborator = "X"

type Config struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
	BaseURL      string
	TokenURL     string
	Timeout      time.Duration
}

// Missing lists unset credentials in a stable order.
func (c Config) Missing() []string {
	missing := make([]string, 0, 4)
	if c.APIKey == "" {
		missing = append(missing, "X_API_KEY")
	}
	if c.APISecret == "" {
		missing = append(missing, "X_API_SECRET")
	}
	if c.AccessToken == "" {
		missing = append(missing, "X_ACCESS_TOKEN")
	}
	if c.AccessSecret == "" {
		missing = append(missing, "X_ACCESS_SECRET")
	}
	return missing
}

// Client signs user-context calls (posting, users/me) with OAuth 1.0a and
// app-only calls (user lookup) with an OAuth 2 client-credentials bearer.
// A client built with any credential missing stays unconfigured for its
// lifetime and fails every call with a ConfigurationError.
type Client struct {
	userClient *http.Client
	appClient  *http.Client
	baseURL    string
	missing    []string
	recorder   metrics.Recorder
	logger     *zap.Logger
}

func NewClient(cfg Config, recorder metrics.Recorder, logger *zap.Logger) *Client {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = constants.APIConfig.XBaseURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = constants.APIConfig.XTokenURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.APIConfig.XTimeout
	}

	c := &Client{
		baseURL:  baseURL,
		missing:  cfg.Missing(),
		recorder: recorder,
		logger:   logger,
	}

	logger.Info("X credentials loaded",
		zap.String("X_API_KEY", util.Mask(cfg.APIKey)),
		zap.String("X_API_SECRET", util.Mask(cfg.APISecret)),
		zap.String("X_ACCESS_TOKEN", util.Mask(cfg.AccessToken)),
		zap.String("X_ACCESS_SECRET", util.Mask(cfg.AccessSecret)),
	)
	if len(c.missing) > 0 {
		logger.Warn("X client not configured", zap.Strings("missing", c.missing))
		return c
	}

	base := &http.Client{Timeout: timeout}

	userCtx := context.WithValue(context.Background(), oauth1.HTTPClient, base)
	c.userClient = oauth1.NewConfig(cfg.APIKey, cfg.APISecret).
		Client(userCtx, oauth1.NewToken(cfg.AccessToken, cfg.AccessSecret))

	appCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	c.appClient = (&clientcredentials.Config{
		ClientID:     cfg.APIKey,
		ClientSecret: cfg.APISecret,
		TokenURL:     tokenURL,
	}).Client(appCtx)

	return c
}

func (c *Client) Configured() bool {
	return len(c.missing) == 0
}

func (c *Client) Missing() []string {
	return append([]string(nil), c.missing...)
}

func (c *Client) gate() error {
	if c.Configured() {
		return nil
	}
	return apperrors.NewConfigurationError("X client not configured", c.Missing())
}

type tweetResponse struct {
	Data *struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// Post publishes text as-is; callers cap its length.
func (c *Client) Post(ctx context.Context, text string) (*domain.PostResult, error) {
	if err := c.gate(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, apperrors.NewServiceError("failed to encode tweet", "x", "post", err)
	}

	body, err := c.do(ctx, c.userClient, http.MethodPost, "/tweets", payload)
	if err != nil {
		return nil, err
	}

	var resp tweetResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Data == nil || resp.Data.ID == "" {
		return nil, apperrors.NewParseError("unexpected X tweet response", string(body), err)
	}

	c.logger.Info("Tweet posted", zap.String("tweet_id", resp.Data.ID))
	return &domain.PostResult{OK: true, TweetID: resp.Data.ID, Text: text}, nil
}

type userResponse struct {
	Data *domain.XUser `json:"data"`
}

// Me returns the account the access token belongs to.
func (c *Client) Me(ctx context.Context) (*domain.XUser, error) {
	if err := c.gate(); err != nil {
		return nil, err
	}

	body, err := c.do(ctx, c.userClient, http.MethodGet, "/users/me", nil)
	if err != nil {
		return nil, err
	}
	var resp userResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Data == nil {
		return nil, apperrors.NewParseError("unexpected X users/me response", string(body), err)
	}
	return resp.Data, nil
}

// UserByUsername looks a handle up with the app-only token. X answers unknown
// handles with 200 and an errors array, which maps to NotFoundError.
func (c *Client) UserByUsername(ctx context.Context, handle string) (*domain.XUser, error) {
	if err := c.gate(); err != nil {
		return nil, err
	}

	body, err := c.do(ctx, c.appClient, http.MethodGet, "/users/by/username/"+url.PathEscape(handle), nil)
	if err != nil {
		if apperrors.StatusOf(err) == http.StatusNotFound {
			return nil, apperrors.NewNotFoundError("X user", handle)
		}
		return nil, err
	}

	var resp userResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperrors.NewParseError("unexpected X user response", string(body), err)
	}
	if resp.Data == nil {
		return nil, apperrors.NewNotFoundError("X user", handle)
	}
	return resp.Data, nil
}

func (c *Client) do(ctx context.Context, httpClient *http.Client, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, apperrors.NewServiceError("failed to build X request", "x", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, c.callError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.callError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.recorder.RecordUpstream(collaborator, metrics.OutcomeError)
		c.logger.Warn("X returned an error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", apperrors.Excerpt(string(body))),
		)
		return nil, apperrors.NewUpstreamError(collaborator, resp.StatusCode, string(body))
	}

	c.recorder.RecordUpstream(collaborator, metrics.OutcomeOK)
	return body, nil
}

func (c *Client) callError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		c.recorder.RecordUpstream(collaborator, metrics.OutcomeTimeout)
		return apperrors.NewTimeoutError("X request", 0, err)
	}
	// token endpoint failures surface through the transport as *oauth2.RetrieveError
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		c.recorder.RecordUpstream(collaborator, metrics.OutcomeError)
		return apperrors.NewUpstreamError(collaborator, retrieveErr.Response.StatusCode, string(retrieveErr.Body))
	}
	c.recorder.RecordUpstream(collaborator, metrics.OutcomeTransport)
	return apperrors.NewTransportError(collaborator, err)
}
