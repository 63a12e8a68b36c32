package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/prilive-com/welcomebot/internal/httpclient"
	"github.com/prilive-com/welcomebot/internal/resilience"
	"github.com/prilive-com/welcomebot/internal/scrub"
	"github.com/prilive-com/welcomebot/tg"
)

const (
	maxResponseSize = 10 << 20 // 10MB
)

// Sleeper abstracts time-based waiting for testing.
type Sleeper = resilience.Sleeper

// CircuitBreakerSettings configures the circuit breaker behavior.
type CircuitBreakerSettings struct {
	// MaxRequests is the maximum number of requests allowed in half-open state.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state.
	// If 0, internal counts never reset in closed state.
	Interval time.Duration

	// Timeout is the duration of the open state before transitioning to half-open.
	Timeout time.Duration

	// ReadyToTrip determines if breaker should trip based on failure counts.
	// If nil, uses default (50% failure rate after 3 requests).
	ReadyToTrip func(counts gobreaker.Counts) bool
}

// DefaultCircuitBreakerSettings returns production-ready defaults.
func DefaultCircuitBreakerSettings() CircuitBreakerSettings {
	return CircuitBreakerSettings{
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 3 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= 0.5
		},
	}
}

// Client is the outbound Bot API client.
type Client struct {
	config          Config
	httpClient      *http.Client
	logger          *slog.Logger
	limiter         *resilience.RateLimiter
	breaker         *gobreaker.CircuitBreaker[*apiResponse]
	breakerSettings CircuitBreakerSettings
	sleeper         Sleeper

	closeOnce sync.Once
}

type apiResponse struct {
	OK          bool                   `json:"ok"`
	Result      json.RawMessage        `json:"result,omitempty"`
	ErrorCode   int                    `json:"error_code,omitempty"`
	Description string                 `json:"description,omitempty"`
	Parameters  *tg.ResponseParameters `json:"parameters,omitempty"`
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithRateLimit sets the global rate limit.
func WithRateLimit(globalRPS float64, burst int) Option {
	return func(c *Client) {
		c.config.GlobalRPS = globalRPS
		c.config.GlobalBurst = burst
	}
}

// WithPerChatRateLimit sets per-chat rate limiting parameters.
func WithPerChatRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.config.PerChatRPS = rps
		c.config.PerChatBurst = burst
	}
}

// WithGroupRateLimit sets the per-chat rate limit for group chats (negative chat IDs).
// Telegram limits groups to ~20 messages/minute.
func WithGroupRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.config.GroupRPS = rps
		c.config.GroupBurst = burst
	}
}

// WithRetries sets the number of retries for transient failures.
func WithRetries(max int) Option {
	return func(c *Client) {
		c.config.MaxRetries = max
	}
}

// WithBaseURL sets the API base URL (useful for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.config.BaseURL = url
	}
}

// WithSleeper sets a custom sleeper for retry timing (useful for testing).
func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		c.sleeper = s
	}
}

// WithCircuitBreakerSettings configures the circuit breaker.
func WithCircuitBreakerSettings(settings CircuitBreakerSettings) Option {
	return func(c *Client) {
		c.breakerSettings = settings
	}
}

// New creates a new Client with the given token and options.
func New(token string, opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	cfg.Token = tg.SecretToken(token)
	return NewFromConfig(cfg, opts...)
}

// NewFromConfig creates a Client from a Config.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Token.IsEmpty() {
		return nil, tg.ErrInvalidToken
	}

	c := &Client{config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	if c.httpClient == nil {
		hc := httpclient.DefaultConfig()
		hc.RequestTimeout = c.config.RequestTimeout
		hc.KeepAlive = c.config.KeepAlive
		hc.MaxIdleConns = c.config.MaxIdleConns
		hc.IdleTimeout = c.config.IdleTimeout
		c.httpClient = httpclient.New(hc)
	}

	if c.sleeper == nil {
		c.sleeper = resilience.RealSleeper{}
	}

	if c.breakerSettings.ReadyToTrip == nil {
		c.breakerSettings = DefaultCircuitBreakerSettings()
	}

	c.limiter = resilience.NewRateLimiter(resilience.RateLimiterConfig{
		GlobalRPS:     c.config.GlobalRPS,
		GlobalBurst:   c.config.GlobalBurst,
		KeyRPS:        c.config.PerChatRPS,
		KeyBurst:      c.config.PerChatBurst,
		MaxKeys:       c.config.MaxChatLimiters,
		IdleTTL:       10 * time.Minute,
		SweepInterval: 5 * time.Minute,
		KeyLimit:      c.groupLimit,
	})

	c.breaker = resilience.NewBreaker[*apiResponse](resilience.BreakerConfig{
		Name:         "welcomebot-sender",
		MaxRequests:  c.breakerSettings.MaxRequests,
		Interval:     c.breakerSettings.Interval,
		Timeout:      c.breakerSettings.Timeout,
		ReadyToTrip:  c.breakerSettings.ReadyToTrip,
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name, from, to string) {
			c.logger.Info("circuit breaker state changed",
				"name", name,
				"from", from,
				"to", to,
			)
		},
	})

	return c, nil
}

// Close releases resources used by the client.
// It is safe to call Close more than once and concurrently with other
// methods; in-flight requests finish normally or with context errors.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.limiter.Close()
		httpclient.CloseIdle(c.httpClient)
	})
	return nil
}

// ChatLimiterCount returns the number of active per-chat limiters.
func (c *Client) ChatLimiterCount() int {
	return c.limiter.Len()
}

// groupLimit applies the stricter group rate to negative (group) chat IDs.
func (c *Client) groupLimit(chatID string) (float64, int, bool) {
	if c.config.GroupRPS <= 0 {
		return 0, 0, false
	}
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil || id >= 0 {
		return 0, 0, false
	}
	return c.config.GroupRPS, c.config.GroupBurst, true
}

func (c *Client) executeRequest(ctx context.Context, method string, payload any, chatID string) (*apiResponse, error) {
	if err := c.limiter.Wait(ctx, chatID); err != nil {
		return nil, err
	}
	resp, err := c.breaker.Execute(func() (*apiResponse, error) {
		return c.doRequest(ctx, method, payload)
	})
	if err != nil && resilience.IsBreakerRejection(err) {
		return nil, fmt.Errorf("%w: %w", tg.ErrCircuitOpen, err)
	}
	return resp, err
}

func (c *Client) doRequest(ctx context.Context, method string, payload any) (*apiResponse, error) {
	url := fmt.Sprintf("%s/bot%s/%s", c.config.BaseURL, c.config.Token.Value(), method)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", scrub.TokenFromError(err, c.config.Token))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", scrub.TokenFromError(err, c.config.Token))
	}
	defer resp.Body.Close()

	// Read one byte past the limit to detect overflow without a false positive.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > maxResponseSize {
		return nil, tg.ErrResponseTooLarge
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !apiResp.OK {
		retryAfter := parseRetryAfter(&apiResp, resp)
		if retryAfter > 0 {
			return nil, tg.NewAPIErrorWithRetry(method, apiResp.ErrorCode, apiResp.Description, retryAfter)
		}
		return nil, tg.NewAPIError(method, apiResp.ErrorCode, apiResp.Description)
	}

	return &apiResp, nil
}

func withRetry[T any](c *Client, ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	backoff := resilience.Backoff{
		Base:       c.config.RetryBaseWait,
		Max:        c.config.RetryMaxWait,
		Multiplier: c.config.RetryFactor,
		Jitter:     0.2,
	}

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		// Non-retryable errors return immediately (not wrapped in ErrMaxRetries)
		if !isRetryable(err) {
			return zero, err
		}
		if attempt >= c.config.MaxRetries {
			break
		}

		wait := retryAfter(err)
		if wait == 0 {
			wait = backoff.Delay(attempt + 1)
		}
		if err := c.sleeper.Sleep(ctx, wait); err != nil {
			return zero, err
		}
	}

	return zero, fmt.Errorf("%w: %w", tg.ErrMaxRetries, lastErr)
}

func isRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	// Circuit breaker errors are not retryable
	if errors.Is(err, tg.ErrCircuitOpen) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *tg.APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}

	return false
}

func retryAfter(err error) time.Duration {
	var apiErr *tg.APIError
	if errors.As(err, &apiErr) {
		return apiErr.RetryAfter
	}
	return 0
}

func extractChatID(chatID tg.ChatID) string {
	switch v := chatID.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// isBreakerSuccess determines if an error should count as a circuit breaker failure.
// Only server errors (5xx) and network errors trip the breaker.
// 4xx responses including 429 are client-side pressure, handled by retry_after.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *tg.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 400 && apiErr.Code < 500
	}
	// Context cancellation is not a service failure
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return false
}

// parseRetryAfter extracts retry_after from JSON body (primary) or HTTP header (fallback).
func parseRetryAfter(apiResp *apiResponse, httpResp *http.Response) time.Duration {
	if apiResp.Parameters != nil && apiResp.Parameters.RetryAfter > 0 {
		return time.Duration(apiResp.Parameters.RetryAfter) * time.Second
	}

	if httpResp != nil {
		if retryHeader := httpResp.Header.Get("Retry-After"); retryHeader != "" {
			if seconds, err := strconv.Atoi(retryHeader); err == nil && seconds > 0 {
				return time.Duration(seconds) * time.Second
			}
		}
	}

	return 0
}
