package receiver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/sony/gobreaker/v2"

	"github.com/prilive-com/welcomebot/internal/httpclient"
	"github.com/prilive-com/welcomebot/internal/resilience"
	"github.com/prilive-com/welcomebot/internal/scrub"
	"github.com/prilive-com/welcomebot/tg"
)

const maxPollResponseSize = 50 << 20 // 50MB for updates

// PollingClient polls Telegram's getUpdates API for updates.
type PollingClient struct {
	token   tg.SecretToken
	baseURL string
	updates chan<- tg.Update
	logger  *slog.Logger

	timeout              int
	limit                int
	maxErrors            int
	allowedUpdates       []string
	deleteWebhookOnStart bool
	backoff              resilience.Backoff

	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	sleeper resilience.Sleeper

	started           atomic.Bool
	running           atomic.Bool
	offset            atomic.Int64
	consecutiveErrors atomic.Int32
	stopCh            chan struct{}
	stopOnce          sync.Once
	done              chan struct{}
	err               atomic.Pointer[error]
	wg                sync.WaitGroup
}

// PollingOption configures the PollingClient.
type PollingOption func(*PollingClient)

// WithPollingHTTPClient sets a custom HTTP client.
func WithPollingHTTPClient(client *http.Client) PollingOption {
	return func(c *PollingClient) {
		c.client = client
	}
}

// WithPollingCircuitBreaker sets a custom circuit breaker.
func WithPollingCircuitBreaker(breaker *gobreaker.CircuitBreaker[[]byte]) PollingOption {
	return func(c *PollingClient) {
		c.breaker = breaker
	}
}

// WithPollingMaxErrors sets maximum consecutive errors before stopping.
func WithPollingMaxErrors(max int) PollingOption {
	return func(c *PollingClient) {
		c.maxErrors = max
	}
}

// WithPollingAllowedUpdates sets the update types to receive.
func WithPollingAllowedUpdates(types []string) PollingOption {
	return func(c *PollingClient) {
		c.allowedUpdates = types
	}
}

// WithPollingDeleteWebhook enables webhook deletion before starting.
func WithPollingDeleteWebhook(delete bool) PollingOption {
	return func(c *PollingClient) {
		c.deleteWebhookOnStart = delete
	}
}

// WithPollingSleeper replaces the wall clock used between failed polls.
func WithPollingSleeper(s resilience.Sleeper) PollingOption {
	return func(c *PollingClient) {
		c.sleeper = s
	}
}

// NewPollingClient creates a new long polling client.
func NewPollingClient(
	token tg.SecretToken,
	updates chan<- tg.Update,
	logger *slog.Logger,
	cfg Config,
	opts ...PollingOption,
) *PollingClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultConfig().BaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &PollingClient{
		token:                token,
		baseURL:              baseURL,
		updates:              updates,
		logger:               logger,
		timeout:              cfg.PollingTimeout,
		limit:                cfg.PollingLimit,
		maxErrors:            cfg.PollingMaxErrors,
		allowedUpdates:       cfg.AllowedUpdates,
		deleteWebhookOnStart: cfg.DeleteWebhookFirst,
		backoff: resilience.Backoff{
			Base:       cfg.RetryInitialDelay,
			Max:        cfg.RetryMaxDelay,
			Multiplier: cfg.RetryBackoffFactor,
			Jitter:     0.25,
		},
		client:  httpclient.New(httpclient.LongPollConfig(cfg.PollingTimeout)),
		sleeper: resilience.RealSleeper{},
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}

	c.breaker = resilience.NewBreaker[[]byte](resilience.BreakerConfig{
		Name:         "welcomebot-polling",
		MaxRequests:  cfg.BreakerMaxRequests,
		Interval:     cfg.BreakerInterval,
		Timeout:      cfg.BreakerTimeout,
		FailureRatio: 0.6,
		MinRequests:  3,
		OnStateChange: func(name, from, to string) {
			logger.Info("circuit breaker state changed",
				"name", name,
				"from", from,
				"to", to,
			)
		},
	})

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start begins polling for updates. A client can be started once.
func (c *PollingClient) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	if c.deleteWebhookOnStart {
		c.logger.Info("deleting existing webhook")
		if err := DeleteWebhook(ctx, c.client, c.baseURL, c.token, false); err != nil {
			c.finish(err)
			return fmt.Errorf("failed to delete webhook: %w", err)
		}
	}

	c.running.Store(true)
	c.wg.Go(func() {
		c.finish(c.pollLoop(ctx))
	})

	c.logger.Info("long polling started",
		"timeout", c.timeout,
		"limit", c.limit,
		"max_errors", c.maxErrors,
	)

	return nil
}

// Stop signals the poll loop to exit and waits for it.
func (c *PollingClient) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
	if c.started.Load() {
		c.logger.Info("long polling stopped")
	}
}

// Done is closed once the poll loop has exited for any reason.
func (c *PollingClient) Done() <-chan struct{} {
	return c.done
}

// Err returns why polling gave up, or nil after a normal stop.
func (c *PollingClient) Err() error {
	if p := c.err.Load(); p != nil {
		return *p
	}
	return nil
}

// Running returns true if polling is active.
func (c *PollingClient) Running() bool {
	return c.running.Load()
}

// IsHealthy reports whether polling is running below its error budget.
func (c *PollingClient) IsHealthy() bool {
	if c.maxErrors == 0 {
		return c.running.Load()
	}
	return c.running.Load() && int(c.consecutiveErrors.Load()) < c.maxErrors
}

// ConsecutiveErrors returns the current error count.
func (c *PollingClient) ConsecutiveErrors() int32 {
	return c.consecutiveErrors.Load()
}

// Offset returns the current update offset.
func (c *PollingClient) Offset() int64 {
	return c.offset.Load()
}

func (c *PollingClient) finish(err error) {
	if err != nil {
		c.err.Store(&err)
	}
	c.running.Store(false)
	close(c.done)
}

// pollLoop returns nil on cancellation or Stop, an error when it gives up.
func (c *PollingClient) pollLoop(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-c.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		if ctx.Err() != nil {
			c.logger.Info("polling stopped")
			return nil
		}

		updates, err := c.fetchUpdates(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, tg.ErrUnauthorized) {
				c.logger.Error("polling rejected: bot token is not valid", "error", err)
				return err
			}

			errCount := c.consecutiveErrors.Add(1)
			delay := c.backoff.Delay(int(errCount))
			c.logger.Error("fetch updates failed",
				"error", err,
				"consecutive_errors", errCount,
				"retry_delay", delay,
			)

			if c.maxErrors > 0 && int(errCount) >= c.maxErrors {
				c.logger.Error("max consecutive errors exceeded", "max_errors", c.maxErrors)
				return fmt.Errorf("%w: %w", ErrTooManyErrors, err)
			}

			if err := c.sleeper.Sleep(ctx, delay); err != nil {
				return nil
			}
			continue
		}

		c.consecutiveErrors.Store(0)

		// The offset advances only after the update is handed over, so
		// anything not yet consumed is fetched again on restart.
		for _, update := range updates {
			select {
			case c.updates <- update:
				if int64(update.UpdateID) >= c.offset.Load() {
					c.offset.Store(int64(update.UpdateID) + 1)
				}
				c.logger.Debug("update received", "update_id", update.UpdateID)
			case <-ctx.Done():
				c.logger.Info("stopping update delivery")
				return nil
			}
		}
	}
}

type getUpdatesResponse struct {
	OK          bool                   `json:"ok"`
	Result      []tg.Update            `json:"result,omitempty"`
	ErrorCode   int                    `json:"error_code,omitempty"`
	Description string                 `json:"description,omitempty"`
	Parameters  *tg.ResponseParameters `json:"parameters,omitempty"`
}

func (c *PollingClient) fetchUpdates(ctx context.Context) ([]tg.Update, error) {
	params := url.Values{}
	params.Set("timeout", strconv.Itoa(c.timeout))
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("offset", strconv.FormatInt(c.offset.Load(), 10))

	if len(c.allowedUpdates) > 0 {
		encoded, err := json.Marshal(c.allowedUpdates)
		if err == nil {
			params.Set("allowed_updates", string(encoded))
		}
	}

	apiURL := fmt.Sprintf("%s/bot%s/getUpdates?%s",
		c.baseURL,
		c.token.Value(),
		params.Encode(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", scrub.TokenFromError(err, c.token))
	}

	respBody, err := c.breaker.Execute(func() ([]byte, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxPollResponseSize+1))
		if err != nil {
			return nil, err
		}
		if int64(len(body)) > maxPollResponseSize {
			return nil, tg.ErrResponseTooLarge
		}

		if resp.StatusCode != http.StatusOK {
			var failed getUpdatesResponse
			if json.Unmarshal(body, &failed) == nil && !failed.OK && failed.ErrorCode != 0 {
				return nil, tg.NewAPIError("getUpdates", failed.ErrorCode, failed.Description)
			}
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		return body, nil
	})
	if err != nil {
		return nil, fmt.Errorf("getUpdates: %w", scrub.TokenFromError(err, c.token))
	}

	var response getUpdatesResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !response.OK {
		return nil, tg.NewAPIError("getUpdates", response.ErrorCode, response.Description)
	}

	return response.Result, nil
}
