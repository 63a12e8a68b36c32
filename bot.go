package welcomebot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/prilive-com/welcomebot/internal/activity"
	"github.com/prilive-com/welcomebot/internal/content"
	"github.com/prilive-com/welcomebot/internal/delivery"
	"github.com/prilive-com/welcomebot/internal/handler"
	"github.com/prilive-com/welcomebot/internal/metrics"
	"github.com/prilive-com/welcomebot/internal/resilience"
	"github.com/prilive-com/welcomebot/receiver"
	"github.com/prilive-com/welcomebot/sender"
	"github.com/prilive-com/welcomebot/tg"
)

var (
	ErrNotStarted     = errors.New("welcomebot: not started")
	ErrAlreadyStarted = errors.New("welcomebot: already started")
)

// Bot wires the receiver, the sender and the handler into one process.
type Bot struct {
	token    tg.SecretToken
	logger   *slog.Logger
	sender   *sender.Client
	receiver *receiver.PollingClient
	updates  chan tg.Update
	config   botConfig

	jokes     *content.Rotator[string]
	quotes    *content.Rotator[content.Quote]
	stickers  content.Stickers
	tracker   *activity.Tracker
	deliverer *delivery.Deliverer
	metrics   *metrics.Metrics

	mu      sync.Mutex
	me      *tg.User
	handler *handler.Handler

	closeOnce sync.Once
}

type botConfig struct {
	baseURL string

	// Polling settings
	pollingTimeout   int
	pollingLimit     int
	pollingMaxErrors int
	deleteWebhook    bool

	// Sender settings
	senderConfig sender.Config
	senderOpts   []sender.Option

	// Receiver settings
	receiverConfig receiver.Config
	pollingOpts    []receiver.PollingOption

	updateBufferSize int

	policy      delivery.Policy
	contentFile string

	registerer prometheus.Registerer
	sleeper    resilience.Sleeper
	now        func() time.Time
	seed       *[2]uint64

	logger *slog.Logger
}

// Option configures the Bot.
type Option func(*botConfig)

// WithBaseURL sets the Bot API root for both directions (useful for testing).
func WithBaseURL(url string) Option {
	return func(c *botConfig) {
		c.baseURL = url
	}
}

// WithPolling sets the getUpdates timeout in seconds and the batch size.
func WithPolling(timeout, limit int) Option {
	return func(c *botConfig) {
		c.pollingTimeout = timeout
		c.pollingLimit = limit
	}
}

// WithPollingMaxErrors sets max consecutive errors.
func WithPollingMaxErrors(max int) Option {
	return func(c *botConfig) {
		c.pollingMaxErrors = max
	}
}

// WithDeleteWebhook deletes existing webhook before polling.
func WithDeleteWebhook(delete bool) Option {
	return func(c *botConfig) {
		c.deleteWebhook = delete
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *botConfig) {
		c.logger = logger
	}
}

// WithRetries sets max retry attempts per Bot API call.
func WithRetries(max int) Option {
	return func(c *botConfig) {
		c.senderConfig.MaxRetries = max
	}
}

// WithRateLimit sets the global outbound rate limit.
func WithRateLimit(globalRPS float64, burst int) Option {
	return func(c *botConfig) {
		c.senderConfig.GlobalRPS = globalRPS
		c.senderConfig.GlobalBurst = burst
	}
}

// WithGroupRateLimit sets the per-chat limit for group chats.
func WithGroupRateLimit(rps float64, burst int) Option {
	return func(c *botConfig) {
		c.senderConfig.GroupRPS = rps
		c.senderConfig.GroupBurst = burst
	}
}

// WithUpdateBufferSize sets the updates channel buffer size.
func WithUpdateBufferSize(size int) Option {
	return func(c *botConfig) {
		c.updateBufferSize = size
	}
}

// WithDeliveryPolicy sets the sticker retry loops. Non-positive values keep
// the defaults.
func WithDeliveryPolicy(maxRetries int, retryDelay time.Duration, outerAttempts int, outerDelay time.Duration) Option {
	return func(c *botConfig) {
		c.policy = delivery.Policy{
			MaxRetries:    maxRetries,
			RetryDelay:    retryDelay,
			OuterAttempts: outerAttempts,
			OuterDelay:    outerDelay,
		}
	}
}

// WithContentFile loads jokes, quotes and stickers from a YAML file instead
// of the built-in catalog.
func WithContentFile(path string) Option {
	return func(c *botConfig) {
		c.contentFile = path
	}
}

// WithMetrics registers the bot's collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *botConfig) {
		c.registerer = reg
	}
}

// WithSleeper replaces the wall clock used by every retry loop.
func WithSleeper(s resilience.Sleeper) Option {
	return func(c *botConfig) {
		c.sleeper = s
	}
}

// WithClock overrides time.Now for activity tracking and rollovers.
func WithClock(now func() time.Time) Option {
	return func(c *botConfig) {
		c.now = now
	}
}

// WithSeed makes every random choice reproducible.
func WithSeed(seed1, seed2 uint64) Option {
	return func(c *botConfig) {
		c.seed = &[2]uint64{seed1, seed2}
	}
}

// WithHTTPClient sets the HTTP client used for outbound calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *botConfig) {
		c.senderOpts = append(c.senderOpts, sender.WithHTTPClient(client))
	}
}

// New builds a Bot. Nothing touches the network until Start.
func New(token string, opts ...Option) (*Bot, error) {
	if token == "" {
		return nil, tg.ErrInvalidToken
	}

	cfg := botConfig{
		pollingTimeout:   30,
		pollingLimit:     100,
		pollingMaxErrors: 10,
		updateBufferSize: 100,
		senderConfig:     sender.DefaultConfig(),
		receiverConfig:   receiver.DefaultConfig(),
		policy:           delivery.DefaultPolicy(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	secretToken := tg.SecretToken(token)
	cfg.senderConfig.Token = secretToken
	cfg.receiverConfig.PollingTimeout = cfg.pollingTimeout
	cfg.receiverConfig.PollingLimit = cfg.pollingLimit
	cfg.receiverConfig.PollingMaxErrors = cfg.pollingMaxErrors
	cfg.receiverConfig.DeleteWebhookFirst = cfg.deleteWebhook
	if cfg.baseURL != "" {
		cfg.senderConfig.BaseURL = cfg.baseURL
		cfg.receiverConfig.BaseURL = cfg.baseURL
	}
	if err := cfg.receiverConfig.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	if cfg.registerer == nil {
		cfg.registerer = prometheus.NewRegistry()
	}
	newRand := func() *rand.Rand {
		if cfg.seed != nil {
			return rand.New(rand.NewPCG(cfg.seed[0], cfg.seed[1]))
		}
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	catalogs, err := content.LoadFile(cfg.contentFile)
	if err != nil {
		return nil, err
	}

	m := metrics.New(cfg.registerer)

	jokes, err := content.NewRotator(catalogs.Jokes,
		content.WithRand(newRand()),
		content.WithResetHook(func() { logger.Debug("joke catalog exhausted, starting over") }),
	)
	if err != nil {
		return nil, fmt.Errorf("welcomebot: jokes: %w", err)
	}
	quotes, err := content.NewRotator(catalogs.Quotes,
		content.WithRand(newRand()),
		content.WithResetHook(func() { logger.Debug("quote catalog exhausted, starting over") }),
	)
	if err != nil {
		return nil, fmt.Errorf("welcomebot: quotes: %w", err)
	}

	senderOpts := append([]sender.Option{sender.WithLogger(logger)}, cfg.senderOpts...)
	if cfg.sleeper != nil {
		senderOpts = append(senderOpts, sender.WithSleeper(cfg.sleeper))
		cfg.pollingOpts = append(cfg.pollingOpts, receiver.WithPollingSleeper(cfg.sleeper))
	}
	senderClient, err := sender.NewFromConfig(cfg.senderConfig, senderOpts...)
	if err != nil {
		return nil, err
	}

	deliveryOpts := []delivery.Option{
		delivery.WithResolver(delivery.NewStickerSetResolver(senderClient)),
		delivery.WithRand(newRand()),
		delivery.WithObserver(m),
		delivery.WithLogger(logger),
	}
	if cfg.sleeper != nil {
		deliveryOpts = append(deliveryOpts, delivery.WithSleeper(cfg.sleeper))
	}

	updates := make(chan tg.Update, cfg.updateBufferSize)

	bot := &Bot{
		token:     secretToken,
		logger:    logger,
		sender:    senderClient,
		updates:   updates,
		config:    cfg,
		jokes:     jokes,
		quotes:    quotes,
		stickers:  catalogs.Stickers,
		deliverer: delivery.New(cfg.policy, deliveryOpts...),
		metrics:   m,
	}
	bot.tracker = activity.NewTracker(cfg.now(), activity.WithResetHook(func(p activity.Period) {
		m.RecordReset(p.String())
		logger.Info("activity counter reset", "period", p.String())
	}))

	bot.receiver = receiver.NewPollingClient(
		secretToken,
		updates,
		logger,
		cfg.receiverConfig,
		cfg.pollingOpts...,
	)

	return bot, nil
}

// Start verifies the token with getMe and begins polling. A failed identity
// check is returned and nothing is started.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handler != nil {
		return ErrAlreadyStarted
	}

	me, err := b.sender.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("welcomebot: identity check: %w", err)
	}
	b.logger.Info("bot identity verified", "username", me.Username, "bot_id", me.ID)

	var seedOpt []handler.Option
	if b.config.seed != nil {
		seedOpt = append(seedOpt, handler.WithRand(rand.New(rand.NewPCG(b.config.seed[0], b.config.seed[1]))))
	}
	h, err := handler.New(b.sender, handler.Deps{
		Bot:       me,
		Jokes:     b.jokes,
		Quotes:    b.quotes,
		Stickers:  b.stickers,
		Tracker:   b.tracker,
		Deliverer: b.deliverer,
	}, append(seedOpt,
		handler.WithLogger(b.logger),
		handler.WithRecorder(b.metrics),
		handler.WithClock(b.config.now),
	)...)
	if err != nil {
		return err
	}

	if err := b.receiver.Start(ctx); err != nil {
		return err
	}
	b.me = me
	b.handler = h
	return nil
}

// Run handles updates one at a time until ctx ends or polling gives up.
// It returns nil after a normal shutdown.
func (b *Bot) Run(ctx context.Context) error {
	b.mu.Lock()
	h := b.handler
	b.mu.Unlock()
	if h == nil {
		return ErrNotStarted
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.receiver.Done():
			if err := b.receiver.Err(); err != nil {
				return fmt.Errorf("welcomebot: polling stopped: %w", err)
			}
			return nil
		case u := <-b.updates:
			h.Handle(ctx, u)
		}
	}
}

// Rollover applies any due activity counter reset.
func (b *Bot) Rollover() []activity.Period {
	return b.tracker.Rollover(b.config.now())
}

// Me returns the identity reported by getMe, or nil before Start.
func (b *Bot) Me() *tg.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.me
}

// IsHealthy returns health status for K8s probes.
func (b *Bot) IsHealthy() bool {
	return b.receiver.IsHealthy()
}

// Stop gracefully stops polling.
func (b *Bot) Stop() {
	b.receiver.Stop()
}

// Close releases all resources.
func (b *Bot) Close() error {
	var err error
	b.closeOnce.Do(func() {
		b.Stop()
		err = b.sender.Close()
	})
	return err
}

// Sender returns the underlying sender client for advanced usage.
func (b *Bot) Sender() *sender.Client {
	return b.sender
}
