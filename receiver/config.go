package receiver

import (
	"fmt"
	"time"

	"github.com/prilive-com/welcomebot/tg"
)

// Config holds long polling configuration.
type Config struct {
	// API root, e.g. https://api.telegram.org
	BaseURL string

	PollingTimeout     int           // Seconds to wait (0-60)
	PollingLimit       int           // Max updates per request (1-100)
	PollingMaxErrors   int           // Max consecutive errors (0 = unlimited)
	DeleteWebhookFirst bool          // Delete webhook before starting
	AllowedUpdates     []string      // Filter update types
	RetryInitialDelay  time.Duration // Initial retry delay
	RetryMaxDelay      time.Duration // Maximum retry delay
	RetryBackoffFactor float64       // Backoff multiplier

	// Channel buffer size for callers that let the receiver size it.
	UpdateBufferSize int

	// Circuit breaker
	BreakerMaxRequests uint32
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:            "https://api.telegram.org",
		PollingTimeout:     30,
		PollingLimit:       100,
		PollingMaxErrors:   10,
		AllowedUpdates:     tg.AllowedUpdates,
		RetryInitialDelay:  time.Second,
		RetryMaxDelay:      60 * time.Second,
		RetryBackoffFactor: 2.0,
		UpdateBufferSize:   100,
		BreakerMaxRequests: 5,
		BreakerInterval:    2 * time.Minute,
		BreakerTimeout:     60 * time.Second,
	}
}

// Validate checks the ranges getUpdates accepts.
func (c Config) Validate() error {
	if c.PollingTimeout < 0 || c.PollingTimeout > 60 {
		return tg.NewConfigError("POLLING_TIMEOUT", fmt.Sprintf("must be 0-60, got %d", c.PollingTimeout))
	}
	if c.PollingLimit < 1 || c.PollingLimit > 100 {
		return tg.NewConfigError("POLLING_LIMIT", fmt.Sprintf("must be 1-100, got %d", c.PollingLimit))
	}
	if c.PollingMaxErrors < 0 {
		return tg.NewConfigError("POLLING_MAX_ERRORS", "must not be negative")
	}
	return nil
}
