package sender

import (
	"time"

	"github.com/prilive-com/welcomebot/tg"
)

// Config holds sender configuration.
type Config struct {
	// Bot token
	Token tg.SecretToken

	// API settings
	BaseURL        string
	RequestTimeout time.Duration
	KeepAlive      time.Duration
	MaxIdleConns   int
	IdleTimeout    time.Duration

	// Rate limiting
	GlobalRPS       float64
	GlobalBurst     int
	PerChatRPS      float64
	PerChatBurst    int
	GroupRPS        float64 // Rate limit for group chats (negative chat IDs). 0 = use PerChatRPS.
	GroupBurst      int     // Burst for group chats.
	MaxChatLimiters int     // Cap on tracked per-chat limiters. 0 = 10000.

	// Retry settings
	MaxRetries    int
	RetryBaseWait time.Duration
	RetryMaxWait  time.Duration
	RetryFactor   float64

	// Content limits
	MaxTextLength int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:         "https://api.telegram.org",
		RequestTimeout:  30 * time.Second,
		KeepAlive:       30 * time.Second,
		MaxIdleConns:    100,
		IdleTimeout:     90 * time.Second,
		GlobalRPS:       30,
		GlobalBurst:     10,
		PerChatRPS:      1,
		PerChatBurst:    3,
		GroupRPS:        0.33, // ~20/min, Telegram's group chat limit
		GroupBurst:      3,
		MaxChatLimiters: 10000,
		MaxRetries:      3,
		RetryBaseWait:   time.Second,
		RetryMaxWait:    30 * time.Second,
		RetryFactor:     2.0,
		MaxTextLength:   4096,
	}
}
