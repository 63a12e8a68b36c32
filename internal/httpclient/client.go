// Package httpclient builds the tuned HTTP clients used to reach the Bot API.
package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// Config holds HTTP client configuration.
type Config struct {
	// Timeouts
	RequestTimeout        time.Duration // Whole request including body read
	ConnectTimeout        time.Duration
	TLSTimeout            time.Duration
	ResponseHeaderTimeout time.Duration // 0 = RequestTimeout
	IdleTimeout           time.Duration
	KeepAlive             time.Duration

	// Connection pool
	MaxIdleConns        int
	MaxIdleConnsPerHost int
}

// DefaultConfig returns sensible defaults for Telegram API calls.
func DefaultConfig() Config {
	return Config{
		RequestTimeout:        30 * time.Second,
		ConnectTimeout:        10 * time.Second,
		TLSTimeout:            10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		IdleTimeout:           90 * time.Second,
		KeepAlive:             30 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
	}
}

// LongPollConfig returns a Config whose timeouts outlast a getUpdates call
// holding the connection open for pollSeconds.
func LongPollConfig(pollSeconds int) Config {
	cfg := DefaultConfig()
	cfg.RequestTimeout = time.Duration(pollSeconds+10) * time.Second
	cfg.ResponseHeaderTimeout = time.Duration(pollSeconds+5) * time.Second
	cfg.MaxIdleConns = 10
	return cfg
}

// New creates a new HTTP client with the given configuration.
func New(cfg Config) *http.Client {
	headerTimeout := cfg.ResponseHeaderTimeout
	if headerTimeout == 0 {
		headerTimeout = cfg.RequestTimeout
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: cfg.KeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		TLSHandshakeTimeout:   cfg.TLSTimeout,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleTimeout,
		ResponseHeaderTimeout: headerTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.RequestTimeout,
	}
}

// CloseIdle releases idle keep-alive connections held by client.
func CloseIdle(client *http.Client) {
	if client == nil {
		return
	}
	client.CloseIdleConnections()
}
