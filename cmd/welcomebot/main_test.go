package main

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/welcomebot"
	"github.com/prilive-com/welcomebot/internal/config"
	"github.com/prilive-com/welcomebot/internal/testutil"
)

func TestBotOptions_BuildBot(t *testing.T) {
	cfg := &config.Config{
		Token:                 testutil.TestToken,
		APIBaseURL:            "http://127.0.0.1:1",
		PollingTimeout:        30,
		PollingLimit:          100,
		PollingMaxErrors:      10,
		PollingDeleteWebhook:  true,
		SenderMaxRetries:      3,
		RateLimitRPS:          30,
		RateLimitBurst:        10,
		DeliveryMaxRetries:    5,
		DeliveryOuterAttempts: 3,
	}
	reg := prometheus.NewRegistry()

	bot, err := welcomebot.New(cfg.Token.Value(), botOptions(cfg, reg, quietLogger())...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bot.Close() })

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families, "bot metrics land in the supplied registry")
}

func TestBotOptions_InvalidPolling(t *testing.T) {
	cfg := &config.Config{
		Token:                 testutil.TestToken,
		APIBaseURL:            "http://127.0.0.1:1",
		PollingTimeout:        90,
		PollingLimit:          100,
		RateLimitRPS:          30,
		RateLimitBurst:        10,
		DeliveryMaxRetries:    5,
		DeliveryOuterAttempts: 3,
	}
	_, err := welcomebot.New(cfg.Token.Value(), botOptions(cfg, prometheus.NewRegistry(), quietLogger())...)
	assert.Error(t, err)
}
