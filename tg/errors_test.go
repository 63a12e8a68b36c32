package tg_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/welcomebot/tg"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *tg.APIError
		expected string
	}{
		{
			name:     "basic error",
			err:      &tg.APIError{Code: 400, Description: "Bad Request", Method: "sendSticker"},
			expected: "welcomebot: sendSticker failed: Bad Request (code=400)",
		},
		{
			name:     "error with retry_after",
			err:      &tg.APIError{Code: 429, Description: "Too Many Requests", Method: "sendMessage", RetryAfter: 30 * time.Second},
			expected: "welcomebot: sendMessage failed: Too Many Requests (code=429, retry_after=30s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAPIError_IsRetryable(t *testing.T) {
	tests := []struct {
		code      int
		retryable bool
	}{
		{400, false},
		{401, false},
		{403, false},
		{404, false},
		{429, true},
		{500, true},
		{502, true},
		{504, true},
		{505, false},
	}

	for _, tt := range tests {
		err := &tg.APIError{Code: tt.code}
		assert.Equal(t, tt.retryable, err.IsRetryable(), "code %d", tt.code)
	}
}

func TestNewAPIError_UnwrapsToSentinel(t *testing.T) {
	err := tg.NewAPIError("getStickerSet", 400, "Bad Request: STICKERSET_INVALID")
	require.NotNil(t, err)

	assert.True(t, errors.Is(err, tg.ErrStickerSetInvalid))
	assert.Equal(t, "getStickerSet", err.Method)
}

func TestNewAPIErrorWithRetry(t *testing.T) {
	err := tg.NewAPIErrorWithRetry("sendMessage", 429, "Too Many Requests", 30*time.Second)

	assert.Equal(t, 30*time.Second, err.RetryAfter)
	assert.True(t, errors.Is(err, tg.ErrTooManyRequests))
}

func TestDetectSentinel(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		desc     string
		expected error
	}{
		{"bot blocked", 403, "Forbidden: bot was blocked by the user", tg.ErrBotBlocked},
		{"bot kicked", 403, "Forbidden: bot was kicked from the supergroup chat", tg.ErrBotKicked},
		{"chat not found", 400, "Bad Request: chat not found", tg.ErrChatNotFound},
		{"user deactivated", 403, "Forbidden: user is deactivated", tg.ErrUserDeactivated},
		{"not enough rights", 400, "Bad Request: not enough rights to send stickers to the chat", tg.ErrNoRights},
		{"sticker set invalid", 400, "Bad Request: STICKERSET_INVALID", tg.ErrStickerSetInvalid},
		{"wrong file id", 400, "Bad Request: wrong file identifier/HTTP URL specified", tg.ErrWrongFileID},
		{"wrong remote file id", 400, "Bad Request: wrong remote file identifier specified: Wrong padding", tg.ErrWrongFileID},
		{"bad entities", 400, "Bad Request: can't parse entities: Character '!' is reserved", tg.ErrCantParseEntities},

		{"401 unauthorized", 401, "Unauthorized", tg.ErrUnauthorized},
		{"403 forbidden generic", 403, "Forbidden", tg.ErrForbidden},
		{"404 not found generic", 404, "Not Found", tg.ErrNotFound},
		{"429 too many requests", 429, "Too Many Requests", tg.ErrTooManyRequests},

		{"unknown error", 500, "Internal Server Error", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tg.DetectSentinel(tt.code, tt.desc))
		})
	}
}

func TestDetectSentinel_DescriptionPriority(t *testing.T) {
	err := tg.DetectSentinel(403, "Forbidden: bot was blocked by the user")
	assert.Equal(t, tg.ErrBotBlocked, err, "description should take precedence over code")
}

func TestValidationError(t *testing.T) {
	err := tg.NewValidationError("chat_id", "must be non-zero")
	assert.Equal(t, "welcomebot: validation: chat_id - must be non-zero", err.Error())
}

func TestConfigError(t *testing.T) {
	err := tg.NewConfigError("TELEGRAM_BOT_TOKEN", "is required")

	assert.Equal(t, "welcomebot: config: TELEGRAM_BOT_TOKEN - is required", err.Error())
	assert.True(t, errors.Is(err, tg.ErrInvalidConfig))
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		tg.ErrUnauthorized,
		tg.ErrForbidden,
		tg.ErrNotFound,
		tg.ErrTooManyRequests,
		tg.ErrBotBlocked,
		tg.ErrBotKicked,
		tg.ErrChatNotFound,
		tg.ErrUserDeactivated,
		tg.ErrNoRights,
		tg.ErrStickerSetInvalid,
		tg.ErrWrongFileID,
		tg.ErrCantParseEntities,
		tg.ErrCircuitOpen,
		tg.ErrMaxRetries,
		tg.ErrResponseTooLarge,
		tg.ErrInvalidToken,
		tg.ErrInvalidConfig,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j {
				assert.False(t, errors.Is(err1, err2), "sentinels should be distinct: %v and %v", err1, err2)
			}
		}
	}
}
