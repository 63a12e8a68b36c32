package sender

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/welcomebot/tg"
)

const testToken = "123456789:ABCdefGHIjklMNOpqrSTUvwxYZ"

func TestNoTokenInTransportErrors(t *testing.T) {
	client, err := New(testToken, WithBaseURL("http://127.0.0.1:1"), WithRetries(0))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.GetMe(context.Background())
	require.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), testToken), "token leaked: %v", err)
}

func TestIsBreakerSuccess(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"400", tg.NewAPIError("sendSticker", 400, "Bad Request"), true},
		{"403", tg.NewAPIError("sendSticker", 403, "Forbidden"), true},
		{"429", tg.NewAPIError("sendSticker", 429, "Too Many Requests"), true},
		{"500", tg.NewAPIError("sendSticker", 500, "Internal Server Error"), false},
		{"network", &net.OpError{Op: "dial", Err: errors.New("refused")}, false},
		{"canceled", context.Canceled, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isBreakerSuccess(tt.err))
		})
	}
}

func TestExtractChatID(t *testing.T) {
	assert.Equal(t, "-100", extractChatID(int64(-100)))
	assert.Equal(t, "7", extractChatID(7))
	assert.Equal(t, "@group", extractChatID("@group"))
}

func TestGroupLimit(t *testing.T) {
	c := &Client{config: DefaultConfig()}

	rps, burst, ok := c.groupLimit("-1001234567890")
	assert.True(t, ok)
	assert.InDelta(t, 0.33, rps, 0.001)
	assert.Equal(t, 3, burst)

	_, _, ok = c.groupLimit("42")
	assert.False(t, ok)
	_, _, ok = c.groupLimit("@group")
	assert.False(t, ok)

	c.config.GroupRPS = 0
	_, _, ok = c.groupLimit("-1")
	assert.False(t, ok)
}

func TestValidateChatID(t *testing.T) {
	tests := []struct {
		name    string
		id      tg.ChatID
		wantErr bool
	}{
		{"group int64", int64(-1001234567890), false},
		{"private int", 42, false},
		{"username", "@welcome", false},
		{"nil", nil, true},
		{"zero", int64(0), true},
		{"empty string", "", true},
		{"bare name", "welcome", true},
		{"float", 1.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateChatID(tt.id)
			if tt.wantErr {
				var vErr *tg.ValidationError
				assert.ErrorAs(t, err, &vErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateText(t *testing.T) {
	assert.NoError(t, validateText("hello", 4096))
	assert.Error(t, validateText("", 4096))
	assert.Error(t, validateText(" \n", 4096))
	assert.NoError(t, validateText(strings.Repeat("й", 10), 10), "limit counts runes")
	assert.Error(t, validateText(strings.Repeat("a", 11), 10))
	assert.NoError(t, validateText(strings.Repeat("a", 11), 0), "zero disables the limit")
}

func TestValidateUserID(t *testing.T) {
	assert.NoError(t, validateUserID(1))
	assert.Error(t, validateUserID(0))
	assert.Error(t, validateUserID(-5))
}
