package sender_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/welcomebot/internal/testutil"
	"github.com/prilive-com/welcomebot/sender"
	"github.com/prilive-com/welcomebot/tg"
)

func TestCircuitBreaker_OpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32

	server := testutil.NewMockServer(t)
	server.OnAPI("sendSticker", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		testutil.ReplyServerError(w, 500, "Internal Server Error")
	})

	client := testutil.NewBreakerTestClient(t, server.BaseURL())
	ctx := context.Background()

	for range 2 {
		_, err := sendSticker(client, ctx)
		require.Error(t, err)
		assert.NotErrorIs(t, err, tg.ErrCircuitOpen)
	}

	_, err := sendSticker(client, ctx)
	assert.ErrorIs(t, err, tg.ErrCircuitOpen)
	assert.Equal(t, int32(2), hits.Load(), "open breaker short-circuits the request")
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	server := testutil.NewMockServer(t)
	server.OnAPI("getStickerSet", func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyBadRequest(w, "Bad Request: STICKERSET_INVALID")
	})

	client := testutil.NewBreakerTestClient(t, server.BaseURL())

	for range 5 {
		_, err := client.GetStickerSet(context.Background(), "Missing")
		require.ErrorIs(t, err, tg.ErrStickerSetInvalid)
		assert.NotErrorIs(t, err, tg.ErrCircuitOpen)
	}
}

func TestCircuitBreaker_RecoversAfterTimeout(t *testing.T) {
	var healthy atomic.Bool

	server := testutil.NewMockServer(t)
	server.OnAPI("sendSticker", func(w http.ResponseWriter, r *http.Request) {
		if healthy.Load() {
			testutil.ReplySticker(w, 1, "file")
			return
		}
		testutil.ReplyServerError(w, 502, "Bad Gateway")
	})

	client := testutil.NewTestClient(t, server.BaseURL(),
		sender.WithCircuitBreakerSettings(sender.CircuitBreakerSettings{
			MaxRequests: 1,
			Timeout:     50 * time.Millisecond,
			ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 1 },
		}),
	)
	ctx := context.Background()

	_, err := sendSticker(client, ctx)
	require.Error(t, err)
	_, err = sendSticker(client, ctx)
	require.ErrorIs(t, err, tg.ErrCircuitOpen)

	healthy.Store(true)
	require.Eventually(t, func() bool {
		_, err := sendSticker(client, ctx)
		return err == nil
	}, time.Second, 20*time.Millisecond)
}

func TestCircuitBreaker_DefaultSettings(t *testing.T) {
	s := sender.DefaultCircuitBreakerSettings()
	assert.Equal(t, uint32(5), s.MaxRequests)
	assert.Equal(t, 30*time.Second, s.Timeout)

	assert.False(t, s.ReadyToTrip(gobreaker.Counts{Requests: 2, TotalFailures: 2}), "needs 3 requests")
	assert.True(t, s.ReadyToTrip(gobreaker.Counts{Requests: 4, TotalFailures: 2}))
	assert.False(t, s.ReadyToTrip(gobreaker.Counts{Requests: 4, TotalFailures: 1}))
}
