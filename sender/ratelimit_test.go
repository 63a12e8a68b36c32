package sender_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/welcomebot/internal/testutil"
	"github.com/prilive-com/welcomebot/sender"
)

func TestRateLimit_TracksChats(t *testing.T) {
	server := testutil.NewMockServer(t)
	server.OnAPI("sendMessage", func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyMessage(w, 1)
	})

	client := testutil.NewTestClient(t, server.BaseURL(), sender.WithPerChatRateLimit(100, 10))
	ctx := context.Background()

	for _, chat := range []int64{1, 2, 3, 2} {
		_, err := client.SendMessage(ctx, sender.SendMessageRequest{ChatID: chat, Text: "x"})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, client.ChatLimiterCount())
}

func TestRateLimit_GroupLimitApplies(t *testing.T) {
	server := testutil.NewMockServer(t)
	server.OnAPI("sendMessage", func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyMessageWithChat(w, 1, testutil.TestGroupID)
	})

	// One token per group and a near-zero refill: the second send must wait.
	client := testutil.NewTestClient(t, server.BaseURL(),
		sender.WithPerChatRateLimit(100, 10),
		sender.WithGroupRateLimit(0.01, 1),
	)

	req := sender.SendMessageRequest{ChatID: testutil.TestGroupID, Text: "x"}
	_, err := client.SendMessage(context.Background(), req)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.SendMessage(ctx, req)
	require.Error(t, err)
	assert.Equal(t, 1, server.CaptureCount())

	// Private chats use the per-chat limit.
	_, err = client.SendMessage(context.Background(), sender.SendMessageRequest{ChatID: testutil.TestChatID, Text: "x"})
	require.NoError(t, err)
}

func TestRateLimit_Concurrent(t *testing.T) {
	server := testutil.NewMockServer(t)
	server.OnAPI("sendSticker", func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplySticker(w, 1, "file")
	})

	client := testutil.NewTestClient(t, server.BaseURL(),
		sender.WithRateLimit(1000, 100),
		sender.WithPerChatRateLimit(1000, 100),
	)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Go(func() {
			_, err := client.SendSticker(context.Background(), sender.SendStickerRequest{
				ChatID:  int64(1000 + i%4),
				Sticker: "file",
			})
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	assert.Equal(t, 20, server.CaptureCount())
	assert.Equal(t, 4, client.ChatLimiterCount())
}
