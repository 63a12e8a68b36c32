package welcomebot_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/welcomebot"
	"github.com/prilive-com/welcomebot/internal/activity"
	"github.com/prilive-com/welcomebot/internal/testutil"
	"github.com/prilive-com/welcomebot/tg"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBot(t *testing.T, baseURL string, opts ...welcomebot.Option) *welcomebot.Bot {
	t.Helper()
	base := []welcomebot.Option{
		welcomebot.WithBaseURL(baseURL),
		welcomebot.WithPolling(1, 100),
		welcomebot.WithPollingMaxErrors(3),
		welcomebot.WithRetries(0),
		welcomebot.WithRateLimit(1000, 1000),
		welcomebot.WithGroupRateLimit(1000, 1000),
		welcomebot.WithLogger(quietLogger()),
		welcomebot.WithSleeper(&testutil.FakeSleeper{}),
		welcomebot.WithSeed(1, 2),
	}
	bot, err := welcomebot.New(testutil.TestToken, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bot.Close() })
	return bot
}

func commandUpdate(id int, text string) map[string]any {
	return map[string]any{
		"update_id": id,
		"message": map[string]any{
			"message_id": id,
			"date":       1234567890,
			"chat":       map[string]any{"id": testutil.TestGroupID, "type": "supergroup"},
			"from":       map[string]any{"id": testutil.TestUserID, "is_bot": false, "first_name": "Test"},
			"text":       text,
			"entities":   []map[string]any{{"type": "bot_command", "offset": 0, "length": len(text)}},
		},
	}
}

func TestNew_RequiresToken(t *testing.T) {
	_, err := welcomebot.New("")
	assert.ErrorIs(t, err, tg.ErrInvalidToken)
}

func TestNew_RejectsBadPolling(t *testing.T) {
	_, err := welcomebot.New(testutil.TestToken, welcomebot.WithPolling(61, 100))
	assert.ErrorIs(t, err, tg.ErrInvalidConfig)
}

func TestNew_BadContentFile(t *testing.T) {
	_, err := welcomebot.New(testutil.TestToken, welcomebot.WithContentFile("/does/not/exist.yaml"))
	assert.Error(t, err)
}

func TestBotClose_Idempotent(t *testing.T) {
	bot, err := welcomebot.New(testutil.TestToken, welcomebot.WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.NoError(t, bot.Close())
	assert.NoError(t, bot.Close())
	assert.NoError(t, bot.Close())
}

func TestBotClose_Concurrent(t *testing.T) {
	bot, err := welcomebot.New(testutil.TestToken, welcomebot.WithLogger(quietLogger()))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() { _ = bot.Close() })
	}
	wg.Wait()
}

func TestRun_BeforeStart(t *testing.T) {
	server := testutil.NewMockServer(t)
	bot := newTestBot(t, server.BaseURL())

	assert.ErrorIs(t, bot.Run(context.Background()), welcomebot.ErrNotStarted)
	assert.Nil(t, bot.Me())
}

func TestStart_IdentityCheckFails(t *testing.T) {
	server := testutil.NewMockServer(t)
	server.OnAPI("getMe", func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyError(w, 401, "Unauthorized", nil)
	})
	bot := newTestBot(t, server.BaseURL())

	err := bot.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, tg.ErrUnauthorized)
	assert.NotContains(t, err.Error(), testutil.TestToken)
	assert.Empty(t, server.CapturesFor("getUpdates"), "polling never starts")
	assert.Nil(t, bot.Me())
}

func TestStart_Twice(t *testing.T) {
	server := testutil.NewMockServer(t)
	server.OnAPI("getMe", func(w http.ResponseWriter, r *http.Request) { testutil.ReplyUser(w) })
	server.OnAPI("getUpdates", func(w http.ResponseWriter, r *http.Request) { <-r.Context().Done() })
	bot := newTestBot(t, server.BaseURL())

	require.NoError(t, bot.Start(context.Background()))
	assert.ErrorIs(t, bot.Start(context.Background()), welcomebot.ErrAlreadyStarted)
	assert.Equal(t, testutil.TestBotUsername, bot.Me().Username)
}

func TestRun_HandlesUpdates(t *testing.T) {
	var polls atomic.Int32
	server := testutil.NewMockServer(t)
	server.OnAPI("getMe", func(w http.ResponseWriter, r *http.Request) { testutil.ReplyUser(w) })
	server.OnAPI("getUpdates", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) == 1 {
			testutil.ReplyUpdates(w, []map[string]any{
				commandUpdate(1, "/joke"),
				commandUpdate(2, "/help@"+testutil.TestBotUsername),
			})
			return
		}
		<-r.Context().Done()
	})
	server.OnAPI("sendMessage", func(w http.ResponseWriter, r *http.Request) { testutil.ReplyMessage(w, 100) })

	reg := prometheus.NewRegistry()
	bot := newTestBot(t, server.BaseURL(), welcomebot.WithMetrics(reg))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bot.Start(ctx))

	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(server.CapturesFor("sendMessage")) == 2
	}, 5*time.Second, 10*time.Millisecond)

	msgs := server.CapturesFor("sendMessage")
	text := msgs[0].BodyMap(t)["text"].(string)
	assert.Contains(t, text, "🎭 ")
	msgs[1].AssertJSONFieldNested(t, "reply_parameters.message_id", float64(2))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestRun_ReturnsWhenPollingGivesUp(t *testing.T) {
	server := testutil.NewMockServer(t)
	server.OnAPI("getMe", func(w http.ResponseWriter, r *http.Request) { testutil.ReplyUser(w) })
	server.OnAPI("getUpdates", func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyError(w, 401, "Unauthorized", nil)
	})
	bot := newTestBot(t, server.BaseURL())

	require.NoError(t, bot.Start(context.Background()))

	done := make(chan error, 1)
	go func() { done <- bot.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, tg.ErrUnauthorized)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after polling stopped")
	}
	assert.False(t, bot.IsHealthy())
}

func TestBot_Rollover(t *testing.T) {
	clock := time.Date(2026, time.January, 7, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}

	server := testutil.NewMockServer(t)
	bot := newTestBot(t, server.BaseURL(), welcomebot.WithClock(now))

	assert.Empty(t, bot.Rollover())

	mu.Lock()
	clock = time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC) // Monday
	mu.Unlock()
	assert.Equal(t, []activity.Period{activity.Weekly, activity.Monthly}, bot.Rollover())
}
