package testutil

import (
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/welcomebot/sender"
)

// unthrottled lifts every sender rate limit, including the strict group
// limit, so welcome and sticker tests in TestGroupID never queue.
// Callers can still pass their own limits; later options win.
var unthrottled = []sender.Option{
	sender.WithRateLimit(1000, 1000),
	sender.WithPerChatRateLimit(1000, 1000),
	sender.WithGroupRateLimit(1000, 1000),
}

// CircuitBreakerNeverTrip returns settings where the breaker never opens.
func CircuitBreakerNeverTrip() sender.CircuitBreakerSettings {
	return sender.CircuitBreakerSettings{
		MaxRequests: 100,
		Timeout:     time.Hour,
		ReadyToTrip: func(gobreaker.Counts) bool { return false },
	}
}

func newClient(t *testing.T, base []sender.Option, opts []sender.Option) *sender.Client {
	t.Helper()

	all := append(append(append([]sender.Option{}, unthrottled...), base...), opts...)
	client, err := sender.New(TestToken, all...)
	require.NoError(t, err)

	t.Cleanup(func() { client.Close() })
	return client
}

// NewTestClient returns an unthrottled client with no retries.
func NewTestClient(t *testing.T, baseURL string, opts ...sender.Option) *sender.Client {
	t.Helper()
	return newClient(t, []sender.Option{
		sender.WithBaseURL(baseURL),
		sender.WithRetries(0),
	}, opts)
}

// NewRetryTestClient returns an unthrottled client whose breaker never
// opens, so only retry behavior is observed. Backoff waits are recorded by
// sleeper when it is non-nil.
func NewRetryTestClient(t *testing.T, baseURL string, sleeper *FakeSleeper, opts ...sender.Option) *sender.Client {
	t.Helper()
	base := []sender.Option{
		sender.WithBaseURL(baseURL),
		sender.WithCircuitBreakerSettings(CircuitBreakerNeverTrip()),
	}
	if sleeper != nil {
		base = append(base, sender.WithSleeper(sleeper))
	}
	return newClient(t, base, opts)
}

// NewBreakerTestClient returns a client whose breaker opens after two
// consecutive failures and stays open for two seconds. Retries are off.
func NewBreakerTestClient(t *testing.T, baseURL string, opts ...sender.Option) *sender.Client {
	t.Helper()
	return newClient(t, []sender.Option{
		sender.WithBaseURL(baseURL),
		sender.WithRetries(0),
		sender.WithCircuitBreakerSettings(sender.CircuitBreakerSettings{
			MaxRequests: 1,
			Timeout:     2 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 2 },
		}),
	}, opts)
}

// NewHandlerClient returns the sender handler and delivery tests talk to:
// unthrottled, never tripping, no transport retries. Every sticker retry in
// those tests then comes from the deliverer alone.
func NewHandlerClient(t *testing.T, baseURL string) *sender.Client {
	t.Helper()
	return newClient(t, []sender.Option{
		sender.WithBaseURL(baseURL),
		sender.WithRetries(0),
		sender.WithCircuitBreakerSettings(CircuitBreakerNeverTrip()),
	}, nil)
}
