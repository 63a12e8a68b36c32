package resilience_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"

	"github.com/prilive-com/welcomebot/internal/resilience"
)

var errBoom = errors.New("boom")

func TestNewBreaker_TripsOnConsecutiveFailures(t *testing.T) {
	var transitions []string
	cfg := resilience.DefaultBreakerConfig("test")
	cfg.Threshold = 2
	cfg.MinRequests = 100
	cfg.Timeout = time.Minute
	cfg.OnStateChange = func(name, from, to string) {
		transitions = append(transitions, from+"->"+to)
	}
	cb := resilience.NewBreaker[int](cfg)

	for range 2 {
		_, _ = cb.Execute(func() (int, error) { return 0, errBoom })
	}

	assert.True(t, resilience.IsOpen(cb))
	assert.Equal(t, []string{"closed->open"}, transitions)

	_, err := cb.Execute(func() (int, error) { return 1, nil })
	assert.True(t, resilience.IsBreakerRejection(err))
}

func TestNewBreaker_TripsOnFailureRatio(t *testing.T) {
	cfg := resilience.DefaultBreakerConfig("ratio")
	cfg.MinRequests = 4
	cfg.FailureRatio = 0.5
	cb := resilience.NewBreaker[int](cfg)

	_, _ = cb.Execute(func() (int, error) { return 1, nil })
	_, _ = cb.Execute(func() (int, error) { return 1, nil })
	_, _ = cb.Execute(func() (int, error) { return 0, errBoom })
	assert.False(t, resilience.IsOpen(cb), "below MinRequests")

	_, _ = cb.Execute(func() (int, error) { return 0, errBoom })
	assert.True(t, resilience.IsOpen(cb))
}

func TestNewBreaker_IsSuccessfulIgnoresClientErrors(t *testing.T) {
	clientErr := errors.New("400")
	cfg := resilience.DefaultBreakerConfig("classify")
	cfg.Threshold = 1
	cfg.IsSuccessful = func(err error) bool { return err == nil || errors.Is(err, clientErr) }
	cb := resilience.NewBreaker[int](cfg)

	for range 5 {
		_, _ = cb.Execute(func() (int, error) { return 0, clientErr })
	}

	assert.False(t, resilience.IsOpen(cb))
}

func TestIsBreakerRejection(t *testing.T) {
	assert.True(t, resilience.IsBreakerRejection(gobreaker.ErrOpenState))
	assert.True(t, resilience.IsBreakerRejection(fmt.Errorf("wrapped: %w", gobreaker.ErrTooManyRequests)))
	assert.False(t, resilience.IsBreakerRejection(errBoom))
}
