package resilience

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"math/big"
	"time"
)

// Sleeper abstracts time-based waiting so retry timing can be tested
// without real delays.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealSleeper waits on the wall clock.
type RealSleeper struct{}

// Sleep waits for d or until ctx is done.
func (RealSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff describes an exponential backoff curve.
type Backoff struct {
	Base       time.Duration
	Max        time.Duration
	Multiplier float64 // 1.0 keeps the wait fixed
	Jitter     float64 // Symmetric jitter factor (0.0-1.0)
}

// Delay returns the wait before retry number attempt (1-based).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	mult := b.Multiplier
	if mult < 1 {
		mult = 1
	}

	wait := float64(b.Base) * math.Pow(mult, float64(attempt-1))
	if b.Max > 0 && wait > float64(b.Max) {
		wait = float64(b.Max)
	}

	// Jitter uses crypto/rand so concurrent clients do not synchronize.
	if b.Jitter > 0 {
		jitterRange := int64(wait * b.Jitter)
		if jitterRange > 0 {
			n, err := rand.Int(rand.Reader, big.NewInt(jitterRange*2))
			if err == nil {
				wait += float64(n.Int64() - jitterRange)
			}
		}
	}

	return time.Duration(wait)
}

// RetryConfig holds retry configuration.
type RetryConfig struct {
	Attempts int // Total calls including the first one (minimum 1)
	Backoff  Backoff

	// Retryable decides whether an error may be retried. nil retries every error.
	Retryable func(err error) bool

	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// ErrNoAttempts is returned when Retry is configured with no attempts.
var ErrNoAttempts = errors.New("resilience: retry configured with zero attempts")

// Retry calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. The last error is returned unchanged; context
// cancellation during a wait returns the context error.
func Retry[T any](ctx context.Context, cfg RetryConfig, sleeper Sleeper, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if cfg.Attempts < 1 {
		return zero, ErrNoAttempts
	}
	if sleeper == nil {
		sleeper = RealSleeper{}
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if cfg.Retryable != nil && !cfg.Retryable(err) {
			return zero, err
		}
		if attempt == cfg.Attempts {
			break
		}

		wait := cfg.Backoff.Delay(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}
		if err := sleeper.Sleep(ctx, wait); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}
