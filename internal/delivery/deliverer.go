package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/prilive-com/welcomebot/internal/resilience"
)

// Attempt outcomes reported to an Observer.
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
)

// Policy bounds the retry loops.
type Policy struct {
	MaxRetries    int           // Attempts per tier
	RetryDelay    time.Duration // Wait after a failed attempt
	OuterAttempts int           // Deliver runs made by DeliverWithRetry
	OuterDelay    time.Duration // Wait between Deliver runs
}

// DefaultPolicy returns 5 attempts per tier 0.5s apart, and 3 outer runs 1s apart.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:    5,
		RetryDelay:    500 * time.Millisecond,
		OuterAttempts: 3,
		OuterDelay:    time.Second,
	}
}

// Observer receives one call per attempt and one per Deliver run.
type Observer interface {
	ObserveAttempt(tier, outcome string)
	ObserveResult(outcome string)
}

// Deliverer runs the tiered fallback policy.
type Deliverer struct {
	policy   Policy
	resolver SetResolver
	sleeper  resilience.Sleeper
	observer Observer
	logger   *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Deliverer.
type Option func(*Deliverer)

// WithResolver sets the resolver used by named-set tiers.
func WithResolver(r SetResolver) Option {
	return func(d *Deliverer) {
		d.resolver = r
	}
}

// WithSleeper replaces the wall clock used between attempts.
func WithSleeper(s resilience.Sleeper) Option {
	return func(d *Deliverer) {
		d.sleeper = s
	}
}

// WithRand sets the random source used to pick resources.
func WithRand(r *rand.Rand) Option {
	return func(d *Deliverer) {
		d.rng = r
	}
}

// WithObserver reports attempts, typically to metrics.
func WithObserver(o Observer) Option {
	return func(d *Deliverer) {
		d.observer = o
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Deliverer) {
		d.logger = l
	}
}

// New creates a Deliverer. Non-positive policy fields fall back to DefaultPolicy.
func New(policy Policy, opts ...Option) *Deliverer {
	def := DefaultPolicy()
	if policy.MaxRetries <= 0 {
		policy.MaxRetries = def.MaxRetries
	}
	if policy.RetryDelay <= 0 {
		policy.RetryDelay = def.RetryDelay
	}
	if policy.OuterAttempts <= 0 {
		policy.OuterAttempts = def.OuterAttempts
	}
	if policy.OuterDelay <= 0 {
		policy.OuterDelay = def.OuterDelay
	}

	d := &Deliverer{policy: policy}
	for _, opt := range opts {
		opt(d)
	}
	if d.sleeper == nil {
		d.sleeper = resilience.RealSleeper{}
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.rng == nil {
		d.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return d
}

// Policy returns the effective policy.
func (d *Deliverer) Policy() Policy {
	return d.policy
}

// Deliver walks tiers in order, making up to MaxRetries attempts in each, and
// returns on the first success. Every failed attempt except the very last is
// followed by RetryDelay. Tiers without resources are skipped, as are
// named-set tiers when no resolver is configured. When everything fails the
// error is a *FailedError; a cancelled context is returned as-is.
func (d *Deliverer) Deliver(ctx context.Context, target int64, tiers []Tier, attempt AttemptFunc) (Result, error) {
	usable := d.usableTiers(tiers)
	if len(usable) == 0 {
		d.observeResult(OutcomeFailed)
		return Result{}, &FailedError{Last: ErrNoResources}
	}

	var (
		lastErr  error
		attempts int
	)
	for ti, tier := range usable {
		for try := 1; try <= d.policy.MaxRetries; try++ {
			attempts++
			resource, err := d.tryOnce(ctx, target, tier, attempt)
			if err == nil {
				d.observeAttempt(tier.Label, OutcomeDelivered)
				d.observeResult(OutcomeDelivered)
				return Result{Tier: tier.Label, Resource: resource, Attempts: attempts}, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, ctxErr
			}

			lastErr = err
			d.observeAttempt(tier.Label, OutcomeFailed)
			d.logger.Warn("delivery attempt failed",
				"tier", tier.Label,
				"attempt", try,
				"target", target,
				"error", err,
			)

			if ti == len(usable)-1 && try == d.policy.MaxRetries {
				break
			}
			if err := d.sleeper.Sleep(ctx, d.policy.RetryDelay); err != nil {
				return Result{}, err
			}
		}
	}

	d.observeResult(OutcomeFailed)
	return Result{}, &FailedError{Attempts: attempts, Last: lastErr}
}

// DeliverWithRetry runs Deliver up to OuterAttempts times, OuterDelay apart.
func (d *Deliverer) DeliverWithRetry(ctx context.Context, target int64, tiers []Tier, attempt AttemptFunc) (Result, error) {
	cfg := resilience.RetryConfig{
		Attempts: d.policy.OuterAttempts,
		Backoff:  resilience.Backoff{Base: d.policy.OuterDelay, Multiplier: 1},
		Retryable: func(err error) bool {
			return !errors.Is(err, ErrNoResources)
		},
		OnRetry: func(run int, err error, wait time.Duration) {
			d.logger.Error("delivery run failed",
				"run", run,
				"target", target,
				"retry_in", wait,
				"error", err,
			)
		},
	}
	return resilience.Retry(ctx, cfg, d.sleeper, func(ctx context.Context) (Result, error) {
		return d.Deliver(ctx, target, tiers, attempt)
	})
}

func (d *Deliverer) usableTiers(tiers []Tier) []Tier {
	out := make([]Tier, 0, len(tiers))
	for _, t := range tiers {
		if len(t.Resources) == 0 {
			continue
		}
		if t.Kind == KindNamedSet && d.resolver == nil {
			d.logger.Warn("skipping named-set tier without resolver", "tier", t.Label)
			continue
		}
		out = append(out, t)
	}
	return out
}

func (d *Deliverer) tryOnce(ctx context.Context, target int64, tier Tier, attempt AttemptFunc) (string, error) {
	pick := d.pick(tier.Resources)
	if tier.Kind == KindNamedSet {
		ids, err := d.resolver.ResolveSet(ctx, pick)
		if err != nil {
			return "", fmt.Errorf("resolve %q: %w", pick, err)
		}
		if len(ids) == 0 {
			return "", fmt.Errorf("%w: %q", ErrEmptySet, pick)
		}
		pick = d.pick(ids)
	}
	if err := attempt(ctx, target, pick); err != nil {
		return "", err
	}
	return pick, nil
}

func (d *Deliverer) pick(items []string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return items[d.rng.IntN(len(items))]
}

func (d *Deliverer) observeAttempt(tier, outcome string) {
	if d.observer != nil {
		d.observer.ObserveAttempt(tier, outcome)
	}
}

func (d *Deliverer) observeResult(outcome string) {
	if d.observer != nil {
		d.observer.ObserveResult(outcome)
	}
}
