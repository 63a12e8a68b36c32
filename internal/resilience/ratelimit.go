package resilience

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig holds rate limiter configuration.
type RateLimiterConfig struct {
	GlobalRPS   float64 // Global requests per second
	GlobalBurst int     // Global burst size
	KeyRPS      float64 // Per-key requests per second
	KeyBurst    int     // Per-key burst size

	// MaxKeys caps the number of tracked keys; the least recently used key is
	// evicted when full. 0 = 10000.
	MaxKeys int

	// IdleTTL removes keys that have not been used for this long. 0 = 10m.
	IdleTTL time.Duration

	// SweepInterval controls the background cleanup. 0 disables it.
	SweepInterval time.Duration

	// KeyLimit overrides the per-key limit for specific keys (e.g. group chats).
	KeyLimit func(key string) (rps float64, burst int, ok bool)
}

// DefaultRateLimiterConfig returns sensible defaults for Telegram.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GlobalRPS:     30, // Telegram ~30 msg/s global
		GlobalBurst:   10,
		KeyRPS:        1, // 1 msg/s per chat recommended
		KeyBurst:      3,
		MaxKeys:       10000,
		IdleTTL:       10 * time.Minute,
		SweepInterval: 5 * time.Minute,
	}
}

type keyEntry struct {
	limiter  *rate.Limiter
	lastUsed atomic.Int64 // UnixNano
}

// RateLimiter provides global and per-key rate limiting.
type RateLimiter struct {
	cfg    RateLimiterConfig
	global *rate.Limiter

	mu     sync.RWMutex
	perKey map[string]*keyEntry

	now       func() time.Time
	stop      chan struct{}
	closeOnce sync.Once
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.MaxKeys <= 0 {
		cfg.MaxKeys = 10000
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}

	r := &RateLimiter{
		cfg:    cfg,
		global: rate.NewLimiter(rate.Limit(cfg.GlobalRPS), cfg.GlobalBurst),
		perKey: make(map[string]*keyEntry),
		now:    time.Now,
		stop:   make(chan struct{}),
	}

	if cfg.SweepInterval > 0 {
		go r.sweepLoop(cfg.SweepInterval)
	}

	return r
}

// Wait blocks until both the per-key and the global limit allow one event.
// An empty key only applies the global limit.
func (r *RateLimiter) Wait(ctx context.Context, key string) error {
	if key != "" {
		if err := r.limiterFor(key).Wait(ctx); err != nil {
			return err
		}
	}
	return r.global.Wait(ctx)
}

// Len returns the number of tracked keys.
func (r *RateLimiter) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.perKey)
}

// Sweep drops keys idle for longer than IdleTTL and returns how many were removed.
func (r *RateLimiter) Sweep() int {
	threshold := r.now().Add(-r.cfg.IdleTTL).UnixNano()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, e := range r.perKey {
		if e.lastUsed.Load() < threshold {
			delete(r.perKey, key)
			removed++
		}
	}
	return removed
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (r *RateLimiter) Close() {
	r.closeOnce.Do(func() { close(r.stop) })
}

func (r *RateLimiter) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-r.stop:
			return
		}
	}
}

func (r *RateLimiter) limiterFor(key string) *rate.Limiter {
	now := r.now().UnixNano()

	r.mu.RLock()
	e, ok := r.perKey[key]
	r.mu.RUnlock()
	if ok {
		e.lastUsed.Store(now)
		return e.limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if e, ok = r.perKey[key]; ok {
		e.lastUsed.Store(now)
		return e.limiter
	}

	if len(r.perKey) >= r.cfg.MaxKeys {
		r.evictOldestLocked()
	}

	rps, burst := r.cfg.KeyRPS, r.cfg.KeyBurst
	if r.cfg.KeyLimit != nil {
		if orps, oburst, override := r.cfg.KeyLimit(key); override {
			rps, burst = orps, oburst
		}
	}

	e = &keyEntry{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
	e.lastUsed.Store(now)
	r.perKey[key] = e
	return e.limiter
}

func (r *RateLimiter) evictOldestLocked() {
	var oldestKey string
	var oldest int64
	for k, e := range r.perKey {
		if t := e.lastUsed.Load(); oldestKey == "" || t < oldest {
			oldestKey, oldest = k, t
		}
	}
	if oldestKey != "" {
		delete(r.perKey, oldestKey)
	}
}
