package content

import (
	"errors"
	"math/rand/v2"
	"sync"
)

// RecentCapacity is how many recently served items a Rotator remembers.
const RecentCapacity = 5

// ErrEmptyCatalog is returned when a rotator is built over no items.
var ErrEmptyCatalog = errors.New("welcomebot/content: catalog is empty")

// Rotator serves catalog items at random without repeating one until every
// item has been served once.
type Rotator[T any] struct {
	mu      sync.Mutex
	items   []T
	used    map[int]struct{}
	recent  []T
	rng     *rand.Rand
	onReset func()
}

// RotatorOption configures a Rotator.
type RotatorOption func(*rotatorOptions)

type rotatorOptions struct {
	rng     *rand.Rand
	onReset func()
}

// WithRand sets the random source. Tests pass a seeded generator.
func WithRand(r *rand.Rand) RotatorOption {
	return func(o *rotatorOptions) {
		o.rng = r
	}
}

// WithResetHook is called, under the rotator lock, each time a full cycle
// completes and the used set is cleared.
func WithResetHook(fn func()) RotatorOption {
	return func(o *rotatorOptions) {
		o.onReset = fn
	}
}

// NewRotator copies items into a new Rotator.
func NewRotator[T any](items []T, opts ...RotatorOption) (*Rotator[T], error) {
	if len(items) == 0 {
		return nil, ErrEmptyCatalog
	}
	var o rotatorOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Rotator[T]{
		items:   append([]T(nil), items...),
		used:    make(map[int]struct{}, len(items)),
		recent:  make([]T, 0, RecentCapacity+1),
		rng:     o.rng,
		onReset: o.onReset,
	}, nil
}

// Next returns an item not served in the current cycle. When the cycle is
// complete the used set and the recency list start over.
func (r *Rotator[T]) Next() T {
	r.mu.Lock()
	defer r.mu.Unlock()

	available := r.available()
	if len(available) == 0 {
		clear(r.used)
		r.recent = r.recent[:0]
		if r.onReset != nil {
			r.onReset()
		}
		available = r.available()
	}

	idx := available[r.rng.IntN(len(available))]
	r.used[idx] = struct{}{}

	item := r.items[idx]
	r.recent = append(r.recent, item)
	if len(r.recent) > RecentCapacity {
		r.recent = append(r.recent[:0], r.recent[1:]...)
	}
	return item
}

func (r *Rotator[T]) available() []int {
	out := make([]int, 0, len(r.items)-len(r.used))
	for i := range r.items {
		if _, ok := r.used[i]; !ok {
			out = append(out, i)
		}
	}
	return out
}

// Recent returns the last served items, oldest first.
func (r *Rotator[T]) Recent() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.recent...)
}

// Used returns how many items were served in the current cycle.
func (r *Rotator[T]) Used() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.used)
}

// Len returns the catalog size.
func (r *Rotator[T]) Len() int {
	return len(r.items)
}
