package activity

import (
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/prilive-com/welcomebot/tg"
)

// Period selects a rolling counter.
type Period int

const (
	Weekly Period = iota
	Monthly
)

func (p Period) String() string {
	switch p {
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	default:
		return "unknown"
	}
}

// WeeklyAnchor is the weekday a weekly reset may happen on.
const WeeklyAnchor = time.Monday

const week = 7 * 24 * time.Hour

// Member is what the tracker knows about one user.
type Member struct {
	ID         int64
	Username   string
	FullName   string
	Messages   int
	LastActive time.Time
}

// Entry is one leaderboard row.
type Entry struct {
	UserID   int64
	Username string
	FullName string
	Count    int
}

// counter counts per user and remembers first-seen order for ties.
type counter struct {
	counts map[int64]int
	order  []int64
}

func newCounter() counter {
	return counter{counts: make(map[int64]int)}
}

func (c *counter) inc(id int64) {
	if _, ok := c.counts[id]; !ok {
		c.order = append(c.order, id)
	}
	c.counts[id]++
}

func (c *counter) reset() {
	clear(c.counts)
	c.order = c.order[:0]
}

// Tracker keeps lifetime, weekly and monthly message counts in memory.
type Tracker struct {
	mu          sync.Mutex
	members     map[int64]*Member
	weekly      counter
	monthly     counter
	lastWeekly  time.Time
	lastMonthly time.Time
	onReset     func(Period)
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithResetHook is called after a rolling counter is cleared.
func WithResetHook(fn func(Period)) Option {
	return func(t *Tracker) {
		t.onReset = fn
	}
}

// NewTracker creates a Tracker whose reset clocks start at start.
func NewTracker(start time.Time, opts ...Option) *Tracker {
	t := &Tracker{
		members:     make(map[int64]*Member),
		weekly:      newCounter(),
		monthly:     newCounter(),
		lastWeekly:  start,
		lastMonthly: start,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Record counts one message from user at now. Resets due at now are applied
// first, so the message lands in the new period.
func (t *Tracker) Record(user *tg.User, now time.Time) {
	if user == nil {
		return
	}

	t.mu.Lock()
	reset := t.rollover(now)

	m, ok := t.members[user.ID]
	if !ok {
		m = &Member{ID: user.ID}
		t.members[user.ID] = m
	}
	m.Messages++
	m.LastActive = now
	m.Username = user.Username
	if m.Username == "" {
		m.Username = "user_" + strconv.FormatInt(user.ID, 10)
	}
	m.FullName = user.FullName()

	t.weekly.inc(user.ID)
	t.monthly.inc(user.ID)
	t.mu.Unlock()

	t.notify(reset)
}

// Rollover applies any reset due at now and returns the periods cleared.
func (t *Tracker) Rollover(now time.Time) []Period {
	t.mu.Lock()
	reset := t.rollover(now)
	t.mu.Unlock()

	t.notify(reset)
	return reset
}

func (t *Tracker) rollover(now time.Time) []Period {
	var reset []Period
	if now.Sub(t.lastWeekly) >= week && now.Weekday() == WeeklyAnchor {
		t.weekly.reset()
		t.lastWeekly = now
		reset = append(reset, Weekly)
	}
	if now.Year() != t.lastMonthly.Year() || now.Month() != t.lastMonthly.Month() {
		t.monthly.reset()
		t.lastMonthly = now
		reset = append(reset, Monthly)
	}
	return reset
}

func (t *Tracker) notify(reset []Period) {
	if t.onReset == nil {
		return
	}
	for _, p := range reset {
		t.onReset(p)
	}
}

// Top returns up to n entries by descending count. Equal counts keep the
// order in which users were first seen in the period.
func (t *Tracker) Top(period Period, n int) []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := &t.weekly
	if period == Monthly {
		c = &t.monthly
	}

	entries := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		e := Entry{
			UserID:   id,
			Username: "user_" + strconv.FormatInt(id, 10),
			FullName: "Unknown User",
			Count:    c.counts[id],
		}
		if m, ok := t.members[id]; ok {
			e.Username = m.Username
			if m.FullName != "" {
				e.FullName = m.FullName
			}
		}
		entries = append(entries, e)
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.Count - a.Count
	})
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Member returns the lifetime record for a user.
func (t *Tracker) Member(id int64) (Member, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.members[id]
	if !ok {
		return Member{}, false
	}
	return *m, true
}

// Len returns how many users have been seen.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.members)
}
