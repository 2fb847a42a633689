// Package input turns asynchronous pointer events into immutable per-frame
// snapshots with a bounded, time-windowed click history.
//
// Device layers call the event methods of [Tracker] from any goroutine. The
// render loop calls [Tracker.Snapshot] once per frame and hands the same
// snapshot to every pattern of that frame.
package input

import (
	"math"
	"sync"
	"time"
)

const (
	// RetentionWindow is how long a click stays in the snapshot history.
	RetentionWindow = time.Second

	// FreshWindow is the age under which a click counts as a new trigger.
	FreshWindow = 50 * time.Millisecond

	// DragThreshold is the pointer travel in pixels while pressed after which
	// the pointer counts as dragging.
	DragThreshold = 4.0

	defaultMaxClicks = 64
)

// Click is one discrete click or tap.
type Click struct {
	X, Y float64
	At   time.Duration

	// Seq increases by one for every click recorded by a tracker.
	Seq uint64
}

// Age returns how long before now the click happened.
func (c Click) Age(now time.Duration) time.Duration {
	return now - c.At
}

// Snapshot is the input state at one instant. It is never mutated after
// creation; treat it as read-only.
type Snapshot struct {
	PointerX     float64
	PointerY     float64
	IsDown       bool
	IsDragging   bool
	RecentClicks []Click
	At           time.Duration
}

var empty = Snapshot{}

// Empty returns a snapshot with no pointer activity.
func Empty() *Snapshot {
	return &empty
}

// Fresh returns the clicks younger than window, oldest first.
func (s *Snapshot) Fresh(window time.Duration) []Click {
	var out []Click
	for _, c := range s.RecentClicks {
		if c.Age(s.At) <= window {
			out = append(out, c)
		}
	}
	return out
}

// Option configures a [Tracker].
type Option func(*config)

type config struct {
	retention     time.Duration
	dragThreshold float64
	maxClicks     int
}

// WithRetention sets how long clicks are kept.
func WithRetention(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.retention = d
		}
	}
}

// WithDragThreshold sets the press travel in pixels that starts a drag.
func WithDragThreshold(px float64) Option {
	return func(c *config) {
		if px >= 0 && !math.IsInf(px, 0) {
			c.dragThreshold = px
		}
	}
}

// WithMaxClicks caps the click history length. Older clicks are dropped
// first when the cap is reached.
func WithMaxClicks(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxClicks = n
		}
	}
}

// Tracker records pointer state and clicks. It is safe for concurrent use.
type Tracker struct {
	cfg config

	mu       sync.Mutex
	x, y     float64
	down     bool
	dragging bool
	pressX   float64
	pressY   float64
	clicks   []Click
	seq      uint64
}

// NewTracker creates a tracker with the pointer at the origin.
func NewTracker(opts ...Option) *Tracker {
	cfg := config{
		retention:     RetentionWindow,
		dragThreshold: DragThreshold,
		maxClicks:     defaultMaxClicks,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Tracker{
		cfg:    cfg,
		clicks: make([]Click, 0, cfg.maxClicks),
	}
}

// Move updates the pointer position.
func (t *Tracker) Move(x, y float64, _ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.x, t.y = x, y
	if t.down && !t.dragging && math.Hypot(x-t.pressX, y-t.pressY) > t.cfg.dragThreshold {
		t.dragging = true
	}
}

// Press marks the pointer as down at (x, y).
func (t *Tracker) Press(x, y float64, _ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.x, t.y = x, y
	t.down = true
	t.dragging = false
	t.pressX, t.pressY = x, y
}

// Release marks the pointer as up at (x, y).
func (t *Tracker) Release(x, y float64, _ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.x, t.y = x, y
	t.down = false
	t.dragging = false
}

// Click records a discrete click or tap at (x, y) and returns it. The
// pointer moves to the click position.
func (t *Tracker) Click(x, y float64, at time.Duration) Click {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.x, t.y = x, y
	t.seq++
	c := Click{X: x, Y: y, At: at, Seq: t.seq}
	if len(t.clicks) == t.cfg.maxClicks {
		copy(t.clicks, t.clicks[1:])
		t.clicks = t.clicks[:len(t.clicks)-1]
	}
	t.clicks = append(t.clicks, c)
	return c
}

// Snapshot evicts clicks older than the retention window relative to now and
// returns the current state. The returned snapshot owns its click slice.
func (t *Tracker) Snapshot(now time.Duration) *Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	keep := 0
	for _, c := range t.clicks {
		if now-c.At <= t.cfg.retention {
			t.clicks[keep] = c
			keep++
		}
	}
	t.clicks = t.clicks[:keep]

	var clicks []Click
	if keep > 0 {
		clicks = make([]Click, keep)
		copy(clicks, t.clicks)
	}

	return &Snapshot{
		PointerX:     t.x,
		PointerY:     t.y,
		IsDown:       t.down,
		IsDragging:   t.dragging,
		RecentClicks: clicks,
		At:           now,
	}
}

// Trigger turns the level-triggered click history into one-shot events.
//
// A click fires once, on the first frame that sees it while it is younger
// than the freshness window. Clicks first seen after that window never fire.
// The zero value uses [FreshWindow].
type Trigger struct {
	Window time.Duration

	lastSeq uint64
}

// Fire returns the clicks in s that have not fired before and are still
// fresh.
func (tr *Trigger) Fire(s *Snapshot) []Click {
	window := tr.Window
	if window <= 0 {
		window = FreshWindow
	}

	var out []Click
	for _, c := range s.RecentClicks {
		if c.Seq <= tr.lastSeq {
			continue
		}
		tr.lastSeq = c.Seq
		if c.Age(s.At) <= window {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets which clicks have fired.
func (tr *Trigger) Reset() {
	tr.lastSeq = 0
}
