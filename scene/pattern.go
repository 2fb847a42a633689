package scene

import (
	"github.com/cwbudde/algo-glow/analysis"
	"github.com/cwbudde/algo-glow/input"
	"github.com/cwbudde/algo-glow/surface"
)

// DefaultDecay is the trail decay used for patterns that do not implement
// [Decayer].
const DefaultDecay = 0.85

// Pattern is one visual simulation.
//
// The manager calls Update then Draw once per tick while the pattern is
// active, always from the render goroutine. audio and in are shared by
// every pattern in the tick and must be treated as read-only.
type Pattern interface {
	Name() string
	// Container returns the surface the pattern draws into. The pattern
	// owns it exclusively.
	Container() *surface.Surface
	Update(dt float64, audio *analysis.Frame, in *input.Snapshot) error
	Draw() (*surface.Surface, error)
	// Destroy releases everything the pattern owns. The manager calls it
	// once; implementations should still tolerate repeated calls.
	Destroy()
}

// Decayer is implemented by patterns that choose their own trail length.
// The value is clamped to [0, 1].
type Decayer interface {
	Decay() float64
}

// Resizer is implemented by patterns that react to canvas size changes.
type Resizer interface {
	Resize(width, height int) error
}

// Tunable is implemented by patterns that expose numeric parameters to an
// external control surface. Tunables returns the whitelist of keys with
// their current values.
type Tunable interface {
	Tunables() map[string]float64
	SetTunable(key string, value float64) error
}

// State is the lifecycle state of a registered pattern.
type State int

const (
	Registered State = iota
	Active
	Inactive
	Destroyed
)

func (s State) String() string {
	switch s {
	case Registered:
		return "registered"
	case Active:
		return "active"
	case Inactive:
		return "inactive"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// decayOf returns the pattern's trail decay clamped to [0, 1]. A panic in
// Decay is returned as an error.
func decayOf(p Pattern) (float64, error) {
	d, ok := p.(Decayer)
	if !ok {
		return DefaultDecay, nil
	}
	var v float64
	if err := guard(func() error {
		v = d.Decay()
		return nil
	}); err != nil {
		return 0, err
	}
	switch {
	case v != v || v < 0:
		return 0, nil
	case v > 1:
		return 1, nil
	}
	return v, nil
}

// tunablesOf returns the pattern's tunable whitelist, or nil when it has
// none. A panic in Tunables is returned as an error.
func tunablesOf(p Pattern) (map[string]float64, error) {
	t, ok := p.(Tunable)
	if !ok {
		return nil, nil
	}
	var keys map[string]float64
	err := guard(func() error {
		keys = t.Tunables()
		return nil
	})
	return keys, err
}
