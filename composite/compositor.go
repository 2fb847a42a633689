// Package composite implements the feedback stage that gives every pattern
// persistent trails.
//
// Each tick the accumulation surface is decayed and the new pattern outputs
// are added on top:
//
//	accumulation = accumulation*decay + Σ outputs
//
// Decay 0 leaves no trail; decay close to 1 keeps a long afterimage.
package composite

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-glow/surface"
)

// ErrSizeMismatch is returned when an output does not match the
// accumulation surface.
var ErrSizeMismatch = errors.New("composite: output size mismatch")

// Presenter receives each composited frame. The surface is only valid for
// the duration of the call.
type Presenter interface {
	Present(s *surface.Surface) error
}

// PresenterFunc adapts a function to [Presenter].
type PresenterFunc func(s *surface.Surface) error

// Present calls f(s).
func (f PresenterFunc) Present(s *surface.Surface) error { return f(s) }

// Option configures a [Compositor].
type Option func(*Compositor)

// WithPresenter sets the presentation target called after every composite.
func WithPresenter(p Presenter) Option {
	return func(c *Compositor) {
		c.presenter = p
	}
}

// Compositor owns the accumulation surface. It is not safe for concurrent
// use; the render loop is its only caller.
type Compositor struct {
	acc       *surface.Surface
	presenter Presenter
	frames    uint64
}

// New creates a compositor with a cleared width x height accumulation
// surface.
func New(width, height int, opts ...Option) (*Compositor, error) {
	acc, err := surface.New(width, height)
	if err != nil {
		return nil, fmt.Errorf("composite: %w", err)
	}
	c := &Compositor{acc: acc}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Composite decays the accumulation surface by decay, adds every output and
// presents the result. Nil outputs are skipped.
//
// decay must be finite and within [0, 1]. All outputs are checked before
// the accumulation is touched, so a failed call leaves the trails intact.
func (c *Compositor) Composite(outputs []*surface.Surface, decay float64) (*surface.Surface, error) {
	if decay < 0 || decay > 1 || math.IsNaN(decay) {
		return nil, fmt.Errorf("composite decay must be in [0, 1]: %f", decay)
	}
	for i, out := range outputs {
		if out == nil {
			continue
		}
		if !c.acc.SameSize(out) {
			return nil, fmt.Errorf("%w: output %d is %dx%d, accumulation is %dx%d",
				ErrSizeMismatch, i, out.Width, out.Height, c.acc.Width, c.acc.Height)
		}
	}

	switch decay {
	case 0:
		c.acc.Clear()
	case 1:
	default:
		vecmath.ScaleBlock(c.acc.Pix, c.acc.Pix, decay)
	}
	for _, out := range outputs {
		if out == nil {
			continue
		}
		vecmath.AddBlockInPlace(c.acc.Pix, out.Pix)
	}
	c.frames++

	if c.presenter != nil {
		if err := c.presenter.Present(c.acc); err != nil {
			return c.acc, fmt.Errorf("composite present: %w", err)
		}
	}
	return c.acc, nil
}

// Resize reallocates and clears the accumulation surface.
func (c *Compositor) Resize(width, height int) error {
	if err := c.acc.Resize(width, height); err != nil {
		return fmt.Errorf("composite: %w", err)
	}
	return nil
}

// Reset clears the trails.
func (c *Compositor) Reset() {
	c.acc.Clear()
}

// Accumulation returns the accumulation surface. Callers must not retain it
// across a Resize.
func (c *Compositor) Accumulation() *surface.Surface {
	return c.acc
}

// Frames returns the number of successful composites.
func (c *Compositor) Frames() uint64 {
	return c.frames
}

// Size returns the accumulation dimensions.
func (c *Compositor) Size() (width, height int) {
	return c.acc.Width, c.acc.Height
}
