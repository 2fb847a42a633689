package patterns

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/cwbudde/algo-glow/scene"
	"github.com/cwbudde/algo-glow/sim"
	"github.com/cwbudde/algo-glow/surface"
)

var errReleased = errors.New("patterns: pattern used after destroy")

// canvas is the state shared by every pattern: its name, its exclusively
// owned surface, a seeded random source and the tunable table.
type canvas struct {
	name  string
	surf  *surface.Surface
	rng   *rand.Rand
	decay float64
	tun   params
}

func newCanvas(name string, ctx scene.Context, decay float64) (canvas, error) {
	s, err := surface.New(ctx.Width, ctx.Height)
	if err != nil {
		return canvas{}, fmt.Errorf("%s: %w", name, err)
	}
	return canvas{
		name:  name,
		surf:  s,
		rng:   rand.New(rand.NewSource(ctx.Seed)),
		decay: decay,
	}, nil
}

// bind registers the tunables of the embedding pattern plus "decay".
func (c *canvas) bind(p params) {
	p["decay"] = param{value: &c.decay, min: 0, max: 0.99}
	c.tun = p
}

func (c *canvas) Name() string { return c.name }

func (c *canvas) Container() *surface.Surface { return c.surf }

// Decay returns the trail decay requested by the pattern.
func (c *canvas) Decay() float64 { return c.decay }

// Tunables returns the current parameter values.
func (c *canvas) Tunables() map[string]float64 { return c.tun.values() }

// SetTunable sets one parameter.
func (c *canvas) SetTunable(key string, v float64) error { return c.tun.set(key, v) }

func (c *canvas) live() error {
	if c.surf == nil {
		return fmt.Errorf("%s: %w", c.name, errReleased)
	}
	return nil
}

func (c *canvas) release() {
	c.surf = nil
}

func (c *canvas) size() (w, h float64) {
	return float64(c.surf.Width), float64(c.surf.Height)
}

func (c *canvas) randomPoint() sim.Vec2 {
	w, h := c.size()
	return sim.V(c.rng.Float64()*w, c.rng.Float64()*h)
}

// wrap moves p to the opposite edge when it leaves the canvas. It reports
// whether p was moved.
func (c *canvas) wrap(p *sim.Vec2) bool {
	w, h := c.size()
	moved := false
	for axis, size := range [2]float64{w, h} {
		v := p[axis]
		if v >= 0 && v < size {
			continue
		}
		moved = true
		if math.IsNaN(v) || math.IsInf(v, 0) {
			p[axis] = size / 2
			continue
		}
		v = math.Mod(v, size)
		if v < 0 {
			v += size
		}
		if v >= size {
			v = 0
		}
		p[axis] = v
	}
	return moved
}

// tint converts an HSV colour to the linear RGB used by surfaces. Hue is in
// degrees and wraps.
func tint(hue, sat, val float64) surface.Color {
	hue = math.Mod(hue, 360)
	if hue < 0 {
		hue += 360
	}
	r, g, b := colorful.Hsv(hue, sat, val).LinearRgb()
	return surface.Color{R: r, G: g, B: b}
}
