package patterns

import (
	"github.com/charmbracelet/harmonica"

	"github.com/cwbudde/algo-glow/analysis"
	"github.com/cwbudde/algo-glow/input"
	"github.com/cwbudde/algo-glow/scene"
	"github.com/cwbudde/algo-glow/sim"
	"github.com/cwbudde/algo-glow/surface"
)

// RibbonSegments is the number of points in a ribbon chain.
const RibbonSegments = 32

const (
	anchorFrequency = 7.0
	anchorDamping   = 1.0
)

// Ribbon is a verlet chain whose head follows the pointer through a
// critically damped spring. Bass widens the ribbon and the centroid shifts
// its hue.
type Ribbon struct {
	canvas

	points []sim.Point

	spring    harmonica.Spring
	springDt  float64
	anchor    sim.Vec2
	anchorVel sim.Vec2

	width      float64
	hue        float64
	rest       float64
	stiffness  float64
	iterations float64
	gravity    float64
	damping    float64
	thickness  float64
}

// NewRibbon creates a ribbon pattern hanging from the canvas centre.
func NewRibbon(ctx scene.Context) (*Ribbon, error) {
	c, err := newCanvas(NameRibbon, ctx, 0.9)
	if err != nil {
		return nil, err
	}
	r := &Ribbon{
		canvas:     c,
		points:     make([]sim.Point, RibbonSegments),
		rest:       8,
		stiffness:  1,
		iterations: 6,
		gravity:    300,
		damping:    0.99,
		thickness:  10,
	}
	w, h := r.size()
	r.anchor = sim.V(w/2, h/3)
	for i := range r.points {
		r.points[i] = sim.NewPoint(r.anchor.Add(sim.V(0, float64(i)*r.rest)))
	}
	r.bind(params{
		"rest":       {value: &r.rest, min: 1, max: 100},
		"stiffness":  {value: &r.stiffness, min: 0.05, max: 1},
		"iterations": {value: &r.iterations, min: 1, max: 32},
		"gravity":    {value: &r.gravity, min: -2000, max: 2000},
		"damping":    {value: &r.damping, min: 0.5, max: 1},
		"thickness":  {value: &r.thickness, min: 0, max: 60},
	})
	return r, nil
}

// Head returns the position of the first chain point.
func (r *Ribbon) Head() sim.Vec2 {
	return r.points[0].Pos
}

// Points returns the chain. The slice is owned by the ribbon.
func (r *Ribbon) Points() []sim.Point {
	return r.points
}

// Update moves the anchor toward the pointer and relaxes the chain.
func (r *Ribbon) Update(dt float64, audio *analysis.Frame, in *input.Snapshot) error {
	if err := r.live(); err != nil {
		return err
	}
	r.width = 1 + r.thickness*audio.Bass
	r.hue = 300 + 200*audio.Centroid
	if dt <= 0 {
		return nil
	}

	if dt != r.springDt {
		r.spring = harmonica.NewSpring(dt, anchorFrequency, anchorDamping)
		r.springDt = dt
	}
	goal := r.anchor
	if in != input.Empty() {
		goal = sim.V(in.PointerX, in.PointerY)
	}
	for axis := 0; axis < 2; axis++ {
		r.anchor[axis], r.anchorVel[axis] = r.spring.Update(r.anchor[axis], r.anchorVel[axis], goal[axis])
	}

	g := sim.V(0, r.gravity)
	if audio.Beat {
		g = g.Mul(-1)
	}
	for i := 1; i < len(r.points); i++ {
		r.points[i].Step(g, dt, r.damping)
	}

	w, h := r.size()
	for it := 0; it < int(r.iterations); it++ {
		r.pinHead()
		for i := 1; i < len(r.points); i++ {
			sim.Constrain(&r.points[i-1], &r.points[i], r.rest, r.stiffness)
		}
	}
	r.pinHead()
	for i := 1; i < len(r.points); i++ {
		r.points[i].Bound(0, 0, w-1, h-1)
	}
	return nil
}

func (r *Ribbon) pinHead() {
	head := &r.points[0]
	head.Prev = head.Pos
	head.Pos = r.anchor
}

// Draw renders the chain as overlapping soft discs joined by lines.
func (r *Ribbon) Draw() (*surface.Surface, error) {
	if err := r.live(); err != nil {
		return nil, err
	}
	r.surf.Clear()
	n := float64(len(r.points))
	for i, p := range r.points {
		c := tint(r.hue+float64(i)*120/n, 0.75, 0.6)
		fade := 1 - float64(i)/n
		r.surf.Splat(p.Pos[0], p.Pos[1], r.width*fade+1, c.Scale(0.4))
		if i > 0 {
			q := r.points[i-1].Pos
			r.surf.Line(q[0], q[1], p.Pos[0], p.Pos[1], c)
		}
	}
	return r.surf, nil
}

// Resize resizes the surface. The chain settles into the new bounds on the
// next update.
func (r *Ribbon) Resize(width, height int) error {
	if err := r.live(); err != nil {
		return err
	}
	return r.surf.Resize(width, height)
}

// Destroy drops the chain and the surface.
func (r *Ribbon) Destroy() {
	r.release()
}
