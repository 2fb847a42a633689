package patterns

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/cwbudde/algo-glow/analysis"
	"github.com/cwbudde/algo-glow/input"
	"github.com/cwbudde/algo-glow/scene"
	"github.com/cwbudde/algo-glow/sim"
	"github.com/cwbudde/algo-glow/surface"
)

// FlockSize is the number of boids in a flock pattern.
const FlockSize = 300

const (
	attractorFrequency = 4.0
	attractorDamping   = 0.9
)

// Flock is a boids flock chasing an attractor. The attractor follows the
// pointer while it is pressed and the canvas centre otherwise, smoothed by
// a damped spring. Beats scatter the flock away from the attractor.
type Flock struct {
	canvas

	boids   []sim.Boid
	next    []sim.Vec2
	near    []int
	scratch []sim.Boid
	grid    *sim.Grid
	radii   sim.FlockRadii

	spring   harmonica.Spring
	springDt float64
	attr     sim.Vec2
	attrVel  sim.Vec2

	separation float64
	alignment  float64
	cohesion   float64
	attract    float64
	scatter    float64
	maxSpeed   float64
}

// NewFlock creates a flock pattern.
func NewFlock(ctx scene.Context) (*Flock, error) {
	c, err := newCanvas(NameFlock, ctx, 0.75)
	if err != nil {
		return nil, err
	}
	f := &Flock{
		canvas:     c,
		boids:      make([]sim.Boid, FlockSize),
		next:       make([]sim.Vec2, FlockSize),
		radii:      sim.FlockRadii{Separation: 12, Alignment: 28, Cohesion: 40},
		separation: 140,
		alignment:  1.2,
		cohesion:   0.8,
		attract:    0.6,
		scatter:    2500,
		maxSpeed:   140,
	}
	if err := f.resetGrid(); err != nil {
		return nil, err
	}
	for i := range f.boids {
		angle := f.rng.Float64() * 2 * math.Pi
		f.boids[i] = sim.Boid{
			Pos: f.randomPoint(),
			Vel: sim.V(math.Cos(angle), math.Sin(angle)).Mul(f.maxSpeed / 2),
		}
	}
	w, h := f.size()
	f.attr = sim.V(w/2, h/2)
	f.bind(params{
		"separation": {value: &f.separation, min: 0, max: 1000},
		"alignment":  {value: &f.alignment, min: 0, max: 10},
		"cohesion":   {value: &f.cohesion, min: 0, max: 10},
		"attract":    {value: &f.attract, min: 0, max: 10},
		"scatter":    {value: &f.scatter, min: 0, max: 20000},
		"max_speed":  {value: &f.maxSpeed, min: 1, max: 2000},
	})
	return f, nil
}

func (f *Flock) resetGrid() error {
	w, h := f.size()
	g, err := sim.NewGrid(w, h, f.radii.Max())
	if err != nil {
		return err
	}
	f.grid = g
	return nil
}

// Attractor returns the smoothed attractor position.
func (f *Flock) Attractor() sim.Vec2 {
	return f.attr
}

// Update steers every boid and moves the flock by dt.
func (f *Flock) Update(dt float64, audio *analysis.Frame, in *input.Snapshot) error {
	if err := f.live(); err != nil {
		return err
	}
	if dt <= 0 {
		return nil
	}

	w, h := f.size()
	goal := sim.V(w/2, h/2)
	if in.IsDown {
		goal = sim.V(in.PointerX, in.PointerY)
	}
	f.followAttractor(goal, dt)

	f.grid.Clear()
	for i, b := range f.boids {
		f.grid.Insert(i, b.Pos)
	}

	limit := f.maxSpeed * (0.6 + audio.RMS)
	for i, b := range f.boids {
		f.near = f.grid.Query(b.Pos, f.radii.Max(), f.near[:0])
		f.scratch = f.scratch[:0]
		for _, j := range f.near {
			if j != i {
				f.scratch = append(f.scratch, f.boids[j])
			}
		}
		st := sim.Forces(b, f.scratch, f.radii)
		acc := st.Weighted(f.separation, f.alignment, f.cohesion)

		toward := f.attr.Sub(b.Pos)
		acc = acc.Add(toward.Mul(f.attract))
		if audio.Beat {
			acc = acc.Sub(sim.SafeNormalize(toward).Mul(f.scatter * (0.5 + audio.Bass)))
		}
		f.next[i] = sim.ClampLength(b.Vel.Add(acc.Mul(dt)), limit)
	}

	for i := range f.boids {
		b := &f.boids[i]
		b.Vel = f.next[i]
		b.Pos = b.Pos.Add(b.Vel.Mul(dt))
		f.wrap(&b.Pos)
	}
	return nil
}

// followAttractor moves the attractor toward goal along a damped spring.
// The spring is rebuilt whenever the frame time changes.
func (f *Flock) followAttractor(goal sim.Vec2, dt float64) {
	if dt != f.springDt {
		f.spring = harmonica.NewSpring(dt, attractorFrequency, attractorDamping)
		f.springDt = dt
	}
	for axis := 0; axis < 2; axis++ {
		f.attr[axis], f.attrVel[axis] = f.spring.Update(f.attr[axis], f.attrVel[axis], goal[axis])
	}
}

// Draw renders each boid as a short tail along its velocity, tinted by its
// speed.
func (f *Flock) Draw() (*surface.Surface, error) {
	if err := f.live(); err != nil {
		return nil, err
	}
	f.surf.Clear()
	for _, b := range f.boids {
		speed := math.Hypot(b.Vel[0], b.Vel[1])
		c := tint(200+120*speed/f.maxSpeed, 0.6, 0.9)
		tail := b.Pos.Sub(b.Vel.Mul(0.05))
		f.surf.Line(tail[0], tail[1], b.Pos[0], b.Pos[1], c.Scale(0.5))
		f.surf.Splat(b.Pos[0], b.Pos[1], 1.5, c)
	}
	return f.surf, nil
}

// Resize resizes the surface and the neighbour grid and wraps boids into
// the new area.
func (f *Flock) Resize(width, height int) error {
	if err := f.live(); err != nil {
		return err
	}
	if err := f.surf.Resize(width, height); err != nil {
		return err
	}
	if err := f.resetGrid(); err != nil {
		return err
	}
	for i := range f.boids {
		f.wrap(&f.boids[i].Pos)
	}
	f.wrap(&f.attr)
	return nil
}

// Destroy drops the flock and the surface.
func (f *Flock) Destroy() {
	f.boids = nil
	f.next = nil
	f.release()
}
