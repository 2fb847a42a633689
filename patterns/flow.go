package patterns

import (
	"github.com/cwbudde/algo-glow/analysis"
	"github.com/cwbudde/algo-glow/input"
	"github.com/cwbudde/algo-glow/scene"
	"github.com/cwbudde/algo-glow/sim"
	"github.com/cwbudde/algo-glow/surface"
)

// FlowMotes is the number of motes kept alive by a flow pattern.
const FlowMotes = 1500

type mote struct {
	pos  sim.Vec2
	prev sim.Vec2
}

// Flow advects motes through a divergence-free curl-noise field. Loudness
// sets the speed and the spectral centroid sets the hue. A beat jumps the
// field forward in time.
type Flow struct {
	canvas

	noise *sim.Noise
	pool  *sim.Pool[mote]
	clock float64
	hue   float64

	speed  float64
	scale  float64
	drift  float64
	minAge float64
	maxAge float64
}

// NewFlow creates a flow pattern.
func NewFlow(ctx scene.Context) (*Flow, error) {
	c, err := newCanvas(NameFlow, ctx, 0.92)
	if err != nil {
		return nil, err
	}
	pool, err := sim.NewPool[mote](FlowMotes)
	if err != nil {
		return nil, err
	}
	f := &Flow{
		canvas: c,
		noise:  sim.NewNoise(ctx.Seed),
		pool:   pool,
		speed:  70,
		scale:  0.004,
		drift:  0.15,
		minAge: 2,
		maxAge: 6,
	}
	f.bind(params{
		"speed": {value: &f.speed, min: 0, max: 1000},
		"scale": {value: &f.scale, min: 0.0005, max: 0.05},
		"drift": {value: &f.drift, min: 0, max: 5},
	})
	f.refill()
	return f, nil
}

// refill respawns motes at random positions until the pool is full.
func (f *Flow) refill() {
	for !f.pool.Full() {
		p := f.randomPoint()
		life := f.minAge + f.rng.Float64()*(f.maxAge-f.minAge)
		f.pool.Spawn(mote{pos: p, prev: p}, life)
	}
}

// Update advances the field and moves every mote along it.
func (f *Flow) Update(dt float64, audio *analysis.Frame, _ *input.Snapshot) error {
	if err := f.live(); err != nil {
		return err
	}
	f.clock += dt * f.drift * (1 + audio.Mid)
	if audio.Beat {
		f.clock += f.drift
	}

	f.pool.Age(dt)
	f.refill()

	f.hue = 180 + 160*audio.Centroid
	speed := f.speed * (0.3 + 2*audio.RMS)
	f.pool.Each(func(m *mote, _ float64) {
		m.prev = m.pos
		v := f.noise.Curl2(m.pos[0]*f.scale, m.pos[1]*f.scale, f.clock)
		m.pos = m.pos.Add(v.Mul(speed * dt))
		if f.wrap(&m.pos) {
			m.prev = m.pos
		}
	})
	return nil
}

// Draw renders each mote as a short streak from its previous position.
func (f *Flow) Draw() (*surface.Surface, error) {
	if err := f.live(); err != nil {
		return nil, err
	}
	f.surf.Clear()
	f.pool.Each(func(m *mote, _ float64) {
		hue := f.hue + 30*f.noise.Eval2(m.pos[0]*f.scale, m.pos[1]*f.scale)
		c := tint(hue, 0.7, 0.25)
		f.surf.Line(m.prev[0], m.prev[1], m.pos[0], m.pos[1], c)
	})
	return f.surf, nil
}

// Resize resizes the surface and scatters the motes over the new area.
func (f *Flow) Resize(width, height int) error {
	if err := f.live(); err != nil {
		return err
	}
	if err := f.surf.Resize(width, height); err != nil {
		return err
	}
	f.pool.Clear()
	f.refill()
	return nil
}

// Destroy drops the motes and the surface.
func (f *Flow) Destroy() {
	f.pool.Clear()
	f.release()
}
