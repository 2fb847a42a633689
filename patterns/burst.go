package patterns

import (
	"math"

	"github.com/cwbudde/algo-glow/analysis"
	"github.com/cwbudde/algo-glow/input"
	"github.com/cwbudde/algo-glow/scene"
	"github.com/cwbudde/algo-glow/sim"
	"github.com/cwbudde/algo-glow/surface"
)

const (
	// BurstCapacity bounds the live sparks of one burst pattern.
	BurstCapacity = 2048
	// BurstPerClick is the default number of sparks spawned per click.
	BurstPerClick = 5

	burstRadius = 2.5
)

type spark struct {
	pos sim.Vec2
	vel sim.Vec2
	hue float64
}

// Burst spawns a small explosion of sparks at every click and a ring of
// sparks from the centre on every beat.
type Burst struct {
	canvas

	pool    *sim.Pool[spark]
	trigger input.Trigger

	perClick float64
	ring     float64
	speed    float64
	life     float64
	drag     float64
	gravity  float64
}

// NewBurst creates a burst pattern.
func NewBurst(ctx scene.Context) (*Burst, error) {
	c, err := newCanvas(NameBurst, ctx, 0.8)
	if err != nil {
		return nil, err
	}
	pool, err := sim.NewPool[spark](BurstCapacity)
	if err != nil {
		return nil, err
	}
	b := &Burst{
		canvas:   c,
		pool:     pool,
		perClick: BurstPerClick,
		ring:     48,
		speed:    90,
		life:     1.2,
		drag:     0.35,
		gravity:  40,
	}
	b.bind(params{
		"per_click": {value: &b.perClick, min: 0, max: 256},
		"ring":      {value: &b.ring, min: 0, max: 512},
		"speed":     {value: &b.speed, min: 0, max: 2000},
		"life":      {value: &b.life, min: 0.05, max: 10},
		"drag":      {value: &b.drag, min: 0, max: 1},
		"gravity":   {value: &b.gravity, min: -1000, max: 1000},
	})
	return b, nil
}

// Live returns the number of live sparks.
func (b *Burst) Live() int {
	return b.pool.Len()
}

// Update ages the sparks, spawns new ones for fresh clicks and beats and
// moves everything by dt.
func (b *Burst) Update(dt float64, audio *analysis.Frame, in *input.Snapshot) error {
	if err := b.live(); err != nil {
		return err
	}
	b.pool.Age(dt)

	hue := 20 + audio.Centroid*280
	for _, c := range b.trigger.Fire(in) {
		b.explode(sim.V(c.X, c.Y), int(b.perClick), b.speed, hue)
	}
	if audio.Beat {
		w, h := b.size()
		b.ringBurst(sim.V(w/2, h/2), int(b.ring), b.speed*(1+2*audio.Bass), hue+180)
	}

	drag := math.Pow(b.drag, dt)
	g := sim.V(0, b.gravity*dt)
	b.pool.Each(func(s *spark, _ float64) {
		s.pos = s.pos.Add(s.vel.Mul(dt))
		s.vel = s.vel.Mul(drag).Add(g)
	})
	return nil
}

func (b *Burst) explode(at sim.Vec2, n int, speed, hue float64) {
	b.pool.SpawnBurst(n, b.life, func(int) spark {
		angle := b.rng.Float64() * 2 * math.Pi
		v := speed * (0.5 + b.rng.Float64())
		return spark{
			pos: at,
			vel: sim.V(math.Cos(angle)*v, math.Sin(angle)*v),
			hue: hue + b.rng.Float64()*40,
		}
	})
}

func (b *Burst) ringBurst(at sim.Vec2, n int, speed, hue float64) {
	if n <= 0 {
		return
	}
	step := 2 * math.Pi / float64(n)
	b.pool.SpawnBurst(n, b.life, func(i int) spark {
		angle := float64(i) * step
		return spark{
			pos: at,
			vel: sim.V(math.Cos(angle)*speed, math.Sin(angle)*speed),
			hue: hue + float64(i)*360/float64(n),
		}
	})
}

// Draw renders every live spark, fading with its remaining life.
func (b *Burst) Draw() (*surface.Surface, error) {
	if err := b.live(); err != nil {
		return nil, err
	}
	b.surf.Clear()
	b.pool.Each(func(s *spark, life float64) {
		fade := math.Min(life/b.life, 1)
		b.surf.Splat(s.pos[0], s.pos[1], burstRadius, tint(s.hue, 0.8, 1).Scale(fade))
	})
	return b.surf, nil
}

// Resize resizes the surface. Sparks keep their positions.
func (b *Burst) Resize(width, height int) error {
	if err := b.live(); err != nil {
		return err
	}
	return b.surf.Resize(width, height)
}

// Destroy drops the sparks and the surface.
func (b *Burst) Destroy() {
	b.pool.Clear()
	b.release()
}
