package sim

// Point is a verlet particle. Velocity is implicit: the displacement from
// Prev to Pos over the previous step.
type Point struct {
	Pos    Vec2
	Prev   Vec2
	PrevDt float64
}

// NewPoint returns a point at rest at pos.
func NewPoint(pos Vec2) Point {
	return Point{Pos: pos, Prev: pos}
}

// Step advances p by dt seconds under acceleration accel.
//
// The previous displacement is rescaled by dt/PrevDt (time-corrected
// verlet), so a change in frame time does not inject or remove energy.
// damping in [0, 1] scales the carried displacement; 1 is lossless.
// A non-positive dt leaves the point unchanged.
func (p *Point) Step(accel Vec2, dt, damping float64) {
	if dt <= 0 {
		return
	}
	ratio := 1.0
	if p.PrevDt > 0 {
		ratio = dt / p.PrevDt
	}
	disp := p.Pos.Sub(p.Prev).Mul(ratio * damping)
	next := p.Pos.Add(disp).Add(accel.Mul(dt * dt))
	p.Prev = p.Pos
	p.Pos = next
	p.PrevDt = dt
}

// Velocity returns the implicit velocity in units per second.
func (p *Point) Velocity() Vec2 {
	if p.PrevDt <= 0 {
		return Vec2{}
	}
	return p.Pos.Sub(p.Prev).Mul(1 / p.PrevDt)
}

// SetVelocity rewrites Prev so the implicit velocity equals v over dt.
func (p *Point) SetVelocity(v Vec2, dt float64) {
	if dt <= 0 {
		return
	}
	p.Prev = p.Pos.Sub(v.Mul(dt))
	p.PrevDt = dt
}

// Teleport moves p to pos and removes its velocity.
func (p *Point) Teleport(pos Vec2) {
	p.Pos = pos
	p.Prev = pos
}

// Bound keeps p inside the rectangle, reflecting its implicit velocity off
// the walls.
func (p *Point) Bound(minX, minY, maxX, maxY float64) {
	for axis, lo, hi := 0, minX, maxX; axis < 2; axis, lo, hi = axis+1, minY, maxY {
		switch {
		case p.Pos[axis] < lo:
			v := p.Pos[axis] - p.Prev[axis]
			p.Pos[axis] = lo
			p.Prev[axis] = lo + v
		case p.Pos[axis] > hi:
			v := p.Pos[axis] - p.Prev[axis]
			p.Pos[axis] = hi
			p.Prev[axis] = hi + v
		}
	}
}

// Constrain moves a and b toward distance rest from each other.
// stiffness in [0, 1] is the fraction of the error corrected per call; the
// correction is split evenly between both points.
func Constrain(a, b *Point, rest, stiffness float64) {
	d := b.Pos.Sub(a.Pos)
	dist := length(d)
	if dist == 0 {
		return
	}
	diff := (dist - rest) / dist * 0.5 * stiffness
	offset := d.Mul(diff)
	a.Pos = a.Pos.Add(offset)
	b.Pos = b.Pos.Sub(offset)
}
