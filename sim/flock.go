package sim

// Boid is one flocking agent.
type Boid struct {
	Pos Vec2
	Vel Vec2
}

// FlockRadii sets the neighbourhood radius of each steering rule.
type FlockRadii struct {
	Separation float64
	Alignment  float64
	Cohesion   float64
}

// Max returns the largest radius, the scan radius needed for a neighbour
// query covering all three rules.
func (r FlockRadii) Max() float64 {
	m := r.Separation
	if r.Alignment > m {
		m = r.Alignment
	}
	if r.Cohesion > m {
		m = r.Cohesion
	}
	return m
}

// Steering holds the three independent boids contributions.
type Steering struct {
	Separation Vec2
	Alignment  Vec2
	Cohesion   Vec2
}

// Weighted combines the contributions into one force.
func (s Steering) Weighted(separation, alignment, cohesion float64) Vec2 {
	return s.Separation.Mul(separation).
		Add(s.Alignment.Mul(alignment)).
		Add(s.Cohesion.Mul(cohesion))
}

// Forces computes the boids rules for self against neighbours.
//
//   - Separation: mean unit vector pointing away from neighbours closer than
//     r.Separation. Neighbours at exactly the same position are skipped.
//   - Alignment: mean velocity of neighbours within r.Alignment minus the
//     own velocity.
//   - Cohesion: vector from the own position to the centroid of neighbours
//     within r.Cohesion.
//
// A rule with no neighbour in range contributes the zero vector. The
// neighbour slice may include self; it is recognised by identical position
// and ignored.
func Forces(self Boid, neighbours []Boid, r FlockRadii) Steering {
	var (
		sep, velSum, posSum Vec2
		nSep, nAli, nCoh    int
	)

	sepSq := r.Separation * r.Separation
	aliSq := r.Alignment * r.Alignment
	cohSq := r.Cohesion * r.Cohesion

	for _, o := range neighbours {
		d := self.Pos.Sub(o.Pos)
		distSq := d[0]*d[0] + d[1]*d[1]
		if distSq == 0 {
			continue
		}
		if distSq < sepSq {
			sep = sep.Add(d.Mul(1 / sqrt(distSq)))
			nSep++
		}
		if distSq < aliSq {
			velSum = velSum.Add(o.Vel)
			nAli++
		}
		if distSq < cohSq {
			posSum = posSum.Add(o.Pos)
			nCoh++
		}
	}

	var s Steering
	if nSep > 0 {
		s.Separation = sep.Mul(1 / float64(nSep))
	}
	if nAli > 0 {
		s.Alignment = velSum.Mul(1 / float64(nAli)).Sub(self.Vel)
	}
	if nCoh > 0 {
		s.Cohesion = posSum.Mul(1 / float64(nCoh)).Sub(self.Pos)
	}
	return s
}
