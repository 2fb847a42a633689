package sim

import (
	"math"
	"testing"
)

func TestForces(t *testing.T) {
	radii := FlockRadii{Separation: 10, Alignment: 20, Cohesion: 30}
	self := Boid{Pos: V(0, 0), Vel: V(1, 0)}

	t.Run("no neighbours", func(t *testing.T) {
		s := Forces(self, nil, radii)
		if s != (Steering{}) {
			t.Fatalf("got %+v, want zero", s)
		}
	})

	t.Run("self is ignored", func(t *testing.T) {
		s := Forces(self, []Boid{self}, radii)
		if s != (Steering{}) {
			t.Fatalf("got %+v, want zero", s)
		}
	})

	t.Run("separation points away", func(t *testing.T) {
		s := Forces(self, []Boid{{Pos: V(5, 0)}}, radii)
		if !nearVec(s.Separation, V(-1, 0), 1e-12) {
			t.Fatalf("separation=%v, want (-1,0)", s.Separation)
		}
	})

	t.Run("alignment matches mean velocity", func(t *testing.T) {
		s := Forces(self, []Boid{
			{Pos: V(15, 0), Vel: V(0, 2)},
			{Pos: V(0, 15), Vel: V(0, 4)},
		}, radii)
		if !nearVec(s.Alignment, V(-1, 3), 1e-12) {
			t.Fatalf("alignment=%v, want (-1,3)", s.Alignment)
		}
		if s.Separation != (Vec2{}) {
			t.Fatalf("separation=%v, want zero outside radius", s.Separation)
		}
	})

	t.Run("cohesion targets centroid", func(t *testing.T) {
		s := Forces(self, []Boid{
			{Pos: V(25, 0)},
			{Pos: V(0, 25)},
		}, radii)
		if !nearVec(s.Cohesion, V(12.5, 12.5), 1e-12) {
			t.Fatalf("cohesion=%v, want (12.5,12.5)", s.Cohesion)
		}
		if s.Alignment != (Vec2{}) {
			t.Fatalf("alignment=%v, want zero outside radius", s.Alignment)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		s := Forces(self, []Boid{{Pos: V(100, 100), Vel: V(5, 5)}}, radii)
		if s != (Steering{}) {
			t.Fatalf("got %+v, want zero", s)
		}
	})
}

func TestSteeringWeighted(t *testing.T) {
	s := Steering{Separation: V(1, 0), Alignment: V(0, 1), Cohesion: V(1, 1)}
	got := s.Weighted(2, 3, 0.5)
	if !nearVec(got, V(2.5, 3.5), 1e-12) {
		t.Fatalf("Weighted=%v, want (2.5,3.5)", got)
	}
}

func TestFlockRadiiMax(t *testing.T) {
	if got := (FlockRadii{3, 9, 5}).Max(); got != 9 {
		t.Fatalf("Max=%g, want 9", got)
	}
}

func TestGridQueryMatchesBruteForce(t *testing.T) {
	const w, h = 200.0, 120.0
	g, err := NewGrid(w, h, 16)
	if err != nil {
		t.Fatal(err)
	}

	pts := make([]Vec2, 300)
	for i := range pts {
		pts[i] = V(math.Mod(float64(i)*37.3, w), math.Mod(float64(i)*19.7, h))
		g.Insert(i, pts[i])
	}

	queries := []struct {
		pos    Vec2
		radius float64
	}{
		{V(100, 60), 16},
		{V(0, 0), 25},
		{V(199, 119), 10},
		{V(50, 30), 40},
	}
	var buf []int
	for _, q := range queries {
		buf = g.Query(q.pos, q.radius, buf[:0])
		found := make(map[int]bool, len(buf))
		for _, i := range buf {
			found[i] = true
		}
		for i, p := range pts {
			d := p.Sub(q.pos)
			if d[0]*d[0]+d[1]*d[1] <= q.radius*q.radius && !found[i] {
				t.Fatalf("query %v r=%g missed point %d at %v", q.pos, q.radius, i, p)
			}
		}
		if len(buf) >= len(pts) {
			t.Fatalf("query %v r=%g scanned every point", q.pos, q.radius)
		}
	}
}

func TestGridClear(t *testing.T) {
	g, err := NewGrid(10, 10, 5)
	if err != nil {
		t.Fatal(err)
	}
	g.Insert(0, V(1, 1))
	g.Insert(1, V(-50, 200))
	if got := g.Query(V(1, 1), 100, nil); len(got) != 2 {
		t.Fatalf("len=%d, want 2", len(got))
	}
	g.Clear()
	if got := g.Query(V(1, 1), 100, nil); len(got) != 0 {
		t.Fatalf("len=%d after Clear, want 0", len(got))
	}
}

func TestNewGridValidation(t *testing.T) {
	tests := []struct {
		name       string
		w, h, cell float64
	}{
		{"zero width", 0, 10, 1},
		{"negative height", 10, -1, 1},
		{"zero cell", 10, 10, 0},
		{"nan cell", 10, 10, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGrid(tt.w, tt.h, tt.cell); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func nearVec(a, b Vec2, tol float64) bool {
	return math.Abs(a[0]-b[0]) <= tol && math.Abs(a[1]-b[1]) <= tol
}
