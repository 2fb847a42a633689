package sim

import (
	"math"
	"slices"
	"testing"
)

func TestNoiseDeterministic(t *testing.T) {
	a := NewNoise(42)
	b := NewNoise(42)
	c := NewNoise(43)

	differs := false
	for i := 0; i < 64; i++ {
		x, y, z := float64(i)*0.37, float64(i)*0.11, float64(i)*0.05
		if a.Eval2(x, y) != b.Eval2(x, y) {
			t.Fatalf("Eval2 differs for equal seeds at %d", i)
		}
		if a.Eval3(x, y, z) != b.Eval3(x, y, z) {
			t.Fatalf("Eval3 differs for equal seeds at %d", i)
		}
		if a.Eval2(x, y) != c.Eval2(x, y) {
			differs = true
		}
	}
	if !differs {
		t.Fatal("different seeds produced identical fields")
	}
	if a.Seed() != 42 {
		t.Fatalf("Seed=%d, want 42", a.Seed())
	}
}

func TestFractalRange(t *testing.T) {
	n := NewNoise(7)
	tests := []struct {
		name string
		o    Octaves
	}{
		{"default", DefaultOctaves()},
		{"single", Octaves{Count: 1, Lacunarity: 2, Gain: 0.5}},
		{"zero value", Octaves{}},
		{"many", Octaves{Count: 8, Lacunarity: 2.1, Gain: 0.6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 500; i++ {
				x, y := float64(i)*0.173, float64(i%37)*0.291
				v2 := n.Fractal2(x, y, tt.o)
				v3 := n.Fractal3(x, y, 0.5, tt.o)
				if math.IsNaN(v2) || v2 < -1 || v2 > 1 {
					t.Fatalf("Fractal2=%g out of [-1,1]", v2)
				}
				if math.IsNaN(v3) || v3 < -1 || v3 > 1 {
					t.Fatalf("Fractal3=%g out of [-1,1]", v3)
				}
			}
		})
	}
}

// TestCurlIsDivergenceFree checks the divergence of the curl field at a
// spread of points. Simplex noise has non-smooth second derivatives at
// lattice boundaries, so a few points may spike; the 95th percentile must
// stay near zero.
func TestCurlIsDivergenceFree(t *testing.T) {
	n := NewNoise(1)
	const h = 1e-3

	divs := make([]float64, 0, 200)
	var maxPartial float64
	for i := 0; i < 200; i++ {
		x := 0.1 + float64(i%20)*0.31
		y := 0.2 + float64(i/20)*0.27
		tm := 0.4

		dudx := (n.Curl2(x+h, y, tm)[0] - n.Curl2(x-h, y, tm)[0]) / (2 * h)
		dvdy := (n.Curl2(x, y+h, tm)[1] - n.Curl2(x, y-h, tm)[1]) / (2 * h)

		divs = append(divs, math.Abs(dudx+dvdy))
		maxPartial = math.Max(maxPartial, math.Abs(dudx))
	}
	if maxPartial < 0.1 {
		t.Fatalf("field too flat to test: max partial %g", maxPartial)
	}

	slices.Sort(divs)
	median := divs[len(divs)/2]
	p95 := divs[len(divs)*95/100]
	if median > 1e-3*maxPartial {
		t.Fatalf("median divergence %g, max partial %g", median, maxPartial)
	}
	if p95 > 2e-2*maxPartial {
		t.Fatalf("95th percentile divergence %g, max partial %g", p95, maxPartial)
	}
}

func TestFlowAngleDeterministic(t *testing.T) {
	a := NewNoise(3).FlowAngle(1.5, 2.5, 0, DefaultOctaves())
	b := NewNoise(3).FlowAngle(1.5, 2.5, 0, DefaultOctaves())
	if a != b {
		t.Fatalf("FlowAngle %g != %g", a, b)
	}
	if math.Abs(a) > 2*math.Pi {
		t.Fatalf("FlowAngle=%g out of range", a)
	}
}
