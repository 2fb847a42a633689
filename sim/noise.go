package sim

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// curlEpsilon is the finite-difference step used for curl noise gradients.
const curlEpsilon = 1e-4

// Octaves configures fractal noise.
type Octaves struct {
	Count      int     // number of layers, at least 1
	Lacunarity float64 // frequency multiplier per layer
	Gain       float64 // amplitude multiplier per layer
}

// DefaultOctaves returns four layers doubling frequency and halving
// amplitude each step.
func DefaultOctaves() Octaves {
	return Octaves{Count: 4, Lacunarity: 2, Gain: 0.5}
}

func (o Octaves) sanitized() Octaves {
	if o.Count < 1 {
		o.Count = 1
	}
	if o.Lacunarity <= 0 {
		o.Lacunarity = 2
	}
	if o.Gain <= 0 {
		o.Gain = 0.5
	}
	return o
}

// Noise is a deterministic, seeded gradient noise sampler. Values are in
// roughly [-1, 1]. Noise is safe for concurrent reads.
type Noise struct {
	src  opensimplex.Noise
	seed int64
}

// NewNoise returns a sampler for seed. Equal seeds give equal fields.
func NewNoise(seed int64) *Noise {
	return &Noise{src: opensimplex.New(seed), seed: seed}
}

// Seed returns the seed the sampler was created with.
func (n *Noise) Seed() int64 {
	return n.seed
}

// Eval2 samples the 2D field.
func (n *Noise) Eval2(x, y float64) float64 {
	return n.src.Eval2(x, y)
}

// Eval3 samples the 3D field. The third axis is commonly time.
func (n *Noise) Eval3(x, y, z float64) float64 {
	return n.src.Eval3(x, y, z)
}

// Fractal2 sums o.Count layers of 2D noise and normalizes by the total
// amplitude, keeping the result in the single-layer range.
func (n *Noise) Fractal2(x, y float64, o Octaves) float64 {
	o = o.sanitized()
	var total, norm float64
	freq, amp := 1.0, 1.0
	for i := 0; i < o.Count; i++ {
		total += n.src.Eval2(x*freq, y*freq) * amp
		norm += amp
		freq *= o.Lacunarity
		amp *= o.Gain
	}
	return total / norm
}

// Fractal3 is the 3D counterpart of Fractal2.
func (n *Noise) Fractal3(x, y, z float64, o Octaves) float64 {
	o = o.sanitized()
	var total, norm float64
	freq, amp := 1.0, 1.0
	for i := 0; i < o.Count; i++ {
		total += n.src.Eval3(x*freq, y*freq, z*freq) * amp
		norm += amp
		freq *= o.Lacunarity
		amp *= o.Gain
	}
	return total / norm
}

// Curl2 returns the curl of the scalar potential Eval3(x, y, t): the
// perpendicular of its spatial gradient, (dψ/dy, -dψ/dx). The field is
// divergence free, so particles advected by it neither clump nor leave
// voids.
func (n *Noise) Curl2(x, y, t float64) Vec2 {
	const e = curlEpsilon
	dy := (n.src.Eval3(x, y+e, t) - n.src.Eval3(x, y-e, t)) / (2 * e)
	dx := (n.src.Eval3(x+e, y, t) - n.src.Eval3(x-e, y, t)) / (2 * e)
	return Vec2{dy, -dx}
}

// FlowAngle maps fractal noise at (x, y, t) to an angle in radians, for
// classic angle-based flow fields.
func (n *Noise) FlowAngle(x, y, t float64, o Octaves) float64 {
	return n.Fractal3(x, y, t, o) * 2 * math.Pi
}
