package testutil

import (
	"math"
	"math/rand"
)

// Sine32 generates a deterministic float32 sine wave, the sample format
// delivered by audio devices.
func Sine32(freqHz, sampleRate, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = float32(amplitude * math.Sin(step*float64(i)))
	}
	return out
}

// Noise32 generates white noise with a fixed seed for reproducibility.
func Noise32(seed int64, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = float32((rng.Float64()*2 - 1) * amplitude)
	}
	return out
}

// DC32 generates a constant-valued float32 signal.
func DC32(value float32, length int) []float32 {
	out := make([]float32, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Concat joins sample blocks into one stream.
func Concat(blocks ...[]float32) []float32 {
	n := 0
	for _, b := range blocks {
		n += len(b)
	}
	out := make([]float32, 0, n)
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out
}

// TriangleTrace samples a 0 -> 1 -> 0 triangle envelope of the given
// frequency every step seconds for the given duration. Values are in [0, 1].
func TriangleTrace(freqHz, step, duration float64) []float64 {
	n := int(duration/step) + 1
	out := make([]float64, n)
	for i := range out {
		phase := math.Mod(float64(i)*step*freqHz, 1)
		out[i] = 1 - math.Abs(2*phase-1)
	}
	return out
}

// RandomTrace returns a reproducible amplitude trace in [0, scale].
func RandomTrace(seed int64, scale float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = rng.Float64() * scale
	}
	return out
}
