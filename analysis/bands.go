package analysis

import "math"

// bandRange is a half-open range of FFT bins [lo, hi). Edges above the last
// bin collapse to an empty range.
type bandRange struct {
	lo, hi int
}

func newBandRange(loHz, hiHz, binHz float64, lastBin int) bandRange {
	lo := int(math.Ceil(loHz / binHz))
	hi := int(math.Ceil(hiHz / binHz))
	lo = min(max(lo, 1), lastBin+1)
	hi = min(hi, lastBin+1)
	if hi < lo {
		hi = lo
	}
	return bandRange{lo: lo, hi: hi}
}

func (b bandRange) sum(mag []float64) float64 {
	s := 0.0
	for _, m := range mag[b.lo:b.hi] {
		s += m
	}
	return s
}

// peakScale normalizes a band energy against its rolling peak.
//
// The peak jumps up instantly and relaxes exponentially toward the current
// value, never below floor. Output is x / peak, clamped to [0, 1].
type peakScale struct {
	peak  float64
	floor float64
	relax float64 // per-cycle relaxation coefficient in (0, 1]
}

func newPeakScale(floor, relax float64) peakScale {
	return peakScale{peak: floor, floor: floor, relax: relax}
}

func (p *peakScale) apply(x float64) float64 {
	switch {
	case math.IsNaN(x) || x < 0:
		x = 0
	case math.IsInf(x, 1):
		return 1
	}
	if x > p.peak {
		p.peak = x
	} else {
		p.peak += (x - p.peak) * p.relax
	}
	if p.peak < p.floor {
		p.peak = p.floor
	}
	return clamp01(x / p.peak)
}

func (p *peakScale) reset() {
	p.peak = p.floor
}

// centroid returns the magnitude-weighted mean bin frequency normalized by
// the nyquist frequency. Silence yields 0.
func centroid(mag []float64) float64 {
	last := len(mag) - 1
	if last < 1 {
		return 0
	}
	var num, den float64
	for k := 1; k <= last; k++ {
		num += float64(k) * mag[k]
		den += mag[k]
	}
	if den < 1e-12 || math.IsInf(den, 0) || math.IsNaN(num) {
		return 0
	}
	return clamp01(num / den / float64(last))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
