package analysis

import (
	"fmt"
	"math"
	"time"
)

// BeatDetector flags onsets in an RMS stream.
//
// A beat is reported when the instantaneous RMS exceeds the exponential
// moving average of previous values by the threshold ratio, exceeds the
// minimum level, and at least the refractory interval has passed since the
// previous beat. The average is updated after the comparison, so a sustained
// loud passage raises the reference and stops retriggering.
//
// BeatDetector is not safe for concurrent use.
type BeatDetector struct {
	threshold   float64
	refractory  time.Duration
	averageTime time.Duration
	minLevel    float64

	avg      float64
	primed   bool
	lastSeen time.Duration
	fired    bool
	lastBeat time.Duration
}

// NewBeatDetector creates a detector.
//
// threshold must be >= 1, refractory >= 0, averageTime > 0 and minLevel in
// [0, 1].
func NewBeatDetector(threshold float64, refractory, averageTime time.Duration, minLevel float64) (*BeatDetector, error) {
	if threshold < 1 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return nil, fmt.Errorf("beat threshold must be finite and >= 1: %f", threshold)
	}
	if refractory < 0 {
		return nil, fmt.Errorf("beat refractory must be >= 0: %s", refractory)
	}
	if averageTime <= 0 {
		return nil, fmt.Errorf("beat average time must be > 0: %s", averageTime)
	}
	if minLevel < 0 || minLevel > 1 || math.IsNaN(minLevel) {
		return nil, fmt.Errorf("beat min level must be in [0,1]: %f", minLevel)
	}
	return &BeatDetector{
		threshold:   threshold,
		refractory:  refractory,
		averageTime: averageTime,
		minLevel:    minLevel,
	}, nil
}

// Detect feeds one RMS value observed at stream time at and reports whether
// it is a beat. rms is clamped to [0, 1]. Times are expected to be
// non-decreasing.
func (d *BeatDetector) Detect(rms float64, at time.Duration) bool {
	rms = clamp01(rms)
	if !d.primed {
		d.avg = rms
		d.primed = true
		d.lastSeen = at
		return false
	}

	beat := rms > d.minLevel &&
		rms > d.avg*d.threshold &&
		(!d.fired || at-d.lastBeat >= d.refractory)

	dt := at - d.lastSeen
	if dt < 0 {
		dt = 0
	}
	d.lastSeen = at
	alpha := 1 - math.Exp(-dt.Seconds()/d.averageTime.Seconds())
	d.avg += alpha * (rms - d.avg)

	if beat {
		d.fired = true
		d.lastBeat = at
	}
	return beat
}

// Average returns the current RMS moving average.
func (d *BeatDetector) Average() float64 {
	return d.avg
}

// Refractory returns the minimum gap between beats.
func (d *BeatDetector) Refractory() time.Duration {
	return d.refractory
}

// Reset clears the average and beat history.
func (d *BeatDetector) Reset() {
	d.avg = 0
	d.primed = false
	d.lastSeen = 0
	d.fired = false
	d.lastBeat = 0
}
