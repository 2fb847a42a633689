package analysis

import (
	"math"
	"time"
)

const (
	defaultSampleRate    = 48000.0
	defaultFFTSize       = 2048
	defaultHopSize       = 512
	defaultBeatThreshold = 1.3
	defaultRefractory    = 150 * time.Millisecond
	defaultAverageTime   = time.Second
	defaultMinLevel      = 0.02
	defaultBassHz        = 250.0
	defaultMidHz         = 4000.0
	defaultTrebleHz      = 16000.0
	defaultScaleTime     = 3 * time.Second
	defaultScaleFloor    = 0.05

	// lowCutHz excludes DC and sub-audio drift from the bass band.
	lowCutHz = 20.0
)

// Option configures an [Analyzer].
type Option func(*config)

type config struct {
	sampleRate    float64
	fftSize       int
	hopSize       int
	window        Window
	beatThreshold float64
	refractory    time.Duration
	averageTime   time.Duration
	minLevel      float64
	bassHz        float64
	midHz         float64
	trebleHz      float64
	scaleTime     time.Duration
	scaleFloor    float64
}

func defaultConfig() config {
	return config{
		sampleRate:    defaultSampleRate,
		fftSize:       defaultFFTSize,
		hopSize:       defaultHopSize,
		window:        WindowHann,
		beatThreshold: defaultBeatThreshold,
		refractory:    defaultRefractory,
		averageTime:   defaultAverageTime,
		minLevel:      defaultMinLevel,
		bassHz:        defaultBassHz,
		midHz:         defaultMidHz,
		trebleHz:      defaultTrebleHz,
		scaleTime:     defaultScaleTime,
		scaleFloor:    defaultScaleFloor,
	}
}

// WithSampleRate sets the device sample rate in Hz.
func WithSampleRate(sampleRate float64) Option {
	return func(c *config) {
		if sampleRate > 0 && !math.IsInf(sampleRate, 0) {
			c.sampleRate = sampleRate
		}
	}
}

// WithFFTSize sets the analysis window length in samples.
// Must be a power of two between 256 and 8192.
func WithFFTSize(n int) Option {
	return func(c *config) {
		c.fftSize = n
	}
}

// WithHopSize sets how many new samples trigger one analysis cycle.
// It is also the buffer size requested from the device.
func WithHopSize(n int) Option {
	return func(c *config) {
		c.hopSize = n
	}
}

// WithWindow selects the analysis window.
func WithWindow(w Window) Option {
	return func(c *config) {
		c.window = w
	}
}

// WithBeatThreshold sets the ratio by which RMS must exceed its moving
// average to count as a beat.
func WithBeatThreshold(ratio float64) Option {
	return func(c *config) {
		if ratio >= 1 && !math.IsInf(ratio, 0) {
			c.beatThreshold = ratio
		}
	}
}

// WithRefractory sets the minimum gap between two beats.
func WithRefractory(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.refractory = d
		}
	}
}

// WithAverageTime sets the time constant of the RMS moving average.
func WithAverageTime(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.averageTime = d
		}
	}
}

// WithMinLevel sets the RMS below which no beat is reported.
func WithMinLevel(rms float64) Option {
	return func(c *config) {
		if rms >= 0 && rms <= 1 {
			c.minLevel = rms
		}
	}
}

// WithBandEdges sets the upper edges in Hz of the bass, mid and treble bands.
// The bass band starts at 20 Hz; each band ends where the next begins.
func WithBandEdges(bassHz, midHz, trebleHz float64) Option {
	return func(c *config) {
		c.bassHz = bassHz
		c.midHz = midHz
		c.trebleHz = trebleHz
	}
}

// WithNormalizer configures band normalization: the time constant with which
// a band's rolling peak relaxes after loud passages, and the floor below
// which the peak never falls (in full-scale magnitude units).
func WithNormalizer(relax time.Duration, floor float64) Option {
	return func(c *config) {
		if relax > 0 {
			c.scaleTime = relax
		}
		if floor > 0 && !math.IsInf(floor, 0) {
			c.scaleFloor = floor
		}
	}
}
