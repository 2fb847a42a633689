package analysis

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// Device is a capture source delivering mono float32 sample blocks.
//
// Open starts delivery; fn is called from the device's own goroutine, once
// per buffer, until Close returns.
type Device interface {
	Open(sampleRate float64, framesPerBuffer int, fn func(in []float32)) error
	Close() error
}

// Stats reports analyzer activity.
type Stats struct {
	Frames uint64
	Beats  uint64
}

// Analyzer extracts audio features from a sample stream.
//
// Start, Stop and Frame are safe for concurrent use. Process is called by a
// single producer, normally the device callback; concurrent producers are
// serialized.
type Analyzer struct {
	cfg config

	mu      sync.Mutex
	dev     Device
	running bool

	current atomic.Pointer[Frame]
	frames  atomic.Uint64
	beats   atomic.Uint64

	procMu   sync.Mutex
	plan     *algofft.Plan[complex128]
	win      []float64
	winGain  float64
	ring     []float64
	write    int
	filled   int
	sinceHop int
	consumed int64

	block  []float64
	fftIn  []complex128
	fftOut []complex128
	re     []float64
	im     []float64
	mag    []float64

	bands [3]bandRange
	scale [3]peakScale
	beat  *BeatDetector
}

// New creates an analyzer. The analyzer serves [Silent] until the first
// analysis cycle completes.
func New(opts ...Option) (*Analyzer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if err := validateFFTSize(cfg.fftSize); err != nil {
		return nil, err
	}
	if err := validateHopSize(cfg.hopSize, cfg.fftSize); err != nil {
		return nil, err
	}
	nyquist := cfg.sampleRate / 2
	if err := validateBandEdges(cfg.bassHz, cfg.midHz, cfg.trebleHz, nyquist); err != nil {
		return nil, err
	}

	plan, err := algofft.NewPlan64(cfg.fftSize)
	if err != nil {
		return nil, fmt.Errorf("analysis init fft plan: %w", err)
	}

	beat, err := NewBeatDetector(cfg.beatThreshold, cfg.refractory, cfg.averageTime, cfg.minLevel)
	if err != nil {
		return nil, err
	}

	n := cfg.fftSize
	bins := n/2 + 1
	win, gain := cfg.window.coefficients(n)

	a := &Analyzer{
		cfg:     cfg,
		plan:    plan,
		win:     win,
		winGain: gain,
		ring:    make([]float64, n),
		block:   make([]float64, n),
		fftIn:   make([]complex128, n),
		fftOut:  make([]complex128, n),
		re:      make([]float64, bins),
		im:      make([]float64, bins),
		mag:     make([]float64, bins),
		beat:    beat,
	}

	binHz := cfg.sampleRate / float64(n)
	last := bins - 1
	a.bands[0] = newBandRange(lowCutHz, cfg.bassHz, binHz, last)
	a.bands[1] = newBandRange(cfg.bassHz, cfg.midHz, binHz, last)
	a.bands[2] = newBandRange(cfg.midHz, math.Min(cfg.trebleHz, nyquist), binHz, last)

	hopSeconds := float64(cfg.hopSize) / cfg.sampleRate
	relax := 1 - math.Exp(-hopSeconds/cfg.scaleTime.Seconds())
	for i := range a.scale {
		a.scale[i] = newPeakScale(cfg.scaleFloor, relax)
	}

	a.current.Store(Silent())
	return a, nil
}

// Start opens dev and begins analysing its stream. If the device cannot be
// opened the returned error wraps [ErrDeviceUnavailable] and the analyzer
// keeps serving the silent baseline.
func (a *Analyzer) Start(dev Device) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return errAlreadyStarted
	}
	if dev == nil {
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, errNilDevice)
	}

	a.reset()
	if err := dev.Open(a.cfg.sampleRate, a.cfg.hopSize, a.Process); err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	a.dev = dev
	a.running = true
	return nil
}

// Stop closes the device and reverts to the silent baseline. Stopping an
// analyzer that is not running is a no-op.
func (a *Analyzer) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return nil
	}

	err := a.dev.Close()
	a.dev = nil
	a.running = false
	a.reset()
	a.current.Store(Silent())
	if err != nil {
		return fmt.Errorf("analysis close device: %w", err)
	}
	return nil
}

// Running reports whether a device is attached.
func (a *Analyzer) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Frame returns the most recently published frame, or [Silent] if no
// analysis cycle has completed. It never blocks.
func (a *Analyzer) Frame() *Frame {
	if f := a.current.Load(); f != nil {
		return f
	}
	return Silent()
}

// Stats returns counters of published frames and beats.
func (a *Analyzer) Stats() Stats {
	return Stats{Frames: a.frames.Load(), Beats: a.beats.Load()}
}

// SampleRate returns the configured sample rate in Hz.
func (a *Analyzer) SampleRate() float64 {
	return a.cfg.sampleRate
}

// HopSize returns the number of samples per analysis cycle.
func (a *Analyzer) HopSize() int {
	return a.cfg.hopSize
}

// Process appends samples to the analysis ring and publishes one frame for
// every completed hop once a full window has been collected. Non-finite
// samples are treated as silence.
func (a *Analyzer) Process(samples []float32) {
	a.procMu.Lock()
	defer a.procMu.Unlock()

	n := len(a.ring)
	for _, s := range samples {
		x := float64(s)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			x = 0
		}
		a.ring[a.write] = x
		a.write++
		if a.write == n {
			a.write = 0
		}
		if a.filled < n {
			a.filled++
		}
		a.consumed++
		a.sinceHop++

		if a.filled == n && a.sinceHop >= a.cfg.hopSize {
			a.sinceHop = 0
			a.analyse()
		}
	}
}

func (a *Analyzer) reset() {
	a.procMu.Lock()
	defer a.procMu.Unlock()

	for i := range a.ring {
		a.ring[i] = 0
	}
	a.write = 0
	a.filled = 0
	a.sinceHop = 0
	a.consumed = 0
	for i := range a.scale {
		a.scale[i].reset()
	}
	a.beat.Reset()
}

// analyse computes and publishes one frame from the current ring contents.
// Called with procMu held.
func (a *Analyzer) analyse() {
	n := len(a.ring)

	// Unroll the ring oldest-first.
	copied := copy(a.block, a.ring[a.write:])
	copy(a.block[copied:], a.ring[:a.write])

	sumSq := 0.0
	for _, x := range a.block {
		sumSq += x * x
	}
	rms := clamp01(math.Sqrt(sumSq / float64(n)))

	vecmath.MulBlockInPlace(a.block, a.win)
	for i, x := range a.block {
		a.fftIn[i] = complex(x, 0)
	}
	if err := a.plan.Forward(a.fftOut, a.fftIn); err != nil {
		return
	}

	for k := range a.mag {
		a.re[k] = real(a.fftOut[k])
		a.im[k] = imag(a.fftOut[k])
	}
	vecmath.Magnitude(a.mag, a.re, a.im)

	// Scale so a full-scale sine peaks near 1 in its bin.
	norm := 2 / (float64(n) * math.Max(a.winGain, 1e-12))
	vecmath.ScaleBlock(a.mag, a.mag, norm)

	at := time.Duration(float64(a.consumed) / a.cfg.sampleRate * float64(time.Second))
	beat := a.beat.Detect(rms, at)

	f := &Frame{
		RMS:       rms,
		Bass:      a.scale[0].apply(a.bands[0].sum(a.mag)),
		Mid:       a.scale[1].apply(a.bands[1].sum(a.mag)),
		Treble:    a.scale[2].apply(a.bands[2].sum(a.mag)),
		Centroid:  centroid(a.mag),
		Beat:      beat,
		Timestamp: at,
	}

	a.current.Store(f)
	a.frames.Add(1)
	if beat {
		a.beats.Add(1)
	}
}
