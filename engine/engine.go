// Package engine runs one frame of the visual pipeline: read the latest
// audio frame and input snapshot, tick the scene, composite the outputs
// against the decayed trails and present.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/algo-glow/analysis"
	"github.com/cwbudde/algo-glow/composite"
	"github.com/cwbudde/algo-glow/input"
	"github.com/cwbudde/algo-glow/scene"
	"github.com/cwbudde/algo-glow/surface"
)

// FrameSource publishes audio features. [analysis.Analyzer] implements it.
type FrameSource interface {
	Frame() *analysis.Frame
}

// SnapshotSource publishes input state. [input.Tracker] implements it.
type SnapshotSource interface {
	Snapshot(now time.Duration) *input.Snapshot
}

type silentSource struct{}

func (silentSource) Frame() *analysis.Frame { return analysis.Silent() }

type emptySource struct{}

func (emptySource) Snapshot(time.Duration) *input.Snapshot { return input.Empty() }

// Option configures an [Engine].
type Option func(*config)

type config struct {
	logger        *slog.Logger
	clearOnSwitch bool
}

func defaultConfig() config {
	return config{
		logger:        slog.Default(),
		clearOnSwitch: true,
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClearOnSwitch controls whether trails are wiped when the set of
// active patterns changes. Enabled by default.
func WithClearOnSwitch(enabled bool) Option {
	return func(c *config) {
		c.clearOnSwitch = enabled
	}
}

// Stats reports engine activity.
type Stats struct {
	Frames  uint64
	Dropped uint64
}

// Engine drives the per-frame pipeline. It is not safe for concurrent use;
// call Step, Resize and Close from the render goroutine.
type Engine struct {
	cfg    config
	frames FrameSource
	input  SnapshotSource
	mgr    *scene.Manager
	comp   *composite.Compositor

	last       time.Duration
	started    bool
	generation uint64
	outputs    []*surface.Surface
	stats      Stats
}

// New wires the pipeline. A nil frames or in source is replaced by the
// silent frame or the empty snapshot.
func New(frames FrameSource, in SnapshotSource, mgr *scene.Manager, comp *composite.Compositor, opts ...Option) (*Engine, error) {
	if mgr == nil {
		return nil, errors.New("engine: nil scene manager")
	}
	if comp == nil {
		return nil, errors.New("engine: nil compositor")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if frames == nil {
		frames = silentSource{}
	}
	if in == nil {
		in = emptySource{}
	}
	return &Engine{
		cfg:        cfg,
		frames:     frames,
		input:      in,
		mgr:        mgr,
		comp:       comp,
		generation: mgr.Generation(),
	}, nil
}

// Step renders the frame for time now, measured on the host's monotonic
// clock. dt is the distance to the previous Step; the first step uses 0.
func (e *Engine) Step(now time.Duration) (*surface.Surface, error) {
	dt := 0.0
	if e.started {
		dt = (now - e.last).Seconds()
	}
	e.started = true
	e.last = now

	audio := e.frames.Frame()
	snap := e.input.Snapshot(now)

	layers, err := e.mgr.Tick(dt, audio, snap)
	if err != nil {
		return nil, fmt.Errorf("engine tick: %w", err)
	}

	if gen := e.mgr.Generation(); gen != e.generation {
		e.generation = gen
		if e.cfg.clearOnSwitch {
			e.comp.Reset()
		}
	}

	acc := e.comp.Accumulation()
	e.outputs = e.outputs[:0]
	for _, l := range layers {
		if !acc.SameSize(l.Surface) {
			e.stats.Dropped++
			e.cfg.logger.Debug("dropping layer with stale size",
				slog.String("pattern", l.Name),
				slog.Int("width", l.Surface.Width),
				slog.Int("height", l.Surface.Height))
			continue
		}
		e.outputs = append(e.outputs, l.Surface)
	}

	out, err := e.comp.Composite(e.outputs, e.mgr.Decay())
	if err != nil {
		return out, fmt.Errorf("engine composite: %w", err)
	}
	e.stats.Frames++
	return out, nil
}

// Resize reallocates the trails and forwards the size to every pattern
// before the next Step.
func (e *Engine) Resize(width, height int) error {
	if err := e.comp.Resize(width, height); err != nil {
		return err
	}
	if err := e.mgr.Resize(width, height); err != nil {
		return err
	}
	e.cfg.logger.Debug("resized", slog.Int("width", width), slog.Int("height", height))
	return nil
}

// Manager returns the scene manager.
func (e *Engine) Manager() *scene.Manager {
	return e.mgr
}

// Compositor returns the compositor.
func (e *Engine) Compositor() *composite.Compositor {
	return e.comp
}

// Stats returns frame counters.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Close destroys every pattern.
func (e *Engine) Close() error {
	return e.mgr.Close()
}
