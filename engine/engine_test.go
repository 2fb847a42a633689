package engine

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-glow/analysis"
	"github.com/cwbudde/algo-glow/composite"
	"github.com/cwbudde/algo-glow/input"
	"github.com/cwbudde/algo-glow/scene"
	"github.com/cwbudde/algo-glow/surface"
)

type stubFrames struct {
	frame *analysis.Frame
	calls int
}

func (s *stubFrames) Frame() *analysis.Frame {
	s.calls++
	return s.frame
}

// dot lights one pixel per update and remembers what it was given.
type dot struct {
	name  string
	surf  *surface.Surface
	decay float64

	dts   []float64
	audio []*analysis.Frame
	in    []*input.Snapshot
	fixed bool
}

func newDot(t *testing.T, name string, w, h int) *dot {
	t.Helper()
	s, err := surface.New(w, h)
	if err != nil {
		t.Fatal(err)
	}
	return &dot{name: name, surf: s, decay: 0.5}
}

func (d *dot) Name() string                { return d.name }
func (d *dot) Container() *surface.Surface { return d.surf }
func (d *dot) Decay() float64              { return d.decay }
func (d *dot) Destroy()                    {}

func (d *dot) Update(dt float64, audio *analysis.Frame, in *input.Snapshot) error {
	d.dts = append(d.dts, dt)
	d.audio = append(d.audio, audio)
	d.in = append(d.in, in)
	return nil
}

func (d *dot) Draw() (*surface.Surface, error) {
	d.surf.Clear()
	d.surf.Add(0, 0, surface.Color{R: 1})
	return d.surf, nil
}

func (d *dot) Resize(w, h int) error {
	if d.fixed {
		return nil
	}
	return d.surf.Resize(w, h)
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPipeline(t *testing.T, frames FrameSource, in SnapshotSource, patterns ...scene.Pattern) (*Engine, *scene.Manager) {
	t.Helper()
	mgr := scene.NewManager(scene.WithLogger(quiet()))
	var idx []int
	for _, p := range patterns {
		i, err := mgr.AddPattern(p)
		if err != nil {
			t.Fatal(err)
		}
		idx = append(idx, i)
	}
	if len(idx) > 0 {
		if err := mgr.SetLayers(idx); err != nil {
			t.Fatal(err)
		}
	}
	comp, err := composite.New(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	e, err := New(frames, in, mgr, comp, WithLogger(quiet()))
	if err != nil {
		t.Fatal(err)
	}
	return e, mgr
}

func TestStepComputesDelta(t *testing.T) {
	d := newDot(t, "d", 4, 4)
	e, _ := newPipeline(t, nil, nil, d)

	for _, now := range []time.Duration{
		5 * time.Second,
		5*time.Second + 16*time.Millisecond,
		5*time.Second + 48*time.Millisecond,
		5 * time.Second,
	} {
		if _, err := e.Step(now); err != nil {
			t.Fatal(err)
		}
	}
	want := []float64{0, 0.016, 0.032, 0}
	for i := range want {
		if math.Abs(d.dts[i]-want[i]) > 1e-9 {
			t.Fatalf("dts=%v, want %v", d.dts, want)
		}
	}
}

func TestStepReadsOneFrameAndSnapshot(t *testing.T) {
	frames := &stubFrames{frame: &analysis.Frame{Bass: 0.7}}
	tracker := input.NewTracker()
	a := newDot(t, "a", 4, 4)
	b := newDot(t, "b", 4, 4)
	e, _ := newPipeline(t, frames, tracker, a, b)

	tracker.Click(2, 3, 10*time.Millisecond)
	if _, err := e.Step(20 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if frames.calls != 1 {
		t.Fatalf("Frame called %d times per step", frames.calls)
	}
	if a.audio[0] != frames.frame || b.audio[0] != frames.frame {
		t.Fatal("patterns did not receive the published frame")
	}
	if a.in[0] != b.in[0] || len(a.in[0].RecentClicks) != 1 {
		t.Fatalf("snapshot not shared or missing click: %+v", a.in[0])
	}
}

func TestStepCompositesWithTrail(t *testing.T) {
	d := newDot(t, "d", 4, 4)
	e, _ := newPipeline(t, nil, nil, d)

	var out *surface.Surface
	var err error
	for i := 0; i < 3; i++ {
		out, err = e.Step(time.Duration(i) * 16 * time.Millisecond)
		if err != nil {
			t.Fatal(err)
		}
	}
	// 1 + 0.5 + 0.25
	if got := out.At(0, 0).R; math.Abs(got-1.75) > 1e-12 {
		t.Fatalf("accumulated=%g, want 1.75", got)
	}
	if e.Stats().Frames != 3 {
		t.Fatalf("Frames=%d", e.Stats().Frames)
	}
}

func TestSwitchClearsTrails(t *testing.T) {
	a := newDot(t, "a", 4, 4)
	b := newDot(t, "b", 4, 4)
	b.decay = 1
	e, mgr := newPipeline(t, nil, nil, a, b)
	if err := mgr.SetActivePattern(0); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		e.Step(time.Duration(i) * time.Millisecond)
	}
	if err := mgr.SetActivePattern(1); err != nil {
		t.Fatal(err)
	}
	out, err := e.Step(10 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.At(0, 0).R; got != 1 {
		t.Fatalf("after switch=%g, want trails cleared to a single draw", got)
	}
}

func TestResizeDropsStaleLayers(t *testing.T) {
	fits := newDot(t, "fits", 4, 4)
	stale := newDot(t, "stale", 4, 4)
	stale.fixed = true
	e, _ := newPipeline(t, nil, nil, fits, stale)

	if err := e.Resize(8, 2); err != nil {
		t.Fatal(err)
	}
	out, err := e.Step(0)
	if err != nil {
		t.Fatal(err)
	}
	if out.Width != 8 || out.Height != 2 {
		t.Fatalf("output %dx%d, want 8x2", out.Width, out.Height)
	}
	if out.At(0, 0).R != 1 {
		t.Fatalf("R=%g, want only the resized layer", out.At(0, 0).R)
	}
	if e.Stats().Dropped != 1 {
		t.Fatalf("Dropped=%d, want 1", e.Stats().Dropped)
	}
	if err := e.Resize(0, 2); err == nil {
		t.Fatal("expected error")
	}
}

func TestCloseStopsStepping(t *testing.T) {
	e, _ := newPipeline(t, nil, nil, newDot(t, "d", 4, 4))
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Step(0); !errors.Is(err, scene.ErrClosed) {
		t.Fatalf("err=%v, want ErrClosed", err)
	}
}

func TestNewValidation(t *testing.T) {
	comp, _ := composite.New(1, 1)
	if _, err := New(nil, nil, nil, comp); err == nil {
		t.Fatal("expected error for nil manager")
	}
	if _, err := New(nil, nil, scene.NewManager(), nil); err == nil {
		t.Fatal("expected error for nil compositor")
	}
}
