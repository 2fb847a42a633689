package scene

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/cwbudde/algo-glow/analysis"
	"github.com/cwbudde/algo-glow/input"
	"github.com/cwbudde/algo-glow/surface"
)

// journal records lifecycle calls across patterns in call order.
type journal struct {
	events []string
}

func (j *journal) add(name, event string) {
	j.events = append(j.events, name+":"+event)
}

func (j *journal) take() []string {
	ev := j.events
	j.events = nil
	return ev
}

type fakePattern struct {
	name    string
	log     *journal
	surf    *surface.Surface
	decay   float64
	updated bool

	updateErr  error
	drawErr    error
	panicPhase string

	destroyed int
	dts       []float64
	audio     *analysis.Frame
	in        *input.Snapshot

	tunables map[string]float64
	resized  [2]int
}

func newFake(t *testing.T, name string, log *journal) *fakePattern {
	t.Helper()
	s, err := surface.New(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	return &fakePattern{
		name:     name,
		log:      log,
		surf:     s,
		decay:    0.5,
		tunables: map[string]float64{"speed": 1},
	}
}

func (p *fakePattern) Name() string                { return p.name }
func (p *fakePattern) Container() *surface.Surface { return p.surf }

func (p *fakePattern) Decay() float64 {
	if p.panicPhase == PhaseDecay {
		panic("decay exploded")
	}
	return p.decay
}

func (p *fakePattern) Update(dt float64, audio *analysis.Frame, in *input.Snapshot) error {
	p.log.add(p.name, "update")
	if p.panicPhase == PhaseUpdate {
		panic("update exploded")
	}
	if p.updateErr != nil {
		return p.updateErr
	}
	p.dts = append(p.dts, dt)
	p.audio = audio
	p.in = in
	p.updated = true
	return nil
}

func (p *fakePattern) Draw() (*surface.Surface, error) {
	p.log.add(p.name, "draw")
	if p.panicPhase == PhaseDraw {
		panic("draw exploded")
	}
	if !p.updated {
		return nil, errors.New("draw without update")
	}
	p.updated = false
	if p.drawErr != nil {
		return nil, p.drawErr
	}
	return p.surf, nil
}

func (p *fakePattern) Destroy() {
	p.log.add(p.name, "destroy")
	p.destroyed++
}

func (p *fakePattern) Tunables() map[string]float64 {
	if p.panicPhase == PhaseTunable {
		panic("tunables exploded")
	}
	return p.tunables
}

func (p *fakePattern) SetTunable(key string, v float64) error {
	if v < 0 {
		return fmt.Errorf("%s must be >= 0", key)
	}
	p.log.add(p.name, "tune")
	p.tunables[key] = v
	return nil
}

func (p *fakePattern) Resize(w, h int) error {
	p.resized = [2]int{w, h}
	return p.surf.Resize(w, h)
}

// plainPattern implements only the required methods.
type plainPattern struct {
	surf *surface.Surface
}

func (p *plainPattern) Name() string { return "plain" }

func (p *plainPattern) Container() *surface.Surface { return p.surf }

func (p *plainPattern) Update(float64, *analysis.Frame, *input.Snapshot) error {
	return nil
}

func (p *plainPattern) Draw() (*surface.Surface, error) { return p.surf, nil }

func (p *plainPattern) Destroy() {}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(opts ...Option) *Manager {
	return NewManager(append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func mustAdd(t *testing.T, m *Manager, p Pattern) int {
	t.Helper()
	i, err := m.AddPattern(p)
	if err != nil {
		t.Fatal(err)
	}
	return i
}

func mustTick(t *testing.T, m *Manager, dt float64) []Layer {
	t.Helper()
	layers, err := m.Tick(dt, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return layers
}

func equalEvents(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
