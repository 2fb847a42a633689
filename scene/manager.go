package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/cwbudde/algo-glow/analysis"
	"github.com/cwbudde/algo-glow/input"
	"github.com/cwbudde/algo-glow/surface"
)

// Layer is one pattern's output from a tick.
type Layer struct {
	Index   int
	Name    string
	Surface *surface.Surface
	Decay   float64
}

// Info describes a registered pattern.
type Info struct {
	Index    int
	Name     string
	State    State
	Decay    float64
	Tunables map[string]float64
}

// Stats reports manager activity.
type Stats struct {
	Ticks        uint64
	Overruns     uint64
	Faults       uint64
	Active       int
	LastDuration time.Duration
}

type entry struct {
	name    string
	pattern Pattern
	state   State
	factory Factory
	ctx     Context
}

type activation struct {
	indices   []int
	exclusive bool
}

type tunableChange struct {
	index int
	key   string
	value float64
}

// Manager owns the registered patterns and runs their lifecycle.
//
// All methods are safe for concurrent use. Tick holds the manager lock for
// its whole duration, so patterns must not call back into the manager.
type Manager struct {
	cfg config

	mu         sync.Mutex
	entries    []*entry
	pending    *activation
	tunables   []tunableChange
	faults     []PatternFault
	generation uint64
	stats      Stats
	closed     bool
}

// NewManager creates an empty manager.
func NewManager(opts ...Option) *Manager {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Manager{cfg: cfg}
}

// AddPattern registers p without activating it and returns its index.
func (m *Manager) AddPattern(p Pattern) (int, error) {
	if p == nil {
		return -1, errNilPattern
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return -1, ErrClosed
	}
	return m.addLocked(&entry{name: p.Name(), pattern: p, state: Registered}), nil
}

// AddFactory builds the named pattern from the registry and registers it.
// The factory is kept so the pattern can be rebuilt when it is activated
// again after being destroyed.
func (m *Manager) AddFactory(name string, ctx Context) (int, error) {
	var f Factory
	if m.cfg.registry != nil {
		f = m.cfg.registry.Lookup(name)
	}
	if f == nil {
		return -1, fmt.Errorf("%w: %s", ErrUnknownPattern, name)
	}
	p, err := build(f, ctx)
	if err != nil {
		return -1, fmt.Errorf("scene: create %s: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		safeDestroy(p)
		return -1, ErrClosed
	}
	return m.addLocked(&entry{name: name, pattern: p, state: Registered, factory: f, ctx: ctx}), nil
}

// AddAll adds every pattern in the registry, in registration order, and
// returns the manager index of each name. Each pattern gets ctx with its
// seed offset by its position so layered patterns do not share a random
// sequence.
func (m *Manager) AddAll(ctx Context) (map[string]int, error) {
	if m.cfg.registry == nil {
		return nil, fmt.Errorf("%w: no registry configured", ErrUnknownPattern)
	}
	names := m.cfg.registry.Names()
	index := make(map[string]int, len(names))
	for i, name := range names {
		c := ctx
		c.Seed += int64(i)
		idx, err := m.AddFactory(name, c)
		if err != nil {
			return index, err
		}
		index[name] = idx
	}
	return index, nil
}

func (m *Manager) addLocked(e *entry) int {
	m.entries = append(m.entries, e)
	return len(m.entries) - 1
}

// Len returns the number of registered patterns, destroyed ones included.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// SetActivePattern requests that index becomes the only active pattern.
// Every other active pattern is destroyed. The change takes effect at the
// start of the next tick.
func (m *Manager) SetActivePattern(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkActivatable(index); err != nil {
		return err
	}
	m.pending = &activation{indices: []int{index}, exclusive: true}
	return nil
}

// SetLayers requests that exactly the given patterns are active together.
// Active patterns outside the set become inactive and keep their state.
// An empty set deactivates everything. The change takes effect at the start
// of the next tick.
func (m *Manager) SetLayers(indices []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range indices {
		if err := m.checkActivatable(i); err != nil {
			return err
		}
	}
	m.pending = &activation{indices: append([]int(nil), indices...)}
	return nil
}

func (m *Manager) checkActivatable(index int) error {
	if m.closed {
		return ErrClosed
	}
	if index < 0 || index >= len(m.entries) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	e := m.entries[index]
	if e.state == Destroyed && e.factory == nil {
		return fmt.Errorf("%w: %s (index %d)", ErrPatternDestroyed, e.name, index)
	}
	return nil
}

// SetTunable queues a parameter change for the pattern at index. The key
// must be in the pattern's tunable whitelist and the value finite. The
// change is applied at the start of the next tick.
func (m *Manager) SetTunable(index int, key string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("scene: tunable %s must be finite: %f", key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if index < 0 || index >= len(m.entries) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	e := m.entries[index]
	if e.state == Destroyed {
		return fmt.Errorf("%w: %s (index %d)", ErrPatternDestroyed, e.name, index)
	}
	if _, ok := e.pattern.(Tunable); !ok {
		return fmt.Errorf("%w: %s has no tunables", ErrUnknownTunable, e.name)
	}
	keys, err := tunablesOf(e.pattern)
	if err != nil {
		f := newFault(index, e, PhaseTunable, m.stats.Ticks, err)
		m.fail(f)
		return fmt.Errorf("%w: %w", ErrPatternDestroyed, f)
	}
	if _, ok := keys[key]; !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownTunable, e.name, key)
	}
	m.tunables = append(m.tunables, tunableChange{index: index, key: key, value: value})
	return nil
}

// Tick advances every active pattern by dt seconds and returns their draw
// outputs in registration order.
//
// dt is sanitised: NaN and negative values become 0 and values above the
// configured maximum are clamped. Nil audio and in are replaced by the
// silent frame and the empty snapshot. Every active pattern receives the
// same audio and in pointers.
func (m *Manager) Tick(dt float64, audio *analysis.Frame, in *input.Snapshot) ([]Layer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	dt = m.sanitizeDelta(dt)
	if audio == nil {
		audio = analysis.Silent()
	}
	if in == nil {
		in = input.Empty()
	}

	tick := m.stats.Ticks + 1
	m.applyActivation(tick)
	m.applyTunables(tick)

	start := m.cfg.now()
	var (
		layers []Layer
		failed []*PatternFault
	)
	for i, e := range m.entries {
		if e.state != Active {
			continue
		}
		p := e.pattern
		if err := guard(func() error { return p.Update(dt, audio, in) }); err != nil {
			failed = append(failed, newFault(i, e, PhaseUpdate, tick, err))
			continue
		}
		var out *surface.Surface
		if err := guard(func() error {
			var err error
			out, err = p.Draw()
			return err
		}); err != nil {
			failed = append(failed, newFault(i, e, PhaseDraw, tick, err))
			continue
		}
		if out == nil {
			continue
		}
		decay, err := decayOf(p)
		if err != nil {
			failed = append(failed, newFault(i, e, PhaseDecay, tick, err))
			continue
		}
		layers = append(layers, Layer{Index: i, Name: e.name, Surface: out, Decay: decay})
	}

	for _, f := range failed {
		m.fail(f)
	}

	elapsed := m.cfg.now().Sub(start)
	m.stats.Ticks = tick
	m.stats.LastDuration = elapsed
	if elapsed > m.cfg.frameBudget {
		m.stats.Overruns++
		m.cfg.logger.Debug("frame budget exceeded",
			slog.Duration("elapsed", elapsed),
			slog.Duration("budget", m.cfg.frameBudget),
			slog.Int("layers", len(layers)))
	}
	return layers, nil
}

func (m *Manager) sanitizeDelta(dt float64) float64 {
	switch {
	case math.IsNaN(dt) || dt < 0:
		return 0
	case dt > m.cfg.maxDelta:
		return m.cfg.maxDelta
	}
	return dt
}

func (m *Manager) applyActivation(tick uint64) {
	req := m.pending
	if req == nil {
		return
	}
	m.pending = nil

	want := make(map[int]bool, len(req.indices))
	for _, i := range req.indices {
		want[i] = true
	}

	for i, e := range m.entries {
		if e.state != Active || want[i] {
			continue
		}
		if req.exclusive {
			m.destroy(e)
			continue
		}
		e.state = Inactive
	}

	for i, e := range m.entries {
		if !want[i] {
			continue
		}
		if e.state == Destroyed {
			if !m.recreate(i, e, tick) {
				continue
			}
		}
		e.state = Active
	}

	m.generation++
	m.cfg.logger.Debug("active patterns changed",
		slog.Any("indices", req.indices),
		slog.Bool("exclusive", req.exclusive),
		slog.Uint64("generation", m.generation))
}

func (m *Manager) recreate(i int, e *entry, tick uint64) bool {
	if e.factory == nil {
		return false
	}
	p, err := build(e.factory, e.ctx)
	if err != nil {
		m.record(newFault(i, e, PhaseCreate, tick, err))
		return false
	}
	e.pattern = p
	e.state = Registered
	return true
}

func (m *Manager) applyTunables(tick uint64) {
	changes := m.tunables
	m.tunables = nil
	for _, c := range changes {
		e := m.entries[c.index]
		if e.state == Destroyed {
			continue
		}
		t, ok := e.pattern.(Tunable)
		if !ok {
			continue
		}
		if err := guard(func() error { return t.SetTunable(c.key, c.value) }); err != nil {
			var pf *panicError
			if errors.As(err, &pf) {
				m.fail(newFault(c.index, e, PhaseTunable, tick, err))
				continue
			}
			m.cfg.logger.Warn("tunable rejected",
				slog.String("pattern", e.name),
				slog.String("key", c.key),
				slog.Float64("value", c.value),
				slog.Any("error", err))
		}
	}
}

// fail destroys the pattern behind f and records the fault.
func (m *Manager) fail(f *PatternFault) {
	m.destroy(m.entries[f.Index])
	m.record(f)
}

func (m *Manager) record(f *PatternFault) {
	m.stats.Faults++
	m.cfg.logger.Error("pattern fault",
		slog.String("pattern", f.Name),
		slog.Int("index", f.Index),
		slog.String("phase", f.Phase),
		slog.Bool("panic", f.Panicked),
		slog.Any("error", f.Err))
	if len(m.faults) == m.cfg.maxFaults {
		copy(m.faults, m.faults[1:])
		m.faults = m.faults[:len(m.faults)-1]
	}
	m.faults = append(m.faults, *f)
}

func (m *Manager) destroy(e *entry) {
	if e.state == Destroyed {
		return
	}
	e.state = Destroyed
	safeDestroy(e.pattern)
}

func safeDestroy(p Pattern) {
	_ = guard(func() error {
		p.Destroy()
		return nil
	})
}

// Resize forwards a canvas size change to every live pattern that
// implements [Resizer] and records the size for patterns rebuilt later.
// A pattern failing to resize is destroyed.
func (m *Manager) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("scene: size must be > 0: %dx%d", width, height)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for i, e := range m.entries {
		e.ctx.Width = width
		e.ctx.Height = height
		if e.state == Destroyed {
			continue
		}
		r, ok := e.pattern.(Resizer)
		if !ok {
			continue
		}
		if err := guard(func() error { return r.Resize(width, height) }); err != nil {
			m.fail(newFault(i, e, PhaseResize, m.stats.Ticks, err))
		}
	}
	return nil
}

// Close destroys every live pattern. Further calls to the manager return
// [ErrClosed]. Close is idempotent.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	for _, e := range m.entries {
		m.destroy(e)
	}
	m.closed = true
	m.pending = nil
	m.tunables = nil
	return nil
}

// Patterns returns a snapshot of the registry in registration order. A
// pattern that panics while being described is destroyed.
func (m *Manager) Patterns() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	infos := make([]Info, len(m.entries))
	for i, e := range m.entries {
		info := Info{Index: i, Name: e.name}
		if e.state != Destroyed {
			decay, err := decayOf(e.pattern)
			if err != nil {
				m.fail(newFault(i, e, PhaseDecay, m.stats.Ticks, err))
			} else if keys, err := tunablesOf(e.pattern); err != nil {
				m.fail(newFault(i, e, PhaseTunable, m.stats.Ticks, err))
			} else {
				info.Decay = decay
				if keys != nil {
					info.Tunables = copyTunables(keys)
				}
			}
		}
		info.State = e.state
		infos[i] = info
	}
	return infos
}

func copyTunables(src map[string]float64) map[string]float64 {
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Active returns the indices of the active patterns.
func (m *Manager) Active() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var idx []int
	for i, e := range m.entries {
		if e.state == Active {
			idx = append(idx, i)
		}
	}
	return idx
}

// Decay returns the trail decay for the active set: the largest decay of
// any active pattern, or [DefaultDecay] when none is active. A pattern that
// panics in Decay is destroyed.
func (m *Manager) Decay() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, found := 0.0, false
	for i, e := range m.entries {
		if e.state != Active {
			continue
		}
		v, err := decayOf(e.pattern)
		if err != nil {
			m.fail(newFault(i, e, PhaseDecay, m.stats.Ticks, err))
			continue
		}
		d = math.Max(d, v)
		found = true
	}
	if !found {
		return DefaultDecay
	}
	return d
}

// Generation counts applied activation changes. It lets callers detect a
// switch without diffing the active set.
func (m *Manager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// Faults returns the most recent pattern faults, oldest first.
func (m *Manager) Faults() []PatternFault {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PatternFault(nil), m.faults...)
}

// Stats returns tick counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	for _, e := range m.entries {
		if e.state == Active {
			s.Active++
		}
	}
	return s
}
