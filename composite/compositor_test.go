package composite

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-glow/internal/testutil"
	"github.com/cwbudde/algo-glow/surface"
)

func mustSurface(t *testing.T, w, h int) *surface.Surface {
	t.Helper()
	s, err := surface.New(w, h)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestDecayZeroReproducesLatestOutput(t *testing.T) {
	c, err := New(8, 4)
	if err != nil {
		t.Fatal(err)
	}

	first := mustSurface(t, 8, 4)
	first.Fill(surface.Color{R: 0.9, G: 0.1, B: 0.4})
	if _, err := c.Composite([]*surface.Surface{first}, 0.9); err != nil {
		t.Fatal(err)
	}

	latest := mustSurface(t, 8, 4)
	for i := range latest.Pix {
		latest.Pix[i] = float64(i%7) * 0.13
	}
	got, err := c.Composite([]*surface.Surface{latest}, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i := range latest.Pix {
		if got.Pix[i] != latest.Pix[i] {
			t.Fatalf("Pix[%d]=%v, want exactly %v", i, got.Pix[i], latest.Pix[i])
		}
	}
}

func TestDecayPersistence(t *testing.T) {
	tests := []struct {
		decay   float64
		wantMin float64
		wantMax float64
	}{
		{decay: 1, wantMin: 1, wantMax: 1},
		{decay: 0.999, wantMin: 0.9, wantMax: 1},
		{decay: 0.5, wantMin: 0, wantMax: 1e-20},
	}
	for _, tt := range tests {
		c, err := New(2, 2)
		if err != nil {
			t.Fatal(err)
		}
		pulse := mustSurface(t, 2, 2)
		pulse.Fill(surface.Color{R: 1, G: 1, B: 1})
		if _, err := c.Composite([]*surface.Surface{pulse}, tt.decay); err != nil {
			t.Fatal(err)
		}
		var acc *surface.Surface
		for i := 0; i < 100; i++ {
			acc, err = c.Composite(nil, tt.decay)
			if err != nil {
				t.Fatal(err)
			}
		}
		if v := acc.Pix[0]; v < tt.wantMin || v > tt.wantMax {
			t.Fatalf("decay %g: value %g after 100 frames, want [%g, %g]",
				tt.decay, v, tt.wantMin, tt.wantMax)
		}
	}
}

func TestCompositeSumsLayers(t *testing.T) {
	c, _ := New(3, 3)
	a := mustSurface(t, 3, 3)
	b := mustSurface(t, 3, 3)
	a.Add(1, 1, surface.Color{R: 0.25})
	b.Add(1, 1, surface.Color{R: 0.5, B: 1})

	got, err := c.Composite([]*surface.Surface{a, nil, b}, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if px := got.At(1, 1); px != (surface.Color{R: 0.75, B: 1}) {
		t.Fatalf("At=%v", px)
	}
	if c.Frames() != 1 {
		t.Fatalf("Frames=%d, want 1", c.Frames())
	}
}

func TestCompositeRejectsInvalidInput(t *testing.T) {
	c, _ := New(4, 4)
	seed := mustSurface(t, 4, 4)
	seed.Fill(surface.Color{R: 0.5, G: 0.5, B: 0.5})
	if _, err := c.Composite([]*surface.Surface{seed}, 0); err != nil {
		t.Fatal(err)
	}
	before := append([]float64(nil), c.Accumulation().Pix...)

	wrong := mustSurface(t, 5, 4)
	if _, err := c.Composite([]*surface.Surface{seed, wrong}, 0.5); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("err=%v, want ErrSizeMismatch", err)
	}
	for _, d := range []float64{-0.1, 1.5, math.NaN(), math.Inf(1)} {
		if _, err := c.Composite(nil, d); err == nil {
			t.Fatalf("decay %g: expected error", d)
		}
	}
	testutil.RequireSliceNearlyEqual(t, c.Accumulation().Pix, before, 0)
	if c.Frames() != 1 {
		t.Fatalf("Frames=%d, failed calls must not count", c.Frames())
	}
}

func TestResizeClearsAccumulation(t *testing.T) {
	c, _ := New(4, 4)
	s := mustSurface(t, 4, 4)
	s.Fill(surface.Color{R: 1})
	if _, err := c.Composite([]*surface.Surface{s}, 1); err != nil {
		t.Fatal(err)
	}
	if err := c.Resize(6, 2); err != nil {
		t.Fatal(err)
	}
	if w, h := c.Size(); w != 6 || h != 2 {
		t.Fatalf("Size=%dx%d", w, h)
	}
	for _, v := range c.Accumulation().Pix {
		if v != 0 {
			t.Fatal("accumulation not cleared on resize")
		}
	}
	if _, err := c.Composite([]*surface.Surface{s}, 1); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("stale-size output: err=%v", err)
	}
	if err := c.Resize(0, 0); err == nil {
		t.Fatal("expected error")
	}
}

func TestPresenterReceivesFrame(t *testing.T) {
	var presented int
	var last *surface.Surface
	c, _ := New(2, 2, WithPresenter(PresenterFunc(func(s *surface.Surface) error {
		presented++
		last = s
		return nil
	})))
	got, err := c.Composite(nil, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if presented != 1 || last != got {
		t.Fatalf("presented=%d same=%v", presented, last == got)
	}

	boom := errors.New("boom")
	c2, _ := New(2, 2, WithPresenter(PresenterFunc(func(*surface.Surface) error { return boom })))
	if _, err := c2.Composite(nil, 0.5); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want wrapped presenter error", err)
	}
}

func TestResetClearsTrails(t *testing.T) {
	c, _ := New(2, 2)
	s := mustSurface(t, 2, 2)
	s.Fill(surface.Color{G: 1})
	c.Composite([]*surface.Surface{s}, 1)
	c.Reset()
	for _, v := range c.Accumulation().Pix {
		if v != 0 {
			t.Fatal("Reset left trails")
		}
	}
}
