package analysis

import (
	"testing"
	"time"

	"github.com/cwbudde/algo-glow/internal/testutil"
)

func TestNewBeatDetector(t *testing.T) {
	tests := []struct {
		name       string
		threshold  float64
		refractory time.Duration
		average    time.Duration
		minLevel   float64
		wantErr    bool
	}{
		{"defaults", 1.3, 150 * time.Millisecond, time.Second, 0.02, false},
		{"zero refractory", 1.3, 0, time.Second, 0, false},
		{"threshold below one", 0.9, 150 * time.Millisecond, time.Second, 0.02, true},
		{"negative refractory", 1.3, -time.Millisecond, time.Second, 0.02, true},
		{"zero average", 1.3, 150 * time.Millisecond, 0, 0.02, true},
		{"min level above one", 1.3, 150 * time.Millisecond, time.Second, 1.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewBeatDetector(tt.threshold, tt.refractory, tt.average, tt.minLevel)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewBeatDetector() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && d == nil {
				t.Fatal("NewBeatDetector() returned nil without error")
			}
		})
	}
}

// TestBeatTriangleTraceRespectsRefractory drives a 2 Hz 0->1->0 envelope for
// five seconds and checks the spacing of every reported beat.
func TestBeatTriangleTraceRespectsRefractory(t *testing.T) {
	const refractory = 150 * time.Millisecond
	d, err := NewBeatDetector(1.3, refractory, time.Second, 0.02)
	if err != nil {
		t.Fatalf("NewBeatDetector() error = %v", err)
	}

	step := 10 * time.Millisecond
	trace := testutil.TriangleTrace(2, step.Seconds(), 5)

	var beats []time.Duration
	for i, rms := range trace {
		at := time.Duration(i) * step
		if d.Detect(rms, at) {
			beats = append(beats, at)
		}
	}

	if len(beats) < 5 {
		t.Fatalf("got %d beats over 10 envelope cycles, want at least 5", len(beats))
	}
	for i := 1; i < len(beats); i++ {
		if gap := beats[i] - beats[i-1]; gap < refractory {
			t.Fatalf("beats %d and %d only %s apart, want >= %s", i-1, i, gap, refractory)
		}
	}
}

func TestBeatRandomTracesRespectRefractory(t *testing.T) {
	const refractory = 150 * time.Millisecond
	steps := []time.Duration{time.Millisecond, 5 * time.Millisecond, 16 * time.Millisecond, 40 * time.Millisecond}

	for seed := int64(1); seed <= 20; seed++ {
		for _, step := range steps {
			d, err := NewBeatDetector(1.1, refractory, 200*time.Millisecond, 0)
			if err != nil {
				t.Fatalf("NewBeatDetector() error = %v", err)
			}

			trace := testutil.RandomTrace(seed, 4, 2000)
			last := time.Duration(-1)
			for i, rms := range trace {
				at := time.Duration(i) * step
				if !d.Detect(rms, at) {
					continue
				}
				if last >= 0 && at-last < refractory {
					t.Fatalf("seed %d step %s: beats at %s and %s", seed, step, last, at)
				}
				last = at
			}
		}
	}
}

func TestBeatSustainedLevelDoesNotRetrigger(t *testing.T) {
	d, _ := NewBeatDetector(1.3, 150*time.Millisecond, 500*time.Millisecond, 0.02)

	at := time.Duration(0)
	for i := 0; i < 100; i++ {
		d.Detect(0.05, at)
		at += 10 * time.Millisecond
	}

	if !d.Detect(0.9, at) {
		t.Fatal("expected beat on jump from quiet to loud")
	}

	late := 0
	for i := 0; i < 300; i++ {
		at += 10 * time.Millisecond
		if d.Detect(0.9, at) && i >= 100 {
			late++
		}
	}
	// Within a second the average has caught up and a flat level can no
	// longer exceed it by the threshold.
	if late != 0 {
		t.Fatalf("sustained level still triggering after 1s: %d beats", late)
	}
}

func TestBeatBelowMinLevel(t *testing.T) {
	d, _ := NewBeatDetector(1.3, 0, time.Second, 0.1)
	d.Detect(0, 0)
	if d.Detect(0.05, 10*time.Millisecond) {
		t.Fatal("beat reported below min level")
	}
}

func TestBeatReset(t *testing.T) {
	d, _ := NewBeatDetector(1.3, time.Hour, time.Second, 0)
	d.Detect(0, 0)
	if !d.Detect(1, time.Millisecond) {
		t.Fatal("expected first beat")
	}
	d.Reset()
	d.Detect(0, 0)
	if !d.Detect(1, time.Millisecond) {
		t.Fatal("expected beat after reset despite long refractory")
	}
}
