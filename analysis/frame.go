package analysis

import "time"

// Frame is one published set of audio features. All energies are in [0, 1].
//
// A Frame is never mutated after publication and is shared by reference
// across every reader of the same analysis cycle. Treat it as read-only.
type Frame struct {
	RMS      float64
	Bass     float64
	Mid      float64
	Treble   float64
	Centroid float64
	Beat     bool

	// Timestamp is the stream time of the analysed window's last sample,
	// measured from the first sample the analyzer consumed.
	Timestamp time.Duration
}

var silent = Frame{}

// Silent returns the fixed baseline frame: all energies 0 and no beat.
func Silent() *Frame {
	return &silent
}

// IsSilent reports whether f is the baseline frame.
func (f *Frame) IsSilent() bool {
	return f == &silent
}

// Energy returns the mean of the three band energies.
func (f *Frame) Energy() float64 {
	return (f.Bass + f.Mid + f.Treble) / 3
}
