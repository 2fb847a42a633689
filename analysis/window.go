package analysis

import "math"

// Window selects the taper applied to each analysis block.
type Window int

const (
	WindowHann Window = iota
	WindowHamming
	WindowBlackmanHarris
)

// String returns the window name.
func (w Window) String() string {
	switch w {
	case WindowHann:
		return "hann"
	case WindowHamming:
		return "hamming"
	case WindowBlackmanHarris:
		return "blackman-harris"
	default:
		return "unknown"
	}
}

// ParseWindow returns the window with the given name.
func ParseWindow(name string) (Window, bool) {
	for _, w := range []Window{WindowHann, WindowHamming, WindowBlackmanHarris} {
		if w.String() == name {
			return w, true
		}
	}
	return WindowHann, false
}

// coefficients returns the periodic form of the window, suited for FFT
// framing, together with its coherent gain (mean coefficient).
func (w Window) coefficients(n int) ([]float64, float64) {
	out := make([]float64, n)
	sum := 0.0
	for i := range out {
		x := 2 * math.Pi * float64(i) / float64(n)
		var v float64
		switch w {
		case WindowHamming:
			v = 0.54 - 0.46*math.Cos(x)
		case WindowBlackmanHarris:
			v = 0.35875 - 0.48829*math.Cos(x) + 0.14128*math.Cos(2*x) - 0.01168*math.Cos(3*x)
		default:
			v = 0.5 - 0.5*math.Cos(x)
		}
		out[i] = v
		sum += v
	}
	return out, sum / float64(n)
}
