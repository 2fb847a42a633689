package analysis

import (
	"errors"
	"fmt"
)

// ErrDeviceUnavailable is returned by [Analyzer.Start] when the audio device
// cannot be opened, typically because permission was denied or no capture
// device exists.
var ErrDeviceUnavailable = errors.New("audio device unavailable")

var (
	errAlreadyStarted = errors.New("analyzer already started")
	errNilDevice      = errors.New("nil audio device")
)

func validateFFTSize(n int) error {
	if n < 256 || n > 8192 || n&(n-1) != 0 {
		return fmt.Errorf("fft size must be a power of two in [256,8192]: %d", n)
	}
	return nil
}

func validateHopSize(hop, fftSize int) error {
	if hop <= 0 || hop > fftSize {
		return fmt.Errorf("hop size must be in (0,%d]: %d", fftSize, hop)
	}
	return nil
}

func validateBandEdges(bass, mid, treble, nyquist float64) error {
	if !(lowCutHz < bass && bass < mid && mid < treble) {
		return fmt.Errorf("band edges must increase above %g Hz: %g, %g, %g", lowCutHz, bass, mid, treble)
	}
	if bass >= nyquist {
		return fmt.Errorf("bass edge must be below nyquist %g Hz: %g", nyquist, bass)
	}
	return nil
}
