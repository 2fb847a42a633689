// Package mic captures mono microphone input through PortAudio.
//
// [Device] satisfies analysis.Device. PortAudio is initialized on Open and
// terminated on Close, so a Device owns the library for its lifetime.
package mic

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

var errAlreadyOpen = errors.New("mic: device already open")

// Device is the default system capture device.
type Device struct {
	mu     sync.Mutex
	stream *portaudio.Stream
}

// New returns an unopened capture device.
func New() *Device {
	return &Device{}
}

// Open starts a one-channel input stream and calls fn from the PortAudio
// callback thread for every buffer.
func (d *Device) Open(sampleRate float64, framesPerBuffer int, fn func(in []float32)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stream != nil {
		return errAlreadyOpen
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("mic: initialize portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, framesPerBuffer, func(in []float32) {
		fn(in)
	})
	if err != nil {
		_ = portaudio.Terminate()
		return fmt.Errorf("mic: open default input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return fmt.Errorf("mic: start stream: %w", err)
	}

	d.stream = stream
	return nil
}

// Close stops the stream and releases PortAudio. Closing an unopened device
// is a no-op.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stream == nil {
		return nil
	}

	err := errors.Join(d.stream.Stop(), d.stream.Close(), portaudio.Terminate())
	d.stream = nil
	if err != nil {
		return fmt.Errorf("mic: close: %w", err)
	}
	return nil
}

// InputDevices lists the names of capture-capable devices.
func InputDevices() ([]string, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("mic: initialize portaudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("mic: list devices: %w", err)
	}
	var names []string
	for _, dev := range devices {
		if dev.MaxInputChannels > 0 {
			names = append(names, dev.Name)
		}
	}
	return names, nil
}
