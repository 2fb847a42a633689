package scene

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is returned for a pattern index that was never
	// registered.
	ErrIndexOutOfRange = errors.New("scene: pattern index out of range")
	// ErrPatternDestroyed is returned when activating a destroyed pattern
	// that has no factory to recreate it.
	ErrPatternDestroyed = errors.New("scene: pattern destroyed")
	// ErrUnknownPattern is returned for a name missing from the registry.
	ErrUnknownPattern = errors.New("scene: unknown pattern")
	// ErrUnknownTunable is returned for a key outside a pattern's tunable
	// whitelist.
	ErrUnknownTunable = errors.New("scene: unknown tunable")
	// ErrClosed is returned by a manager after Close.
	ErrClosed = errors.New("scene: manager closed")

	errNilPattern       = errors.New("scene: nil pattern")
	errNilFactoryResult = errors.New("scene: factory returned nil pattern")
	errDuplicatePattern = errors.New("duplicate pattern name")
)

// Fault phases.
const (
	PhaseUpdate  = "update"
	PhaseDraw    = "draw"
	PhaseResize  = "resize"
	PhaseTunable = "tunable"
	PhaseDecay   = "decay"
	PhaseCreate  = "create"
)

// PatternFault describes a pattern that failed and was destroyed.
type PatternFault struct {
	Index    int
	Name     string
	Phase    string
	Tick     uint64
	Err      error
	Panicked bool
}

func (f *PatternFault) Error() string {
	kind := "failed"
	if f.Panicked {
		kind = "panicked"
	}
	return fmt.Sprintf("scene: pattern %q (index %d) %s in %s: %v", f.Name, f.Index, kind, f.Phase, f.Err)
}

func (f *PatternFault) Unwrap() error {
	return f.Err
}
