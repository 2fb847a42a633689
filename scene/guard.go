package scene

import (
	"errors"
	"fmt"
)

// panicError carries a recovered panic value.
type panicError struct {
	value any
}

func (p *panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

// guard runs fn and converts a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return fn()
}

func newFault(index int, e *entry, phase string, tick uint64, err error) *PatternFault {
	var pe *panicError
	return &PatternFault{
		Index:    index,
		Name:     e.name,
		Phase:    phase,
		Tick:     tick,
		Err:      err,
		Panicked: errors.As(err, &pe),
	}
}
