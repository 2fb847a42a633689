package patterns

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-glow/scene"
)

// param binds a tunable key to a field with its accepted range.
type param struct {
	value    *float64
	min, max float64
}

type params map[string]param

func (p params) values() map[string]float64 {
	out := make(map[string]float64, len(p))
	for k, v := range p {
		out[k] = *v.value
	}
	return out
}

func (p params) set(key string, v float64) error {
	pr, ok := p[key]
	if !ok {
		return fmt.Errorf("%w: %s", scene.ErrUnknownTunable, key)
	}
	if v < pr.min || v > pr.max || math.IsNaN(v) {
		return fmt.Errorf("%s must be in [%g, %g]: %g", key, pr.min, pr.max, v)
	}
	*pr.value = v
	return nil
}
