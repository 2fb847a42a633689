package patterns

import (
	"fmt"

	"github.com/cwbudde/algo-glow/scene"
)

// Pattern names.
const (
	NameBurst  = "burst"
	NameFlow   = "flow"
	NameFlock  = "flock"
	NameRibbon = "ribbon"
)

// Names returns the reference pattern names in registration order.
func Names() []string {
	return []string{NameBurst, NameFlow, NameFlock, NameRibbon}
}

// Register adds every reference pattern to reg.
func Register(reg *scene.Registry) error {
	factories := map[string]scene.Factory{
		NameBurst:  factory(NewBurst),
		NameFlow:   factory(NewFlow),
		NameFlock:  factory(NewFlock),
		NameRibbon: factory(NewRibbon),
	}
	for _, name := range Names() {
		if err := reg.Register(name, factories[name]); err != nil {
			return fmt.Errorf("patterns: %w", err)
		}
	}
	return nil
}

// factory adapts a typed constructor so a failed build yields a nil
// interface rather than a typed nil.
func factory[P scene.Pattern](build func(scene.Context) (P, error)) scene.Factory {
	return func(ctx scene.Context) (scene.Pattern, error) {
		p, err := build(ctx)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}
