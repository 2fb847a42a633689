package scene

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"
)

// Context carries what a factory needs to build a pattern.
type Context struct {
	Width  int
	Height int
	Seed   int64
}

// Factory builds one pattern instance.
type Factory func(ctx Context) (Pattern, error)

// Registry maps pattern names to their factories.
//
// Names keep their registration order. Hosts rely on it for hotkeys and
// listings, and [Manager.AddAll] uses it to lay out indices. A Registry is
// safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	order     []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for the given pattern name. Names are used in
// comma-separated layer lists, so they must not contain commas or spaces.
func (r *Registry) Register(name string, factory Factory) error {
	if err := validatePatternName(name); err != nil {
		return err
	}
	if factory == nil {
		return fmt.Errorf("nil factory for pattern %s", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %s", errDuplicatePattern, name)
	}
	r.factories[name] = factory
	r.order = append(r.order, name)
	return nil
}

func validatePatternName(name string) error {
	if name == "" {
		return errors.New("empty pattern name")
	}
	if strings.ContainsFunc(name, func(c rune) bool { return c == ',' || unicode.IsSpace(c) }) {
		return fmt.Errorf("pattern name must not contain commas or spaces: %q", name)
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic("scene registry: " + err.Error())
	}
}

// Lookup returns the factory for the given name, or nil.
func (r *Registry) Lookup(name string) Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.factories[name]
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered patterns.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// New builds a pattern by name.
func (r *Registry) New(name string, ctx Context) (Pattern, error) {
	f := r.Lookup(name)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPattern, name)
	}
	return build(f, ctx)
}

func build(f Factory, ctx Context) (Pattern, error) {
	p, err := f(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errNilFactoryResult
	}
	return p, nil
}
