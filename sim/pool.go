package sim

import "fmt"

// Pool is a bounded collection of live items, each with a remaining life in
// seconds. Storage is allocated once; spawning beyond capacity is refused
// rather than grown.
//
// Iteration order is unspecified and changes as items are culled.
type Pool[T any] struct {
	items []T
	life  []float64
}

// NewPool creates a pool holding at most capacity items.
func NewPool[T any](capacity int) (*Pool[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("pool capacity must be > 0: %d", capacity)
	}
	return &Pool[T]{
		items: make([]T, 0, capacity),
		life:  make([]float64, 0, capacity),
	}, nil
}

// Len returns the number of live items.
func (p *Pool[T]) Len() int {
	return len(p.items)
}

// Cap returns the maximum number of live items.
func (p *Pool[T]) Cap() int {
	return cap(p.items)
}

// Full reports whether no more items can be spawned.
func (p *Pool[T]) Full() bool {
	return len(p.items) == cap(p.items)
}

// Spawn adds v with life seconds remaining if the pool has room. It reports
// whether v was added. Items with non-positive life are refused.
func (p *Pool[T]) Spawn(v T, life float64) bool {
	if p.Full() || !(life > 0) {
		return false
	}
	p.items = append(p.items, v)
	p.life = append(p.life, life)
	return true
}

// SpawnBurst spawns up to n items built by fn(i) with the given life and
// returns how many were added. The burst is clamped to the free capacity;
// fn is not called for refused items.
func (p *Pool[T]) SpawnBurst(n int, life float64, fn func(i int) T) int {
	free := cap(p.items) - len(p.items)
	if n > free {
		n = free
	}
	if n <= 0 || !(life > 0) {
		return 0
	}
	for i := 0; i < n; i++ {
		p.items = append(p.items, fn(i))
		p.life = append(p.life, life)
	}
	return n
}

// Age subtracts dt from every item's life and removes the items whose life
// reached zero. It returns the number of removed items.
func (p *Pool[T]) Age(dt float64) int {
	removed := 0
	for i := len(p.items) - 1; i >= 0; i-- {
		p.life[i] -= dt
		if p.life[i] > 0 {
			continue
		}
		p.remove(i)
		removed++
	}
	return removed
}

// remove deletes item i by swapping in the last item.
func (p *Pool[T]) remove(i int) {
	last := len(p.items) - 1
	p.items[i] = p.items[last]
	p.life[i] = p.life[last]
	var zero T
	p.items[last] = zero
	p.items = p.items[:last]
	p.life = p.life[:last]
}

// Kill removes item i immediately.
func (p *Pool[T]) Kill(i int) {
	if i < 0 || i >= len(p.items) {
		return
	}
	p.remove(i)
}

// Each calls fn for every live item with a pointer into the pool and its
// remaining life. fn must not spawn or kill.
func (p *Pool[T]) Each(fn func(v *T, life float64)) {
	for i := range p.items {
		fn(&p.items[i], p.life[i])
	}
}

// At returns a pointer to item i and its remaining life.
func (p *Pool[T]) At(i int) (*T, float64) {
	return &p.items[i], p.life[i]
}

// Clear removes every item, keeping the storage.
func (p *Pool[T]) Clear() {
	var zero T
	for i := range p.items {
		p.items[i] = zero
	}
	p.items = p.items[:0]
	p.life = p.life[:0]
}
