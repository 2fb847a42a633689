// Package patterns provides reference visual patterns built on the sim
// primitives. Each one reacts to audio features and pointer input and is
// registered by name with [Register].
//
//   - burst: particle explosions per click and a ring per beat
//   - flow: motes advected through a curl-noise field
//   - flock: boids chasing a spring-smoothed attractor
//   - ribbon: a verlet chain trailing the pointer
//
// Every pattern exposes its parameters as tunables, including "decay" for
// the trail length.
package patterns
