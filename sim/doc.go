// Package sim provides the simulation primitives patterns are built from:
// seeded gradient and curl noise, boids steering forces with a bounded
// neighbour grid, a position-based verlet integrator, and a bounded
// particle pool.
//
// Every type here is inert: nothing runs on its own and nothing is shared
// between patterns. Build with -tags fastmath to use approximate square
// roots in the distance kernels.
package sim
