//go:build !fastmath

package sim

import "math"

// sqrt computes the square root using standard library math.
func sqrt(x float64) float64 {
	return math.Sqrt(x)
}
