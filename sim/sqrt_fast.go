//go:build fastmath

package sim

import "github.com/meko-christian/algo-approx"

// sqrt computes the square root using fast approximation.
func sqrt(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return approx.FastSqrt(x)
}
