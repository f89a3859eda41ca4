// Package floatutils provides small utilities for working with floats,
// shared by the nature and soft-robust packages.
package floatutils

import "math"

// Clip clamps value to the closed interval [min, max].
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// MaxAbsDiff returns the maximum absolute elementwise difference between
// a and b. Used by the solvers to compute Bellman residuals. Panics if
// the slices differ in length.
func MaxAbsDiff(a, b []float64) float64 {
	if len(a) != len(b) {
		panic("floatutils: MaxAbsDiff: slices have different lengths")
	}
	max := 0.0
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > max {
			max = d
		}
	}
	return max
}
