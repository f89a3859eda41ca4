// Package matutils implements small utility functions for working with
// gonum mat.Matrix values, used when a solver needs dense linear algebra
// (policy-iteration's linear solve, occupancy's matrix inversion).
package matutils

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Format formats a matrix or vector for printing, e.g. in a Solution's
// String method.
func Format(X mat.Matrix) string {
	fa := mat.Formatted(X, mat.Prefix(""), mat.Squeeze())
	return fmt.Sprintf("%v", fa)
}

// MaxVec finds and returns the index of the maximum value in a vector.
// If multiple equal max values exist, the lowest index is returned,
// matching the tie-breaking rule used throughout the solvers.
func MaxVec(values mat.Vector) int {
	max, idx := values.AtVec(0), 0
	n := values.Len()

	for i := 1; i < n; i++ {
		if values.AtVec(i) > max {
			max = values.AtVec(i)
			idx = i
		}
	}
	return idx
}
