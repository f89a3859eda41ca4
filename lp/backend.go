// Package lp defines the linear/quadratic programming backend
// contract used by package occupancy (the primal LP) and
// package softrobust (the AVaR QP). No LP/QP library is available to
// build on (and commercial solvers like Gurobi are out of scope), so
// this package supplies a dense reference backend built on
// gonum.org/v1/gonum/mat rather than pulling in an unavailable
// third-party solver.
package lp

import "fmt"

// Status reports how a backend call terminated.
type Status int

const (
	// StatusOptimal indicates a feasible optimum was found.
	StatusOptimal Status = iota
	// StatusInfeasibleOrUnbounded covers both LP infeasibility and QP
	// non-convergence, matching the original's "infeasible_or_unbounded"
	// surfaced status for any non-optimal backend outcome.
	StatusInfeasibleOrUnbounded
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasibleOrUnbounded:
		return "infeasible_or_unbounded"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Problem is a linear program in mixed form: minimize c^T x subject to
// A x ≤ b (row by row), with Free[i] marking variable i as
// sign-unrestricted (the default, false, constrains x[i] ≥ 0).
type Problem struct {
	C    []float64
	A    [][]float64
	B    []float64
	Free []bool
}

// Result is the outcome of a Backend solve.
type Result struct {
	X        []float64
	Objective float64
	Status   Status
}

// QPObjective describes a (possibly nonconvex) maximization problem by
// its objective and gradient, together with a projection onto the
// feasible set — used instead of a matrix-only quadratic form because
// the soft-robust AVaR program's feasible set (simplex policies times
// occupancy-balance equalities) does not reduce to simple box bounds.
type QPObjective struct {
	Evaluate func(x []float64) float64
	Gradient func(x []float64) []float64
	Project  func(x []float64) []float64
	X0       []float64
}

// Backend is the interface package occupancy and package softrobust
// program against, so a different solver (e.g. a real external LP/QP
// library) can be swapped in without touching their call sites.
type Backend interface {
	SolveLP(p Problem) (Result, error)
	SolveQP(p QPObjective, iterations int, stepSize float64) (Result, error)
}
