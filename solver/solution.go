// Package solver implements the iterative algorithms
// (vi_gs, mpi_jac, pi, and the RPPI robust partial policy iteration)
// over a bellman.Backup, producing a uniform Solution bundle.
package solver

import (
	"fmt"
	"time"

	"github.com/samuelfneumann/craam/internal/matutils"
	"gonum.org/v1/gonum/mat"
)

// Status reports how a solve terminated.
type Status int

const (
	// StatusOK indicates convergence within the residual threshold.
	StatusOK Status = iota
	// StatusIterationLimit indicates the iteration cap was reached
	// before convergence.
	StatusIterationLimit
	// StatusTimeout indicates the wall-clock timeout elapsed first.
	StatusTimeout
	// StatusInfeasible indicates an LP/QP backend reported
	// infeasibility or unboundedness.
	StatusInfeasible
	// StatusCancelled indicates the progress callback returned false.
	StatusCancelled
	// StatusInternalError indicates a failure in the backup or linear
	// solve itself (e.g. a malformed policy or a singular system).
	StatusInternalError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusIterationLimit:
		return "iteration_limit"
	case StatusTimeout:
		return "timeout"
	case StatusInfeasible:
		return "infeasible"
	case StatusCancelled:
		return "cancelled"
	case StatusInternalError:
		return "internal_error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Solution is the uniform bundle every solver in this package returns.
type Solution struct {
	Value      []float64
	Policy     []int // highest-weight action id per state, -1 for terminal states; left nil by MPIRand and PIRand
	Randomized [][]float64
	Residual   float64
	Iterations int
	Time       time.Duration
	Status     Status
}

// String formats the Solution's value vector using matutils.Format,
// routing dense-vector printing through a single helper.
func (s Solution) String() string {
	v := mat.NewVecDense(len(s.Value), s.Value)
	return fmt.Sprintf("status=%v iterations=%d residual=%g value=%s",
		s.Status, s.Iterations, s.Residual, matutils.Format(v))
}

// ProgressFunc is called once per outer iteration with the iteration
// number and current residual; returning false cancels the solve at
// the next suspension point.
type ProgressFunc func(iteration int, residual float64) bool
