package solver

import (
	"time"

	"github.com/samuelfneumann/craam/bellman"
	"github.com/samuelfneumann/craam/internal/floatutils"
)

// BackupFactory builds a bellman.Backup for a given fixed deterministic
// policy (nil/negative entries meaning "optimize this state"), used by
// MPI and RPPI to alternate between policy improvement (factory(nil))
// and policy evaluation (factory(greedyPolicy)) with the same
// underlying operator (Plain, SARobust, or SARobustOutcome).
type BackupFactory func(fixedPolicy []int) bellman.Backup

// MPIOptions extends Options with the inner Jacobi evaluation loop's
// own stopping criteria (original mpi_jac).
type MPIOptions struct {
	Options
	InnerIterations     int     // iterations_vi; 0 means DefaultMaxIterations
	InnerResidualFactor float64 // maxresidual_vi; 0 means 0.5
}

func (o MPIOptions) innerIterations() int {
	if o.InnerIterations > 0 {
		return o.InnerIterations
	}
	return DefaultMaxIterations
}

func (o MPIOptions) innerResidualFactor() float64 {
	if o.InnerResidualFactor > 0 {
		return o.InnerResidualFactor
	}
	return 0.5
}

// jacobiSweep applies backup once to every state, reading only from
// the snapshot in, writing into a freshly allocated vector (a true
// Jacobi sweep, unlike VI's in-place Gauss-Seidel sweep).
func jacobiSweep(backup bellman.Backup, in []float64, discount float64) ([]float64, []int, [][]float64, error) {
	out := make([]float64, len(in))
	policy := make([]int, len(in))
	randomized := make([][]float64, len(in))
	for s := range in {
		res, err := backup(s, in, discount)
		if err != nil {
			return nil, nil, nil, err
		}
		out[s] = res.Value
		policy[s] = greedyAction(res.DecisionPolicy)
		randomized[s] = res.DecisionPolicy
	}
	return out, policy, randomized, nil
}

// MPI runs modified policy iteration with a Jacobi-style inner
// evaluation loop (original mpi_jac). factory(nil) is used
// for the outer policy-improvement sweep; factory(greedyPolicy) fixes
// the derived policy for the inner evaluation sweeps. There is no
// convergence guarantee documented for the robust case; the loop
// still terminates on the iteration cap or timeout.
func MPI(factory BackupFactory, stateCount int, discount float64, opts MPIOptions) (Solution, error) {
	start := time.Now()
	v := make([]float64, stateCount)
	var policy []int
	var randomized [][]float64

	improve := factory(nil)
	maxOuter := opts.maxIterations()
	maxOuterRes := opts.maxResidual()
	innerIters := opts.innerIterations()
	innerFactor := opts.innerResidualFactor()

	status := StatusIterationLimit
	outer := 0
	outerResidual := 0.0

	for ; outer < maxOuter; outer++ {
		if opts.Timeout > 0 && time.Since(start) > opts.Timeout {
			status = StatusTimeout
			break
		}

		newV, newPolicy, newRandomized, err := jacobiSweep(improve, v, discount)
		if err != nil {
			return Solution{}, err
		}
		outerResidual = floatutils.MaxAbsDiff(newV, v)
		v, policy, randomized = newV, newPolicy, newRandomized

		if err := opts.Checkpoint.Maybe(outer, Snapshot{
			Value: append([]float64(nil), v...), Policy: append([]int(nil), policy...),
			Iteration: outer, Residual: outerResidual,
		}); err != nil {
			return Solution{}, err
		}
		if opts.Progress != nil && !opts.Progress(outer, outerResidual) {
			status = StatusCancelled
			outer++
			break
		}
		if outerResidual < maxOuterRes {
			status = StatusOK
			outer++
			break
		}

		fixed := factory(policy)
		innerThreshold := innerFactor * outerResidual
		for inner := 0; inner < innerIters; inner++ {
			newV, _, _, err := jacobiSweep(fixed, v, discount)
			if err != nil {
				return Solution{}, err
			}
			innerResidual := floatutils.MaxAbsDiff(newV, v)
			v = newV
			if innerResidual < innerThreshold {
				break
			}
		}
	}

	return Solution{
		Value: v, Policy: policy, Randomized: randomized,
		Residual: outerResidual, Iterations: outer, Time: time.Since(start), Status: status,
	}, nil
}
