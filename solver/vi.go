package solver

import (
	"time"

	"github.com/samuelfneumann/craam/bellman"
	"github.com/samuelfneumann/craam/internal/floatutils"
	"github.com/samuelfneumann/craam/internal/matutils"
	"gonum.org/v1/gonum/mat"
)

// VI runs Gauss-Seidel value iteration (original vi_gs):
// each sweep updates V[s] in place, in ascending state order, so that
// later states within the same sweep already see earlier states'
// updated values. Convergence is declared once the maximal per-state
// change across a full sweep falls below the residual threshold.
func VI(backup bellman.Backup, stateCount int, discount float64, opts Options) (Solution, error) {
	start := time.Now()
	v := make([]float64, stateCount)
	policy := make([]int, stateCount)
	randomized := make([][]float64, stateCount)

	maxIter := opts.maxIterations()
	maxRes := opts.maxResidual()

	status := StatusIterationLimit
	iteration := 0
	residual := 0.0

	for ; iteration < maxIter; iteration++ {
		if opts.Timeout > 0 && time.Since(start) > opts.Timeout {
			status = StatusTimeout
			break
		}

		prev := append([]float64(nil), v...)
		for s := 0; s < stateCount; s++ {
			res, err := backup(s, v, discount)
			if err != nil {
				return Solution{}, err
			}
			v[s] = res.Value
			policy[s] = greedyAction(res.DecisionPolicy)
			randomized[s] = res.DecisionPolicy
		}
		residual = floatutils.MaxAbsDiff(v, prev)

		if err := opts.Checkpoint.Maybe(iteration, Snapshot{
			Value: append([]float64(nil), v...), Policy: append([]int(nil), policy...),
			Iteration: iteration, Residual: residual,
		}); err != nil {
			return Solution{}, err
		}

		if opts.Progress != nil && !opts.Progress(iteration, residual) {
			status = StatusCancelled
			iteration++
			break
		}
		if residual < maxRes {
			status = StatusOK
			iteration++
			break
		}
	}

	return Solution{
		Value: v, Policy: policy, Randomized: randomized,
		Residual: residual, Iterations: iteration, Time: time.Since(start), Status: status,
	}, nil
}

// greedyAction returns the index of decisionPolicy's single nonzero
// (or maximal) entry, or -1 if decisionPolicy is empty (a terminal
// state).
func greedyAction(decisionPolicy []float64) int {
	if len(decisionPolicy) == 0 {
		return -1
	}
	return matutils.MaxVec(mat.NewVecDense(len(decisionPolicy), decisionPolicy))
}
