package solver

import (
	"fmt"
	"time"

	"github.com/samuelfneumann/craam/bellman"
	"github.com/samuelfneumann/craam/internal/floatutils"
	"github.com/samuelfneumann/craam/mdp"
	"gonum.org/v1/gonum/mat"
)

// PI solves a plain MDP by policy iteration via a dense linear solve
// (original solve_pi): each outer step derives the greedy
// policy π from the current value estimate, forms the transition
// matrix P_π and reward vector r_π over states, and solves
// (I − γP_π)V = r_π directly. This does not scale past a few thousand
// states by design — the linear solve is O(n³).
func PI(m *mdp.MDP, discount float64, opts Options) (Solution, error) {
	start := time.Now()
	n := m.Size()
	v := make([]float64, n)
	policy := make([]int, n)
	for i := range policy {
		policy[i] = -1
	}

	improve := bellman.Plain(m, nil)
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

		newPolicy := make([]int, n)
		changed := false
		for s := 0; s < n; s++ {
			res, err := improve(s, v, discount)
			if err != nil {
				return Solution{}, err
			}
			newPolicy[s] = greedyAction(res.DecisionPolicy)
			if newPolicy[s] != policy[s] {
				changed = true
			}
		}

		newV, err := evaluatePolicy(m, newPolicy, discount)
		if err != nil {
			return Solution{Status: StatusInternalError}, fmt.Errorf("solver: PI linear solve failed: %w", err)
		}
		residual = floatutils.MaxAbsDiff(newV, v)
		v, policy = newV, newPolicy

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
		if !changed || residual < maxRes {
			status = StatusOK
			iteration++
			break
		}
	}

	return Solution{
		Value: v, Policy: policy, Residual: residual,
		Iterations: iteration, Time: time.Since(start), Status: status,
	}, nil
}

// evaluatePolicy forms P_π/r_π for the given deterministic policy and
// solves (I − γP_π)V = r_π. Terminal states (policy[s] == -1) get an
// all-zero row of P_π and a zero reward, pinning V[s] to 0.
func evaluatePolicy(m *mdp.MDP, policy []int, discount float64) ([]float64, error) {
	n := m.Size()
	p := mat.NewDense(n, n, nil)
	r := mat.NewVecDense(n, nil)

	for s := 0; s < n; s++ {
		if policy[s] < 0 {
			continue
		}
		a := m.State(s).Action(policy[s])
		t := a.Transition()
		idx := t.Indices()
		probs := t.Probabilities()
		for k, j := range idx {
			p.Set(s, j, probs[k])
		}
		meanR, err := t.MeanReward()
		if err != nil {
			return nil, err
		}
		r.SetVec(s, meanR)
	}

	a := mat.NewDense(n, n, nil)
	a.Scale(-discount, p)
	for i := 0; i < n; i++ {
		a.Set(i, i, a.At(i, i)+1)
	}

	var vVec mat.VecDense
	if err := vVec.SolveVec(a, r); err != nil {
		return nil, err
	}
	v := make([]float64, n)
	for i := 0; i < n; i++ {
		v[i] = vVec.AtVec(i)
	}
	return v, nil
}
