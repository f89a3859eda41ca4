package solver

import (
	"time"

	"github.com/samuelfneumann/craam/bellman"
	"github.com/samuelfneumann/craam/internal/floatutils"
	"github.com/samuelfneumann/craam/mdp"
	"gonum.org/v1/gonum/mat"
)

// VIRand evaluates a fixed randomized stationary policy by Gauss-
// Seidel sweeps of bellman.PlainRand — no policy improvement step, just
// repeated application of the fixed-policy backup until the value
// converges.
func VIRand(m *mdp.MDP, policy [][]float64, discount float64, opts Options) (Solution, error) {
	return VI(bellman.PlainRand(m, policy), m.Size(), discount, opts)
}

// MPIRand evaluates a fixed randomized stationary policy with Jacobi
// (rather than Gauss-Seidel) sweeps, matching the inner evaluation
// loop's schedule used by MPI, without any outer improvement step.
func MPIRand(m *mdp.MDP, policy [][]float64, discount float64, opts Options) (Solution, error) {
	start := time.Now()
	n := m.Size()
	backup := bellman.PlainRand(m, policy)

	v := make([]float64, n)
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
		newV, _, _, err := jacobiSweep(backup, v, discount)
		if err != nil {
			return Solution{}, err
		}
		residual = floatutils.MaxAbsDiff(newV, v)
		v = newV

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

	return Solution{Value: v, Residual: residual, Iterations: iteration, Time: time.Since(start), Status: status}, nil
}

// PIRand evaluates a fixed randomized stationary policy exactly, in
// one dense linear solve: P_π and r_π are formed as the policy-weighted
// mixtures of each action's nominal transition, and (I − γP_π)V = r_π
// is solved directly (no iteration is needed since the policy is
// already fixed).
func PIRand(m *mdp.MDP, policy [][]float64, discount float64) (Solution, error) {
	start := time.Now()
	n := m.Size()
	p := mat.NewDense(n, n, nil)
	r := mat.NewVecDense(n, nil)

	for s := 0; s < n; s++ {
		st := m.State(s)
		if st.IsTerminal() {
			continue
		}
		actions := st.Actions()
		pol := policy[s]
		var reward float64
		for aid := range actions {
			if pol[aid] == 0 {
				continue
			}
			a := &actions[aid]
			t := a.Transition()
			idx := t.Indices()
			probs := t.Probabilities()
			meanR, err := t.MeanReward()
			if err != nil {
				return Solution{}, err
			}
			reward += pol[aid] * meanR
			for k, j := range idx {
				p.Set(s, j, p.At(s, j)+pol[aid]*probs[k])
			}
		}
		r.SetVec(s, reward)
	}

	a := mat.NewDense(n, n, nil)
	a.Scale(-discount, p)
	for i := 0; i < n; i++ {
		a.Set(i, i, a.At(i, i)+1)
	}
	var vVec mat.VecDense
	if err := vVec.SolveVec(a, r); err != nil {
		return Solution{Status: StatusInternalError}, err
	}
	v := make([]float64, n)
	for i := 0; i < n; i++ {
		v[i] = vVec.AtVec(i)
	}

	return Solution{Value: v, Iterations: 1, Time: time.Since(start), Status: StatusOK}, nil
}
