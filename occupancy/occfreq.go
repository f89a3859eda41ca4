// Package occupancy computes discounted state (and state-action)
// occupancy frequencies for a fixed policy, and solves the primal LP
// formulation of the plain Bellman optimality equations.
package occupancy

import (
	"fmt"

	"github.com/samuelfneumann/craam/mdp"
	"gonum.org/v1/gonum/mat"
)

// OccFreq solves u^T (I − γP_π) = α^T densely for the stationary
// discounted state occupancy u of policy π under initial distribution
// α, grounded on the original solvers.hpp occupancies(...) routine.
// Requires discount < 1, or that every recurrent class under π
// contains an absorbing (terminal) state, or the system is singular.
func OccFreq(m *mdp.MDP, alpha []float64, discount float64, policy [][]float64) ([]float64, error) {
	n := m.Size()
	if len(alpha) != n {
		return nil, fmt.Errorf("occupancy: len(alpha)=%d does not match state count %d", len(alpha), n)
	}
	if len(policy) != n {
		return nil, fmt.Errorf("occupancy: len(policy)=%d does not match state count %d", len(policy), n)
	}

	p := mat.NewDense(n, n, nil)
	for s := 0; s < n; s++ {
		st := m.State(s)
		if st.IsTerminal() {
			continue
		}
		actions := st.Actions()
		pol := policy[s]
		if len(pol) != len(actions) {
			return nil, fmt.Errorf("occupancy: policy[%d] has %d entries, want %d", s, len(pol), len(actions))
		}
		for aid := range actions {
			if pol[aid] == 0 {
				continue
			}
			a := &actions[aid]
			t := a.Transition()
			idx := t.Indices()
			probs := t.Probabilities()
			for k, j := range idx {
				p.Set(s, j, p.At(s, j)+pol[aid]*probs[k])
			}
		}
	}

	// (I - γP)^T u = α, so A = (I - γP)^T: A[j][s] = δ(j,s) - γP[s][j].
	a := mat.NewDense(n, n, nil)
	for s := 0; s < n; s++ {
		for j := 0; j < n; j++ {
			v := -discount * p.At(s, j)
			if s == j {
				v += 1
			}
			a.Set(j, s, v)
		}
	}

	alphaVec := mat.NewVecDense(n, alpha)
	var u mat.VecDense
	if err := u.SolveVec(a, alphaVec); err != nil {
		return nil, fmt.Errorf("occupancy: occupancy system is singular: %w", err)
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = u.AtVec(i)
	}
	return out, nil
}

// StateActionOccFreq expands a state occupancy vector into
// state-action occupancy u(s,a) = u(s)·π(a|s), the quantity the
// soft-robust AVaR program needs for its d(s,ω) balance
// constraints.
func StateActionOccFreq(m *mdp.MDP, stateOcc []float64, policy [][]float64) [][]float64 {
	n := m.Size()
	out := make([][]float64, n)
	for s := 0; s < n; s++ {
		actions := m.State(s).Actions()
		row := make([]float64, len(actions))
		for aid := range actions {
			row[aid] = stateOcc[s] * policy[s][aid]
		}
		out[s] = row
	}
	return out
}
