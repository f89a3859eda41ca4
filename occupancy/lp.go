package occupancy

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/craam/lp"
	"github.com/samuelfneumann/craam/mdp"
)

// LPResult is the outcome of SolveLPPrimal: the optimal value function
// together with the greedy policy recovered from the constraints
// binding at that optimum.
type LPResult struct {
	Value  []float64
	Policy []int
	Status lp.Status
}

// SolveLPPrimal solves the primal LP formulation of the plain Bellman
// optimality equations, grounded on the original
// algorithms::solve_lp_primal:
//
//	min  Σ_s V_s
//	s.t. V_s ≥ R(s,a) + γ Σ_s' P(s,a,s') V_s'   for every state-action (s,a)
//
// V is sign-unrestricted. The policy is recovered by finding, for each
// state, the action whose constraint is tight (within tol) at the
// optimum — ties broken to the lowest action id, matching bellman.Plain.
func SolveLPPrimal(m *mdp.MDP, discount float64, backend lp.Backend, tol float64) (LPResult, error) {
	n := m.Size()
	var c []float64 = make([]float64, n)
	for s := range c {
		c[s] = 1
	}
	free := make([]bool, n)
	for s := range free {
		free[s] = true
	}

	var rowsA [][]float64
	var rowsB []float64
	type constraintOwner struct{ state, action int }
	var owners []constraintOwner

	for s := 0; s < n; s++ {
		st := m.State(s)
		if st.IsTerminal() {
			// A terminal state has no Bellman constraint to bind it, so
			// pin V_s = 0 directly (matching bellman.Plain's terminal
			// convention) instead of leaving an unconstrained free
			// variable in the minimization.
			pin := make([]float64, n)
			pin[s] = 1
			rowsA = append(rowsA, pin)
			rowsB = append(rowsB, 0)
			owners = append(owners, constraintOwner{state: s, action: -1})
			negPin := make([]float64, n)
			negPin[s] = -1
			rowsA = append(rowsA, negPin)
			rowsB = append(rowsB, 0)
			owners = append(owners, constraintOwner{state: s, action: -1})
			continue
		}
		actions := st.Actions()
		for aid := range actions {
			a := &actions[aid]
			if !a.Valid() {
				continue
			}
			t := a.Transition()
			meanR, err := t.MeanReward()
			if err != nil {
				return LPResult{}, err
			}
			row := make([]float64, n)
			row[s] -= 1
			idx := t.Indices()
			probs := t.Probabilities()
			for k, j := range idx {
				row[j] += discount * probs[k]
			}
			rowsA = append(rowsA, row)
			rowsB = append(rowsB, -meanR)
			owners = append(owners, constraintOwner{state: s, action: aid})
		}
	}

	if len(rowsA) == 0 {
		return LPResult{Value: make([]float64, n), Policy: makeAllTerminal(n), Status: lp.StatusOptimal}, nil
	}

	res, err := backend.SolveLP(lp.Problem{C: c, A: rowsA, B: rowsB, Free: free})
	if err != nil {
		return LPResult{}, fmt.Errorf("occupancy: primal LP solve failed: %w", err)
	}
	if res.Status != lp.StatusOptimal {
		return LPResult{Status: res.Status}, nil
	}

	policy := makeAllTerminal(n)
	bestSlack := make([]float64, n)
	for s := range bestSlack {
		bestSlack[s] = math.Inf(1)
	}
	for i, row := range rowsA {
		lhs := 0.0
		for j, coeff := range row {
			lhs += coeff * res.X[j]
		}
		slack := lhs - rowsB[i]
		owner := owners[i]
		if slack < bestSlack[owner.state]-tol || (math.Abs(slack-bestSlack[owner.state]) <= tol && owner.action < policy[owner.state]) {
			bestSlack[owner.state] = slack
			policy[owner.state] = owner.action
		}
	}

	return LPResult{Value: res.X, Policy: policy, Status: lp.StatusOptimal}, nil
}

func makeAllTerminal(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = -1
	}
	return p
}
