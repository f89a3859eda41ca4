package bellman

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/craam/mdp"
)

// Plain is the non-robust Bellman backup (original PlainBellman): for
// a terminal state it returns value 0; otherwise, if fixedPolicy is
// non-nil and fixedPolicy[s] is non-negative, that action's value is
// used (policy evaluation), and an error is returned if it does not
// name a valid action; otherwise the backup greedily maximizes over
// actions, ties broken by the lowest action id (a deterministic
// ordering guarantee).
func Plain(m *mdp.MDP, fixedPolicy []int) Backup {
	return func(stateID int, v []float64, discount float64) (Result, error) {
		st := m.State(stateID)
		if st.IsTerminal() {
			return Result{}, nil
		}
		actions := st.Actions()

		chosen := -1
		if fixedPolicy != nil && fixedPolicy[stateID] >= 0 {
			chosen = fixedPolicy[stateID]
		}

		best, bestVal := -1, math.Inf(-1)
		if chosen >= 0 {
			if !st.IsActionCorrect(chosen) || !actions[chosen].Valid() {
				return Result{}, fmt.Errorf("bellman: fixed action %d invalid at state %d", chosen, stateID)
			}
			val, err := actions[chosen].Transition().Value(v, discount)
			if err != nil {
				return Result{}, err
			}
			best, bestVal = chosen, val
		} else {
			for aid := range actions {
				a := &actions[aid]
				if !a.Valid() {
					continue
				}
				val, err := a.Transition().Value(v, discount)
				if err != nil {
					return Result{}, err
				}
				if val > bestVal {
					best, bestVal = aid, val
				}
			}
		}
		if best < 0 {
			return Result{}, fmt.Errorf("bellman: state %d has no valid action", stateID)
		}

		nature := make([][]float64, len(actions))
		nature[best] = actions[best].Transition().Probabilities()
		return Result{Value: bestVal, DecisionPolicy: onehot(len(actions), best), NaturePolicy: nature}, nil
	}
}

// PlainRand evaluates a fixed randomized policy: the backup is
// Σ_a fixedPolicy[s][a] · Q(s,a,V), the decision policy is passed
// through unchanged (original PlainBellmanRand).
func PlainRand(m *mdp.MDP, fixedPolicy [][]float64) Backup {
	return func(stateID int, v []float64, discount float64) (Result, error) {
		st := m.State(stateID)
		if st.IsTerminal() {
			return Result{}, nil
		}
		actions := st.Actions()
		policy := fixedPolicy[stateID]
		if len(policy) != len(actions) {
			return Result{}, fmt.Errorf(
				"bellman: policy at state %d has length %d, want %d", stateID, len(policy), len(actions))
		}

		var total float64
		nature := make([][]float64, len(actions))
		for aid := range actions {
			if policy[aid] == 0 {
				continue
			}
			a := &actions[aid]
			val, err := a.Transition().Value(v, discount)
			if err != nil {
				return Result{}, err
			}
			total += policy[aid] * val
			nature[aid] = a.Transition().Probabilities()
		}
		return Result{Value: total, DecisionPolicy: append([]float64(nil), policy...), NaturePolicy: nature}, nil
	}
}
