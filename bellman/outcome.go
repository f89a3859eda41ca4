package bellman

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/craam/mdp"
	"github.com/samuelfneumann/craam/nature"
)

// outcomeValues computes the value of every outcome transition of an
// action, the z-vector the outcome-rectangular natures operate on.
func outcomeValues(a *mdp.OutcomeAction, v []float64, discount float64) ([]float64, error) {
	outcomes := a.Outcomes()
	z := make([]float64, len(outcomes))
	for k := range outcomes {
		val, err := outcomes[k].Value(v, discount)
		if err != nil {
			return nil, err
		}
		z[k] = val
	}
	return z, nil
}

func outcomeNominal(a *mdp.OutcomeAction) []float64 {
	w := a.Weights()
	if w == nil {
		w = uniform(a.OutcomeCount())
	}
	return w
}

// SARobustOutcome is the MDPO analogue of SARobust: nature's ambiguity
// set ranges over an action's outcomes rather than over successor
// states, using the action's nominal outcome weights as p̂ and each
// outcome's own backed-up value as z.
func SARobustOutcome(m *mdp.MDPO, natureFn nature.SANature, fixedPolicy []int) Backup {
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
		candidates := []int{chosen}
		if chosen < 0 {
			candidates = candidates[:0]
			for aid := range actions {
				if actions[aid].Valid() {
					candidates = append(candidates, aid)
				}
			}
		}

		best, bestVal := -1, math.Inf(-1)
		natureProbs := make([][]float64, len(actions))
		for _, aid := range candidates {
			a := &actions[aid]
			if !a.Valid() {
				return Result{}, fmt.Errorf("bellman: fixed action %d invalid at state %d", aid, stateID)
			}
			z, err := outcomeValues(a, v, discount)
			if err != nil {
				return Result{}, err
			}
			natureProb, val := natureFn(stateID, aid, outcomeNominal(a), z)
			if val > bestVal {
				best, bestVal = aid, val
			}
			natureProbs[aid] = natureProb
		}
		if best < 0 {
			return Result{}, fmt.Errorf("bellman: state %d has no valid action", stateID)
		}

		onlyBest := make([][]float64, len(actions))
		onlyBest[best] = natureProbs[best]
		return Result{Value: bestVal, DecisionPolicy: onehot(len(actions), best), NaturePolicy: onlyBest}, nil
	}
}

// SRobustOutcome is the MDPO analogue of SRobust: the SNatureOutcome
// contract assumes one shared nominal distribution over outcomes
// across all of the state's actions, taken from the first
// valid action's weights (or uniform over its outcome count if unset).
func SRobustOutcome(m *mdp.MDPO, natureFn nature.SNatureOutcome, fixedPolicy [][]float64) Backup {
	return func(stateID int, v []float64, discount float64) (Result, error) {
		st := m.State(stateID)
		if st.IsTerminal() {
			return Result{}, nil
		}
		actions := st.Actions()

		var validIDs []int
		var z [][]float64
		var nominal []float64
		for aid := range actions {
			a := &actions[aid]
			if !a.Valid() {
				continue
			}
			zk, err := outcomeValues(a, v, discount)
			if err != nil {
				return Result{}, err
			}
			if nominal == nil {
				nominal = outcomeNominal(a)
			}
			validIDs = append(validIDs, aid)
			z = append(z, zk)
		}
		if len(validIDs) == 0 {
			return Result{}, fmt.Errorf("bellman: state %d has no valid action", stateID)
		}

		var policyIn []float64
		if fixedPolicy != nil {
			full := fixedPolicy[stateID]
			if len(full) != len(actions) {
				return Result{}, fmt.Errorf(
					"bellman: policy at state %d has length %d, want %d", stateID, len(full), len(actions))
			}
			policyIn = make([]float64, len(validIDs))
			for i, aid := range validIDs {
				policyIn[i] = full[aid]
			}
		}

		decision, natureDist, value := natureFn(stateID, policyIn, nominal, z)

		fullDecision := make([]float64, len(actions))
		fullNature := make([][]float64, len(actions))
		for i, aid := range validIDs {
			fullDecision[aid] = decision[i]
			if decision[i] != 0 {
				fullNature[aid] = natureDist
			}
		}
		return Result{Value: value, DecisionPolicy: fullDecision, NaturePolicy: fullNature}, nil
	}
}
