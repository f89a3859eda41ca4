package bellman

import (
	"fmt"

	"github.com/samuelfneumann/craam/mdp"
	"github.com/samuelfneumann/craam/nature"
)

// SRobust is the s-rectangular robust Bellman backup (original
// SRobustBellman): the SNature contract is queried once per state
// with the nominal probabilities and z-values of every valid action,
// and jointly returns the decision policy over actions and nature's
// distribution for each. Invalid actions are excluded
// from what is passed to natureFn and always receive zero decision
// weight in the result.
func SRobust(m *mdp.MDP, natureFn nature.SNature, fixedPolicy [][]float64) Backup {
	return func(stateID int, v []float64, discount float64) (Result, error) {
		st := m.State(stateID)
		if st.IsTerminal() {
			return Result{}, nil
		}
		actions := st.Actions()

		var validIDs []int
		var nominal [][]float64
		var z [][]float64
		for aid := range actions {
			a := &actions[aid]
			if !a.Valid() {
				continue
			}
			t := a.Transition()
			validIDs = append(validIDs, aid)
			nominal = append(nominal, t.Probabilities())
			z = append(z, zValues(t, v, discount))
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

		decision, natureOut, value := natureFn(stateID, policyIn, nominal, z)

		fullDecision := make([]float64, len(actions))
		fullNature := make([][]float64, len(actions))
		for i, aid := range validIDs {
			fullDecision[aid] = decision[i]
			if decision[i] != 0 {
				fullNature[aid] = natureOut[i]
			}
		}
		return Result{Value: value, DecisionPolicy: fullDecision, NaturePolicy: fullNature}, nil
	}
}
