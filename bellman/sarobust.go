package bellman

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/craam/mdp"
	"github.com/samuelfneumann/craam/nature"
)

// SARobust is the s,a-rectangular robust Bellman backup (original
// SARobustBellman): for each action, the nature response is queried
// with the action's nominal transition probabilities and z-values,
// and the backup maximizes the nature-chosen value over actions.
func SARobust(m *mdp.MDP, natureFn nature.SANature, fixedPolicy []int) Backup {
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
			t := a.Transition()
			natureProb, val := natureFn(stateID, aid, t.Probabilities(), zValues(t, v, discount))
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
