package bellman

import "github.com/samuelfneumann/craam/mdp"

// zValues computes z[k] = R[k] + discount*V[I[k]] for a transition's
// reachable successors, the per-successor input nature responses
// operate on.
func zValues(t *mdp.Transition, v []float64, discount float64) []float64 {
	indices := t.Indices()
	rewards := t.Rewards()
	z := make([]float64, len(indices))
	for k, idx := range indices {
		z[k] = rewards[k] + discount*v[idx]
	}
	return z
}
