// Package bellman implements the generalized Bellman backup operators
// every operator reduces a state's per-action (or
// per-outcome) transitions to a uniform (value, decision policy,
// nature policy) tuple so that the iterative solvers in package solver
// are polymorphic over which operator produced the backup.
package bellman

// Result is the uniform tuple every Backup produces for one state.
// DecisionPolicy is a distribution over the state's actions (one-hot
// for a deterministic operator, the supplied/derived mixture for a
// randomized one). NaturePolicy holds, for each action the decision
// policy gives nonzero weight to, nature's chosen distribution — over
// successor states for the SA/S-rectangular operators, over outcomes
// for the outcome-rectangular ones. Entries for actions the decision
// policy does not use are left nil.
type Result struct {
	Value          float64
	DecisionPolicy []float64
	NaturePolicy   [][]float64
}

// Backup computes the Result for a single state given the current
// value vector and discount factor. Terminal states must return a
// zero Result with Value 0 and nil policies.
type Backup func(stateID int, v []float64, discount float64) (Result, error)

func onehot(n, i int) []float64 {
	d := make([]float64, n)
	if n > 0 {
		d[i] = 1
	}
	return d
}

func uniform(n int) []float64 {
	d := make([]float64, n)
	if n == 0 {
		return d
	}
	p := 1.0 / float64(n)
	for i := range d {
		d[i] = p
	}
	return d
}
