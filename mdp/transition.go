// Package mdp implements the sparse transition/action/state/model
// representation for plain and robust Markov Decision Processes, and
// its CSV/JSON external interfaces.
package mdp

import (
	"math"
	"sort"
)

// Tolerance constants used throughout the core.
const (
	// EqualityEpsilon is the tolerance used to compare two floats for
	// equality, e.g. when deciding whether a probability update is
	// numerically negligible.
	EqualityEpsilon = 1e-6
	// NormalizeTolerance is the tolerance used by Normalize and
	// IsNormalized when checking that probabilities sum to one.
	NormalizeTolerance = 1e-5
	// DefaultConvergenceThreshold is the default residual threshold
	// used by the iterative solvers when the caller does not specify
	// one.
	DefaultConvergenceThreshold = 1e-4
)

// Transition represents a sparse probability distribution over target
// states, with a reward attached to each target. Indices are kept
// strictly ascending as samples are added, which keeps per-state
// backups cache friendly and lets ProbabilityTo/IndexOf binary search.
type Transition struct {
	indices       []int
	probabilities []float64
	rewards       []float64
}

// EmptyTransition is a shared, zero-value Transition standing for "no
// transition". The accessors in this package do not return it: an
// invalid action's Transition() points at that action's own empty
// transition.
var EmptyTransition = Transition{}

// NewTransition builds a Transition from parallel slices of target
// index, probability, and reward. The indices need not be sorted or
// unique on input: duplicate indices are aggregated using the same
// rule as AddSample, and the result is stored in ascending index
// order.
func NewTransition(indices []int, probabilities []float64, rewards []float64) (Transition, error) {
	if len(indices) != len(probabilities) || len(indices) != len(rewards) {
		return Transition{}, newArgumentError(
			"indices, probabilities, and rewards must have the same length, got %d, %d, %d",
			len(indices), len(probabilities), len(rewards))
	}

	order := make([]int, len(indices))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return indices[order[a]] < indices[order[b]]
	})

	var t Transition
	for _, k := range order {
		if err := t.AddSample(indices[k], probabilities[k], rewards[k]); err != nil {
			return Transition{}, err
		}
	}
	return t, nil
}

// AddSample adds a single transition sample to t. If a transition to
// stateID already exists, the probability is summed and the reward
// becomes the probability-weighted mean of the old and new rewards:
//
//	p' = p_old + probability
//	r' = (p_old*r_old + probability*reward) / p'
//
// falling back to reward when p' is below EqualityEpsilon. Samples
// with probability <= 0 are silently dropped unless force is true. A
// probability below -1e-3 or a negative stateID is rejected with an
// ArgumentError, whether or not force is set.
func (t *Transition) AddSample(stateID int, probability, reward float64, force ...bool) error {
	doForce := len(force) > 0 && force[0]

	if probability < -1e-3 {
		return newArgumentError("probability must be non-negative, got %v", probability)
	}
	if stateID < 0 {
		return newArgumentError("state id must be non-negative, got %d", stateID)
	}
	if probability <= 0 && !doForce {
		return nil
	}

	n := len(t.indices)
	if n == 0 || t.indices[n-1] < stateID {
		t.indices = append(t.indices, stateID)
		t.probabilities = append(t.probabilities, probability)
		t.rewards = append(t.rewards, reward)
		return nil
	}

	idx := sort.SearchInts(t.indices, stateID)
	if idx < n && t.indices[idx] == stateID {
		pOld := t.probabilities[idx]
		rOld := t.rewards[idx]
		pNew := pOld + probability
		t.probabilities[idx] = pNew

		var rNew float64
		if pNew > EqualityEpsilon {
			rNew = (pOld*rOld + probability*reward) / pNew
		} else {
			rNew = reward
		}
		t.rewards[idx] = rNew
		return nil
	}

	t.indices = insertInt(t.indices, idx, stateID)
	t.probabilities = insertFloat(t.probabilities, idx, probability)
	t.rewards = insertFloat(t.rewards, idx, reward)
	return nil
}

func insertInt(s []int, at, v int) []int {
	s = append(s, 0)
	copy(s[at+1:], s[at:])
	s[at] = v
	return s
}

func insertFloat(s []float64, at int, v float64) []float64 {
	s = append(s, 0)
	copy(s[at+1:], s[at:])
	s[at] = v
	return s
}

// SumProbabilities sums all transition probabilities.
func (t *Transition) SumProbabilities() float64 {
	sum := 0.0
	for _, p := range t.probabilities {
		sum += p
	}
	return sum
}

// Normalize scales the transition probabilities so that they sum to
// one. It returns a NumericError if the probabilities sum to (near)
// zero.
func (t *Transition) Normalize() error {
	if len(t.probabilities) == 0 {
		return nil
	}
	sum := t.SumProbabilities()
	if sum <= NormalizeTolerance {
		return newNumericError("probabilities sum to 0 (or close) and cannot be normalized")
	}
	for i := range t.probabilities {
		t.probabilities[i] /= sum
	}
	return nil
}

// IsNormalized reports whether the transition probabilities sum to one
// within NormalizeTolerance. An empty transition is considered
// normalized.
func (t *Transition) IsNormalized() bool {
	if len(t.indices) == 0 {
		return true
	}
	return math.Abs(1.0-t.SumProbabilities()) < NormalizeTolerance
}

// Value computes the expected backup Σ p[k]·(R[k] + γ·v[I[k]]) using
// the transition's own probabilities. It returns a NumericError if the
// transition is empty (a terminal/invalid action has no well-defined
// backup).
func (t *Transition) Value(valuefunction []float64, discount float64) (float64, error) {
	return t.ValueWith(valuefunction, discount, t.probabilities)
}

// ValueWith computes the expected backup using a caller-supplied
// distribution p over the same positions as the transition's targets
// (e.g. a nature response), rather than the transition's own
// probabilities. len(probabilities) must equal t.Size().
func (t *Transition) ValueWith(valuefunction []float64, discount float64, probabilities []float64) (float64, error) {
	if len(t.indices) == 0 {
		return 0, newNumericError("value: transition is empty, backup is undefined")
	}
	if len(probabilities) != len(t.indices) {
		return 0, newArgumentError(
			"value: probabilities has length %d, want %d", len(probabilities), len(t.indices))
	}

	value := 0.0
	for k, idx := range t.indices {
		value += probabilities[k] * (t.rewards[k] + discount*valuefunction[idx])
	}
	return value, nil
}

// ProbabilityTo returns the probability of transitioning to stateID,
// or 0 if there is no such transition.
func (t *Transition) ProbabilityTo(stateID int) float64 {
	idx := t.IndexOf(stateID)
	if idx < 0 {
		return 0
	}
	return t.probabilities[idx]
}

// MeanReward computes the mean return of the transition under a
// caller-supplied distribution over the same positions as its
// targets, or under the transition's own probabilities if none is
// given.
func (t *Transition) MeanReward(probabilities ...[]float64) (float64, error) {
	p := t.probabilities
	if len(probabilities) > 0 {
		p = probabilities[0]
	}
	if len(t.indices) == 0 {
		return 0, newNumericError("mean_reward: transition is empty")
	}
	if len(p) != len(t.indices) {
		return 0, newArgumentError("mean_reward: probabilities has length %d, want %d",
			len(p), len(t.indices))
	}
	sum := 0.0
	for k := range p {
		sum += p[k] * t.rewards[k]
	}
	return sum, nil
}

// Size returns the number of target states with a recorded
// probability.
func (t *Transition) Size() int { return len(t.indices) }

// Empty reports whether the transition has no targets.
func (t *Transition) Empty() bool { return len(t.indices) == 0 }

// MaxIndex returns the largest target index involved in the
// transition, or -1 if it is empty.
func (t *Transition) MaxIndex() int {
	if len(t.indices) == 0 {
		return -1
	}
	return t.indices[len(t.indices)-1]
}

// ProbabilitiesAddTo scales the transition's probabilities by scale
// and adds them into dst, a dense vector indexed by target state.
// Rewards are ignored.
func (t *Transition) ProbabilitiesAddTo(scale float64, dst []float64) {
	for i, idx := range t.indices {
		dst[idx] += scale * t.probabilities[i]
	}
}

// ProbabilitiesAdd scales the probabilities of other by scale and
// merges them into t: probabilities are summed and rewards are
// probability-weighted averages, by the same rule as AddSample.
func (t *Transition) ProbabilitiesAdd(scale float64, other *Transition) {
	for i := range other.indices {
		// AddSample never fails for non-negative probability/state id
		// inputs built from an existing Transition.
		_ = t.AddSample(other.indices[i], scale*other.probabilities[i], other.rewards[i])
	}
}

// ProbabilitiesVector densifies the transition's probabilities to a
// vector of length size, zero-filling missing targets.
func (t *Transition) ProbabilitiesVector(size int) ([]float64, error) {
	if t.MaxIndex() >= size {
		return nil, newArgumentError("probabilities_vector: size %d must exceed max index %d",
			size, t.MaxIndex())
	}
	result := make([]float64, size)
	for i, idx := range t.indices {
		result[idx] = t.probabilities[i]
	}
	return result, nil
}

// RewardsVector densifies the transition's rewards to a vector of
// length size. Rewards for states with no recorded transition are
// zero.
func (t *Transition) RewardsVector(size int) ([]float64, error) {
	if t.MaxIndex() >= size {
		return nil, newArgumentError("rewards_vector: size %d must exceed max index %d",
			size, t.MaxIndex())
	}
	result := make([]float64, size)
	for i, idx := range t.indices {
		result[idx] = t.rewards[i]
	}
	return result, nil
}

// Indices returns a copy of the ascending target state indices.
func (t *Transition) Indices() []int {
	out := make([]int, len(t.indices))
	copy(out, t.indices)
	return out
}

// Probabilities returns a copy of the probabilities parallel to
// Indices.
func (t *Transition) Probabilities() []float64 {
	out := make([]float64, len(t.probabilities))
	copy(out, t.probabilities)
	return out
}

// Rewards returns a copy of the rewards parallel to Indices.
func (t *Transition) Rewards() []float64 {
	out := make([]float64, len(t.rewards))
	copy(out, t.rewards)
	return out
}

// IndexOf returns the position of stateID within Indices, or -1 if
// stateID has no recorded transition. Unlike the original
// implementation this is safe to call on a miss.
func (t *Transition) IndexOf(stateID int) int {
	if stateID < 0 {
		return -1
	}
	idx := sort.SearchInts(t.indices, stateID)
	if idx < len(t.indices) && t.indices[idx] == stateID {
		return idx
	}
	return -1
}

// SetReward overwrites the reward stored at sample position sampleIdx
// (an index into Indices/Probabilities/Rewards, not a state id).
func (t *Transition) SetReward(sampleIdx int, reward float64) {
	t.rewards[sampleIdx] = reward
}

// GetReward returns the reward stored at sample position sampleIdx.
func (t *Transition) GetReward(sampleIdx int) (float64, error) {
	if sampleIdx < 0 || sampleIdx >= len(t.rewards) {
		return 0, newArgumentError("get_reward: sample index %d out of range [0,%d)",
			sampleIdx, len(t.rewards))
	}
	return t.rewards[sampleIdx], nil
}

// JoinProbs merges two transitions' probability vectors over the
// union of their target indices, zero-filling positions missing from
// either side, and returns the two aligned dense vectors in ascending
// index order.
func JoinProbs(t1, t2 *Transition) (p1, p2 []float64) {
	i, j := 0, 0
	for i < len(t1.indices) && j < len(t2.indices) {
		switch {
		case t1.indices[i] == t2.indices[j]:
			p1 = append(p1, t1.probabilities[i])
			p2 = append(p2, t2.probabilities[j])
			i++
			j++
		case t1.indices[i] < t2.indices[j]:
			p1 = append(p1, t1.probabilities[i])
			p2 = append(p2, 0)
			i++
		default:
			p1 = append(p1, 0)
			p2 = append(p2, t2.probabilities[j])
			j++
		}
	}
	for ; i < len(t1.indices); i++ {
		p1 = append(p1, t1.probabilities[i])
		p2 = append(p2, 0)
	}
	for ; j < len(t2.indices); j++ {
		p1 = append(p1, 0)
		p2 = append(p2, t2.probabilities[j])
	}
	return p1, p2
}
