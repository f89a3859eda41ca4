package nature

// Average is the non-robust SANature response: it leaves the nominal
// transition unchanged and reports its expected z-value. It
// corresponds to the craam::algorithms::nats::average functor — the
// plain expectation, used whenever a Bellman operator should fall back
// to ordinary (non-robust) behavior while still going through the
// nature contract.
func Average() SANature {
	return func(stateID, actionID int, nominalProb, zValues []float64) ([]float64, float64) {
		return nominalProb, dot(nominalProb, zValues)
	}
}

// AverageS is the s-rectangular analogue of Average: when a policy is
// supplied, it only evaluates the policy's expected value against the
// nominal kernel; when policy is nil, it greedily picks the
// highest-value action (there being no adversary to resist).
func AverageS() SNature {
	return func(stateID int, policy []float64, nominalProbs [][]float64, zValues [][]float64) (
		[]float64, [][]float64, float64) {

		values := make([]float64, len(nominalProbs))
		for a := range nominalProbs {
			values[a] = dot(nominalProbs[a], zValues[a])
		}

		if policy != nil {
			return policy, nominalProbs, dot(policy, values)
		}
		best := argmax(values)
		return onehot(len(values), best), nominalProbs, values[best]
	}
}

// AverageOutcome is the MDPO-specialized analogue of AverageS, used
// when an action's outcomes share one nominal distribution.
func AverageOutcome() SNatureOutcome {
	return func(stateID int, policy, nominalProbs []float64, zValues [][]float64) (
		[]float64, []float64, float64) {

		values := make([]float64, len(zValues))
		for a := range zValues {
			values[a] = dot(nominalProbs, zValues[a])
		}

		if policy != nil {
			return policy, nominalProbs, dot(policy, values)
		}
		best := argmax(values)
		return onehot(len(values), best), nominalProbs, values[best]
	}
}
