package nature

// L1Worst returns the s,a-rectangular worst-case nature response over
// an L1 ball of the given radius around the nominal distribution
// it solves
//
//	min p·z  subject to  ‖p − nominalProb‖₁ ≤ radius, p ∈ Δ
//
// in closed form by sorting z ascending and greedily shifting mass
// from the highest-z atoms to the single lowest-z atom, up to a
// budget of radius/2 (moving mass ε between two atoms costs 2ε of L1
// distance, hence the half-budget).
func L1Worst(radius float64) SANature {
	return func(stateID, actionID int, nominalProb, zValues []float64) ([]float64, float64) {
		n := len(nominalProb)
		p := append([]float64(nil), nominalProb...)
		if n <= 1 {
			return p, dot(p, zValues)
		}

		order := argsortAscending(zValues)
		lowest := order[0]
		budget := radius / 2

		for k := n - 1; k >= 1 && budget > 1e-12; k-- {
			idx := order[k]
			take := p[idx]
			if take > budget {
				take = budget
			}
			p[idx] -= take
			p[lowest] += take
			budget -= take
		}

		return p, dot(p, zValues)
	}
}
