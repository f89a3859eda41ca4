package nature

import "github.com/samuelfneumann/craam/internal/floatutils"

// AVaR returns the s,a-rectangular Average Value at Risk nature
// response at level alpha: it solves
//
//	min E_p[z]  subject to  p ≤ nominalProb/alpha, Σp = 1, p ≥ 0
//
// by reordering atoms by ascending z and greedily capping each atom's
// probability at nominalProb[i]/alpha until the full unit mass has
// been placed, concentrating as much mass as the cap allows on the
// worst (lowest-z) atoms first. alpha is clamped to (0,1] so that the
// per-atom cap is always finite.
func AVaR(alpha float64) SANature {
	alpha = floatutils.Clip(alpha, 1e-9, 1.0)

	return func(stateID, actionID int, nominalProb, zValues []float64) ([]float64, float64) {
		n := len(nominalProb)
		p := make([]float64, n)
		order := argsortAscending(zValues)

		remaining := 1.0
		for _, idx := range order {
			if remaining <= 1e-12 {
				break
			}
			cap := nominalProb[idx] / alpha
			take := cap
			if take > remaining {
				take = remaining
			}
			p[idx] = take
			remaining -= take
		}

		return p, dot(p, zValues)
	}
}
