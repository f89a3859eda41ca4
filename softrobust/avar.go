// Package softrobust implements the soft-robust static-uncertainty QP
// (srsolve_avar_quad): a randomized stationary policy and a
// per-model occupancy are chosen jointly to trade off expected return
// against an AVaR-weighted tail penalty across a finite set of
// candidate models (an MDPO's outcomes).
package softrobust

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/craam/internal/floatutils"
	"github.com/samuelfneumann/craam/lp"
	"github.com/samuelfneumann/craam/mdp"
	"github.com/samuelfneumann/craam/occupancy"
)

// Result is the outcome of SolveAVaRQuad.
type Result struct {
	Policy    [][]float64 // Policy[s][a] = π(a|s)
	Occupancy [][]float64 // Occupancy[s][ω] = d(s,ω)
	Z         float64
	Y         []float64
	Objective float64
	Status    lp.Status
}

// SolveAVaRQuad solves the soft-robust AVaR program,
// grounded on the original craam/algorithms/soft_robust.hpp
// srsolve_avar_quad — including the y(ω) and d(s,ω) constraints the
// original leaves commented out (a faithful reimplementation needs a
// reimplementation to include them).
//
// alpha is the AVaR risk level, clamped to [1e-5, 1]; beta trades
// expectation against the AVaR tail penalty and discount is the MDP's
// discount factor, both clamped to [0,1]; alpha0 is the initial state
// distribution; f is the per-outcome prior weight (defaults to
// uniform when nil). The bilinear d·π coupling is handed to the given
// QP backend as a sequence of blockwise gradient-ascent-and-project
// steps, alternating an exact re-solve of d (a linear occupancy system
// given the current π) with a policy gradient step — a standard
// heuristic for bilinear programs, not a global-optimality guarantee.
func SolveAVaRQuad(m *mdp.MDPO, discount, alpha, beta float64, alpha0, f []float64,
	backend lp.Backend, iterations int, stepSize float64) (Result, error) {

	n := m.Size()
	if len(alpha0) != n {
		return Result{}, fmt.Errorf("softrobust: len(alpha0)=%d does not match state count %d", len(alpha0), n)
	}
	alpha = floatutils.Clip(alpha, 1e-5, 1.0)
	beta = floatutils.Clip(beta, 0, 1.0)
	discount = floatutils.Clip(discount, 0, 1.0)

	outcomeCount, err := uniformOutcomeCount(m)
	if err != nil {
		return Result{}, err
	}
	if outcomeCount == 0 {
		return Result{}, fmt.Errorf("softrobust: model has no outcomes")
	}
	if f == nil {
		f = make([]float64, outcomeCount)
		for i := range f {
			f[i] = 1.0 / float64(outcomeCount)
		}
	}
	if len(f) != outcomeCount {
		return Result{}, fmt.Errorf("softrobust: len(f)=%d does not match outcome count %d", len(f), outcomeCount)
	}

	outcomeMDPs, rewards, err := splitOutcomes(m, outcomeCount)
	if err != nil {
		return Result{}, err
	}

	actionCounts := make([]int, n)
	offsets := make([]int, n)
	piLen := 0
	for s := 0; s < n; s++ {
		actionCounts[s] = m.State(s).Size()
		offsets[s] = piLen
		piLen += actionCounts[s]
	}
	zIdx := piLen
	yStart := piLen + 1
	total := piLen + 1 + outcomeCount

	decodePolicy := func(x []float64) [][]float64 {
		pol := make([][]float64, n)
		for s := 0; s < n; s++ {
			pol[s] = append([]float64(nil), x[offsets[s]:offsets[s]+actionCounts[s]]...)
		}
		return pol
	}
	decodeY := func(x []float64) []float64 {
		return append([]float64(nil), x[yStart:yStart+outcomeCount]...)
	}

	solveOccupancy := func(pol [][]float64) ([][]float64, error) {
		d := make([][]float64, n)
		for s := range d {
			d[s] = make([]float64, outcomeCount)
		}
		for w := 0; w < outcomeCount; w++ {
			scaledAlpha0 := make([]float64, n)
			for s := range scaledAlpha0 {
				scaledAlpha0[s] = f[w] * alpha0[s]
			}
			u, err := occupancy.OccFreq(outcomeMDPs[w], scaledAlpha0, discount, pol)
			if err != nil {
				return nil, err
			}
			for s := 0; s < n; s++ {
				d[s][w] = u[s]
			}
		}
		return d, nil
	}

	expectedReturn := func(pol, d [][]float64) []float64 {
		// perOutcome[ω] = Σ_{s,a} d(s,ω)π(s,a)R^ω(s,a)
		perOutcome := make([]float64, outcomeCount)
		for s := 0; s < n; s++ {
			for a := 0; a < actionCounts[s]; a++ {
				for w := 0; w < outcomeCount; w++ {
					perOutcome[w] += d[s][w] * pol[s][a] * rewards[w][s][a]
				}
			}
		}
		return perOutcome
	}

	evaluate := func(x []float64) float64 {
		pol := decodePolicy(x)
		z := x[zIdx]
		y := decodeY(x)
		d, err := solveOccupancy(pol)
		if err != nil {
			return math.NaN()
		}
		perOutcome := expectedReturn(pol, d)
		total := z
		for w := 0; w < outcomeCount; w++ {
			total += (1 - beta) * perOutcome[w]
			total -= (beta / (1 - alpha)) * y[w]
		}
		return total
	}

	gradient := func(x []float64) []float64 {
		pol := decodePolicy(x)
		d, err := solveOccupancy(pol)
		if err != nil {
			return make([]float64, len(x))
		}
		g := make([]float64, len(x))
		g[zIdx] = 1
		for w := 0; w < outcomeCount; w++ {
			g[yStart+w] = -beta / (1 - alpha)
		}
		for s := 0; s < n; s++ {
			for a := 0; a < actionCounts[s]; a++ {
				var partial float64
				for w := 0; w < outcomeCount; w++ {
					partial += (1 - beta) * d[s][w] * rewards[w][s][a]
				}
				g[offsets[s]+a] = partial
			}
		}
		return g
	}

	project := func(x []float64) []float64 {
		out := append([]float64(nil), x...)
		for s := 0; s < n; s++ {
			projectSimplex(out[offsets[s] : offsets[s]+actionCounts[s]])
		}
		pol := decodePolicy(out)
		d, err := solveOccupancy(pol)
		if err != nil {
			return out
		}
		perOutcome := expectedReturn(pol, d)
		z := out[zIdx]
		for w := 0; w < outcomeCount; w++ {
			bound := z - perOutcome[w]
			if out[yStart+w] < bound {
				out[yStart+w] = bound
			}
		}
		return out
	}

	x0 := make([]float64, total)
	for s := 0; s < n; s++ {
		uniform := 1.0 / float64(actionCounts[s])
		for a := 0; a < actionCounts[s]; a++ {
			x0[offsets[s]+a] = uniform
		}
	}
	x0 = project(x0)

	res, err := backend.SolveQP(lp.QPObjective{
		Evaluate: evaluate,
		Gradient: gradient,
		Project:  project,
		X0:       x0,
	}, iterations, stepSize)
	if err != nil {
		return Result{}, err
	}
	if res.Status != lp.StatusOptimal {
		return Result{Status: res.Status}, nil
	}

	pol := decodePolicy(res.X)
	d, err := solveOccupancy(pol)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Policy:    pol,
		Occupancy: d,
		Z:         res.X[zIdx],
		Y:         decodeY(res.X),
		Objective: res.Objective,
		Status:    res.Status,
	}, nil
}

// projectSimplex projects v onto the probability simplex in place
// (Euclidean projection), used to keep π(·|s) a valid distribution
// after each gradient step.
func projectSimplex(v []float64) {
	n := len(v)
	if n == 0 {
		return
	}
	u := append([]float64(nil), v...)
	sortDescending(u)
	var cumsum float64
	rho := -1
	for i := 0; i < n; i++ {
		cumsum += u[i]
		t := (cumsum - 1) / float64(i+1)
		if u[i]-t > 0 {
			rho = i
		}
	}
	cumsum = 0
	for i := 0; i <= rho; i++ {
		cumsum += u[i]
	}
	theta := (cumsum - 1) / float64(rho+1)
	for i := range v {
		val := v[i] - theta
		if val < 0 {
			val = 0
		}
		v[i] = val
	}
}

func sortDescending(v []float64) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j] > v[j-1]; j-- {
			v[j], v[j-1] = v[j-1], v[j]
		}
	}
}

func uniformOutcomeCount(m *mdp.MDPO) (int, error) {
	count := -1
	for s := 0; s < m.Size(); s++ {
		st := m.State(s)
		for a := range st.Actions() {
			oc := st.Action(a).OutcomeCount()
			if oc == 0 {
				continue
			}
			if count == -1 {
				count = oc
			} else if count != oc {
				return 0, fmt.Errorf(
					"softrobust: outcome count is not uniform: state %d action %d has %d, want %d",
					s, a, oc, count)
			}
		}
	}
	if count == -1 {
		return 0, nil
	}
	return count, nil
}

// splitOutcomes builds, for each outcome ω, a plain *mdp.MDP whose
// transitions are m's ω'th outcome at every state-action — and the
// parallel reward table rewards[ω][s][a] used by the objective and
// gradient.
func splitOutcomes(m *mdp.MDPO, outcomeCount int) ([]*mdp.MDP, [][][]float64, error) {
	n := m.Size()
	outcomeMDPs := make([]*mdp.MDP, outcomeCount)
	rewards := make([][][]float64, outcomeCount)
	for w := 0; w < outcomeCount; w++ {
		outcomeMDPs[w] = mdp.NewMDP(n)
		rewards[w] = make([][]float64, n)
	}

	for s := 0; s < n; s++ {
		st := m.State(s)
		actions := st.Actions()
		for w := 0; w < outcomeCount; w++ {
			rewards[w][s] = make([]float64, len(actions))
			// Grow every outcome MDP's state to the same action count as
			// m, even when trailing actions are invalid, so a decoded
			// flat policy vector always lines up with State.Actions().
			if len(actions) > 0 {
				outcomeMDPs[w].State(s).CreateAction(len(actions) - 1)
			}
		}
		for aid := range actions {
			a := &actions[aid]
			if !a.Valid() {
				continue
			}
			if a.OutcomeCount() != outcomeCount {
				return nil, nil, fmt.Errorf(
					"softrobust: state %d action %d has %d outcomes, want %d", s, aid, a.OutcomeCount(), outcomeCount)
			}
			for w := 0; w < outcomeCount; w++ {
				t := a.Outcome(w)
				meanR, err := t.MeanReward()
				if err != nil {
					return nil, nil, err
				}
				rewards[w][s][aid] = meanR
				idx := t.Indices()
				probs := t.Probabilities()
				for k, j := range idx {
					if err := outcomeMDPs[w].AddSample(s, aid, j, probs[k], meanR, true); err != nil {
						return nil, nil, err
					}
				}
			}
		}
	}
	return outcomeMDPs, rewards, nil
}
