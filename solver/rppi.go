package solver

import (
	"math"
	"time"

	"github.com/samuelfneumann/craam/bellman"
	"github.com/samuelfneumann/craam/mdp"
	"github.com/samuelfneumann/craam/nature"
)

// InnerSolver selects which plain-MDP solver RPPI uses for its DM
// improvement step.
type InnerSolver int

const (
	InnerVI InnerSolver = iota
	InnerMPI
	InnerPI
)

// RPPIOptions extends Options with RPPI's own parameters.
type RPPIOptions struct {
	Options
	Inner           InnerSolver
	InitialEpsilon  float64 // ε₀; 0 means 1.0
	InnerIterations int     // iteration cap passed to the inner solver; 0 means DefaultMaxIterations
}

func (o RPPIOptions) initialEpsilon() float64 {
	if o.InitialEpsilon > 0 {
		return o.InitialEpsilon
	}
	return 1.0
}

// RPPI runs Robust Partial Policy Iteration: it alternates a
// DM-improvement step (solving the current nature-fixed MDP, which
// still has every original action available, to precision εᵢ with the
// selected inner solver) and a nature step (recomputing nature's
// s,a-rectangular response against the latest value estimate for
// every action and materializing a new nature-fixed MDP from it),
// sharpening εᵢ₊₁ = min(εᵢ·γ², εtarget) each round. Unlike nested MPI,
// this geometric sharpening gives a converging error bound dominated
// by εᵢ/(1−γ).
func RPPI(m *mdp.MDP, natureFn nature.SANature, discount float64, opts RPPIOptions) (Solution, error) {
	start := time.Now()
	n := m.Size()

	v := make([]float64, n)
	policy := make([]int, n)
	current := m
	epsilon := opts.initialEpsilon()
	target := opts.maxResidual()
	maxOuter := opts.maxIterations()

	status := StatusIterationLimit
	outer := 0

	for ; outer < maxOuter; outer++ {
		if opts.Timeout > 0 && time.Since(start) > opts.Timeout {
			status = StatusTimeout
			break
		}

		innerOpts := Options{MaxResidual: epsilon, MaxIterations: opts.InnerIterations}
		var sol Solution
		var err error
		switch opts.Inner {
		case InnerPI:
			sol, err = PI(current, discount, innerOpts)
		case InnerMPI:
			factory := func(fixedPolicy []int) bellman.Backup { return bellman.Plain(current, fixedPolicy) }
			sol, err = MPI(factory, n, discount, MPIOptions{Options: innerOpts})
		default:
			sol, err = VI(bellman.Plain(current, nil), n, discount, innerOpts)
		}
		if err != nil {
			return Solution{}, err
		}
		v, policy = sol.Value, sol.Policy

		next, err := natureFixedMDP(m, natureFn, v, discount)
		if err != nil {
			return Solution{}, err
		}
		current = next

		epsilon = math.Min(epsilon*discount*discount, target)

		if err := opts.Checkpoint.Maybe(outer, Snapshot{
			Value: append([]float64(nil), v...), Policy: append([]int(nil), policy...),
			Iteration: outer, Residual: epsilon,
		}); err != nil {
			return Solution{}, err
		}
		if opts.Progress != nil && !opts.Progress(outer, epsilon) {
			status = StatusCancelled
			outer++
			break
		}
		if epsilon <= target {
			status = StatusOK
			outer++
			break
		}
	}

	return Solution{
		Value: v, Policy: policy, Residual: epsilon,
		Iterations: outer, Time: time.Since(start), Status: status,
	}, nil
}

// natureFixedMDP bakes nature's s,a-rectangular worst-case response
// into a concrete plain MDP that keeps every valid action of m, under
// its own original action id, with its nominal reward and its
// nature-reweighted transition probabilities — the "nature-fixed MDP"
// the DM improvement step solves each round. Baking every action
// (rather than only the current policy's action) is what lets the
// inner solver actually improve the DM policy from one outer round to
// the next; fixing a single action per state would collapse the inner
// solve to that one action forever.
func natureFixedMDP(m *mdp.MDP, natureFn nature.SANature, v []float64, discount float64) (*mdp.MDP, error) {
	n := m.Size()
	next := mdp.NewMDP(n)
	fixed := make([]int, n)

	for s := 0; s < n; s++ {
		st := m.State(s)
		if st.IsTerminal() {
			continue
		}
		actions := st.Actions()
		for aid := range actions {
			a := &actions[aid]
			if !a.Valid() {
				continue
			}
			fixed[s] = aid
			backup := bellman.SARobust(m, natureFn, fixed)
			res, err := backup(s, v, discount)
			if err != nil {
				return nil, err
			}
			t := a.Transition()
			idx := t.Indices()
			rewards := t.Rewards()
			natureP := res.NaturePolicy[aid]
			for k, j := range idx {
				if err := next.AddSample(s, aid, j, natureP[k], rewards[k], true); err != nil {
					return nil, err
				}
			}
		}
	}
	return next, nil
}
