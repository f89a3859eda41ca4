package mdp

// Action owns exactly one Transition. An action is valid iff its
// transition has at least one target; a state with no valid actions
// is terminal.
type Action struct {
	transition Transition
}

// NewAction returns an Action wrapping the given transition.
func NewAction(t Transition) Action {
	return Action{transition: t}
}

// Transition returns a pointer to the action's transition. The
// pointer aliases the Action's internal state; callers must not
// mutate it concurrently with a solve.
func (a *Action) Transition() *Transition {
	return &a.transition
}

// Valid reports whether the action has at least one transition
// target.
func (a *Action) Valid() bool {
	return !a.transition.Empty()
}

// Normalize normalizes the action's transition probabilities. No-op
// on an empty (invalid) action.
func (a *Action) Normalize() error {
	if a.transition.Empty() {
		return nil
	}
	return a.transition.Normalize()
}

// MeanTransition returns the action's transition: for a plain Action
// this is simply its one transition, included so that Action and
// OutcomeAction satisfy the same accessor shape used by State.
func (a *Action) MeanTransition() *Transition {
	return &a.transition
}

// OutcomeAction owns an ordered sequence of outcome Transitions plus
// an optional nominal distribution d over outcomes, used by MDPO to
// model parametric model uncertainty.
type OutcomeAction struct {
	outcomes []Transition
	weights  []float64 // nominal distribution d over outcomes; may be empty
}

// NewOutcomeAction returns an OutcomeAction over the given outcome
// transitions with no nominal distribution set (Weights returns nil
// until SetWeights is called).
func NewOutcomeAction(outcomes []Transition) OutcomeAction {
	return OutcomeAction{outcomes: outcomes}
}

// SetWeights sets the nominal distribution d over outcomes. It must
// have one entry per outcome, be non-negative, and sum to one within
// NormalizeTolerance.
func (a *OutcomeAction) SetWeights(d []float64) error {
	if len(d) != len(a.outcomes) {
		return newArgumentError("outcome weights has length %d, want %d (one per outcome)",
			len(d), len(a.outcomes))
	}
	sum := 0.0
	for _, w := range d {
		if w < 0 {
			return newArgumentError("outcome weight must be non-negative, got %v", w)
		}
		sum += w
	}
	if len(d) > 0 && abs(1.0-sum) >= NormalizeTolerance {
		return newArgumentError("outcome weights must sum to 1, got %v", sum)
	}
	a.weights = append([]float64(nil), d...)
	return nil
}

// Weights returns the nominal distribution over outcomes, or nil if
// none was set.
func (a *OutcomeAction) Weights() []float64 {
	if a.weights == nil {
		return nil
	}
	out := make([]float64, len(a.weights))
	copy(out, a.weights)
	return out
}

// OutcomeCount returns the number of outcomes.
func (a *OutcomeAction) OutcomeCount() int { return len(a.outcomes) }

// Outcome returns a pointer to the transition for outcome id.
func (a *OutcomeAction) Outcome(id int) *Transition {
	return &a.outcomes[id]
}

// Outcomes returns the action's outcome transitions.
func (a *OutcomeAction) Outcomes() []Transition {
	return a.outcomes
}

// Valid reports whether the action has at least one non-empty
// outcome.
func (a *OutcomeAction) Valid() bool {
	for i := range a.outcomes {
		if !a.outcomes[i].Empty() {
			return true
		}
	}
	return false
}

// Normalize normalizes every outcome's transition probabilities.
func (a *OutcomeAction) Normalize() error {
	for i := range a.outcomes {
		if a.outcomes[i].Empty() {
			continue
		}
		if err := a.outcomes[i].Normalize(); err != nil {
			return err
		}
	}
	return nil
}

// MeanTransition returns the probability-weighted mixture of the
// action's outcome transitions under nataction (nature's chosen
// distribution over outcomes, or the nominal weights if nataction is
// nil).
func (a *OutcomeAction) MeanTransition(nataction []float64) (Transition, error) {
	if nataction == nil {
		nataction = a.weights
	}
	if len(nataction) != len(a.outcomes) {
		return Transition{}, newArgumentError(
			"mean_transition: distribution has length %d, want %d", len(nataction), len(a.outcomes))
	}
	var mean Transition
	for i := range a.outcomes {
		if nataction[i] == 0 {
			continue
		}
		mean.ProbabilitiesAdd(nataction[i], &a.outcomes[i])
	}
	return mean, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
