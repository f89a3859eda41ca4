package mdp

// MDP is an ordered sequence of States. Action ids are local to each
// state; target state ids refer to positions within the MDP.
type MDP struct {
	states []State
}

// NewMDP returns an MDP with n states, all initially terminal (no
// actions).
func NewMDP(n int) *MDP {
	return &MDP{states: make([]State, n)}
}

// Size returns the number of states.
func (m *MDP) Size() int { return len(m.states) }

// State returns a pointer to the state at id.
func (m *MDP) State(id int) *State { return &m.states[id] }

// States returns the MDP's states.
func (m *MDP) States() []State { return m.states }

// AddSample adds a single (stateFrom, action, stateTo, probability,
// reward) sample to the model, growing the state/action vectors as
// needed. This is the incremental construction primitive used by the
// CSV importer.
func (m *MDP) AddSample(stateFrom, action, stateTo int, probability, reward float64, force bool) error {
	if stateFrom < 0 || stateFrom >= len(m.states) {
		return newArgumentError("state id %d out of range [0,%d)", stateFrom, len(m.states))
	}
	a := m.states[stateFrom].CreateAction(action)
	return a.transition.AddSample(stateTo, probability, reward, force)
}

// Normalize normalizes every valid action's transition.
func (m *MDP) Normalize() error {
	for i := range m.states {
		if err := m.states[i].Normalize(); err != nil {
			return err
		}
	}
	return nil
}

// CheckModel verifies the global model invariants: every
// non-terminal state has at least one valid action, every valid
// action's transition normalizes to 1, and every target index lies
// within [0, |states|). It returns the first violation found as a
// *ModelError.
func (m *MDP) CheckModel() error {
	n := len(m.states)
	for sid := range m.states {
		st := &m.states[sid]
		if st.IsTerminal() {
			continue
		}
		sawValid := false
		for aid := range st.actions {
			a := &st.actions[aid]
			if !a.Valid() {
				continue
			}
			sawValid = true
			if !a.transition.IsNormalized() {
				return newModelError(sid, aid, -1,
					"action's transition probabilities sum to %v, not 1",
					a.transition.SumProbabilities())
			}
			if mx := a.transition.MaxIndex(); mx >= n {
				return newModelError(sid, aid, -1,
					"transition targets state %d, outside [0,%d)", mx, n)
			}
		}
		if !sawValid {
			// IsTerminal already reported this state as terminal; this
			// branch should be unreachable.
			return newModelError(sid, -1, -1, "state has no valid actions but is not terminal")
		}
	}
	return nil
}

// PackActions calls State.PackActions on every state. Not safe to
// call concurrently with a solve.
func (m *MDP) PackActions() [][]int {
	out := make([][]int, len(m.states))
	for i := range m.states {
		out[i] = m.states[i].PackActions()
	}
	return out
}

// MDPO is the MDPO analogue of MDP: an ordered sequence of StateOs,
// each action of which carries a set of outcome transitions instead
// of a single one.
type MDPO struct {
	states []StateO
}

// NewMDPO returns an MDPO with n states, all initially terminal.
func NewMDPO(n int) *MDPO {
	return &MDPO{states: make([]StateO, n)}
}

// Size returns the number of states.
func (m *MDPO) Size() int { return len(m.states) }

// State returns a pointer to the state at id.
func (m *MDPO) State(id int) *StateO { return &m.states[id] }

// States returns the MDPO's states.
func (m *MDPO) States() []StateO { return m.states }

// AddSample adds a single (stateFrom, action, outcome, stateTo,
// probability, reward) sample, growing the state/action/outcome
// vectors as needed. Outcomes must be added with contiguous 0-based
// ids.
func (m *MDPO) AddSample(stateFrom, action, outcome, stateTo int, probability, reward float64, force bool) error {
	if stateFrom < 0 || stateFrom >= len(m.states) {
		return newArgumentError("state id %d out of range [0,%d)", stateFrom, len(m.states))
	}
	a := m.states[stateFrom].CreateAction(action)
	if outcome >= len(a.outcomes) {
		grown := make([]Transition, outcome+1)
		copy(grown, a.outcomes)
		a.outcomes = grown
	}
	return a.outcomes[outcome].AddSample(stateTo, probability, reward, force)
}

// Normalize normalizes every valid action's outcome transitions.
func (m *MDPO) Normalize() error {
	for i := range m.states {
		if err := m.states[i].Normalize(); err != nil {
			return err
		}
	}
	return nil
}

// CheckModel verifies the same global invariants as MDP.CheckModel,
// applied to every outcome of every valid action.
func (m *MDPO) CheckModel() error {
	n := len(m.states)
	for sid := range m.states {
		st := &m.states[sid]
		if st.IsTerminal() {
			continue
		}
		for aid := range st.actions {
			a := &st.actions[aid]
			if !a.Valid() {
				continue
			}
			for oid := range a.outcomes {
				o := &a.outcomes[oid]
				if o.Empty() {
					continue
				}
				if !o.IsNormalized() {
					return newModelError(sid, aid, oid,
						"outcome transition probabilities sum to %v, not 1",
						o.SumProbabilities())
				}
				if mx := o.MaxIndex(); mx >= n {
					return newModelError(sid, aid, oid,
						"transition targets state %d, outside [0,%d)", mx, n)
				}
			}
		}
	}
	return nil
}

// PackActions calls StateO.PackActions on every state.
func (m *MDPO) PackActions() [][]int {
	out := make([][]int, len(m.states))
	for i := range m.states {
		out[i] = m.states[i].PackActions()
	}
	return out
}

// AddUncertainty converts a plain MDP into an MDPO by turning each
// action's single transition into a single-outcome OutcomeAction with
// nominal weight 1, following the original craam/modeltools.hpp
// add_uncertainty helper. It is useful for exercising MDPO-shaped
// solvers and the soft-robust QP on a plain MDP fixture.
func AddUncertainty(m *MDP) *MDPO {
	out := NewMDPO(m.Size())
	for sid := range m.states {
		src := &m.states[sid]
		dst := &out.states[sid]
		for aid := range src.actions {
			a := src.actions[aid]
			oa := dst.CreateAction(aid)
			oa.outcomes = []Transition{a.transition}
			oa.weights = []float64{1.0}
		}
	}
	return out
}
