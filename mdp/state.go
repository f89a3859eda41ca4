package mdp

// State owns an ordered sequence of Actions, indexed 0..n-1 (an
// SAState specialized to a plain or sa-rectangular MDP). A state
// with no valid action is terminal and its value is fixed at 0.
type State struct {
	actions []Action
}

// Size returns the number of actions (including invalid ones).
func (s *State) Size() int { return len(s.actions) }

// CreateAction extends the action vector up to index actionID
// inclusive with invalid (empty) slots if needed, and returns a
// pointer to the action at actionID.
func (s *State) CreateAction(actionID int) *Action {
	if actionID >= len(s.actions) {
		grown := make([]Action, actionID+1)
		copy(grown, s.actions)
		s.actions = grown
	}
	return &s.actions[actionID]
}

// Action returns a pointer to the existing action at actionID.
func (s *State) Action(actionID int) *Action {
	return &s.actions[actionID]
}

// Actions returns the state's actions.
func (s *State) Actions() []Action { return s.actions }

// IsTerminal reports whether the state has no valid actions.
func (s *State) IsTerminal() bool {
	for i := range s.actions {
		if s.actions[i].Valid() {
			return false
		}
	}
	return true
}

// IsActionCorrect reports whether actionID names an existing action.
func (s *State) IsActionCorrect(actionID int) bool {
	return actionID >= 0 && actionID < len(s.actions)
}

// Normalize normalizes every action's transition.
func (s *State) Normalize() error {
	for i := range s.actions {
		if err := s.actions[i].Normalize(); err != nil {
			return err
		}
	}
	return nil
}

// PackActions removes invalid actions, reindexing the remaining ones,
// and returns the list of original action ids that were kept. This is
// not safe to call concurrently with a solve, matching the original
// implementation's documented restriction.
func (s *State) PackActions() []int {
	var original []int
	var kept []Action
	for id := range s.actions {
		if s.actions[id].Valid() {
			kept = append(kept, s.actions[id])
			original = append(original, id)
		}
	}
	s.actions = kept
	return original
}

// StateO is the MDPO analogue of State: it owns an ordered sequence of
// OutcomeActions.
type StateO struct {
	actions []OutcomeAction
}

// Size returns the number of actions.
func (s *StateO) Size() int { return len(s.actions) }

// CreateAction extends the action vector up to index actionID
// inclusive with invalid (no-outcome) slots if needed, and returns a
// pointer to the action at actionID.
func (s *StateO) CreateAction(actionID int) *OutcomeAction {
	if actionID >= len(s.actions) {
		grown := make([]OutcomeAction, actionID+1)
		copy(grown, s.actions)
		s.actions = grown
	}
	return &s.actions[actionID]
}

// Action returns a pointer to the existing action at actionID.
func (s *StateO) Action(actionID int) *OutcomeAction {
	return &s.actions[actionID]
}

// Actions returns the state's actions.
func (s *StateO) Actions() []OutcomeAction { return s.actions }

// IsTerminal reports whether the state has no valid actions.
func (s *StateO) IsTerminal() bool {
	for i := range s.actions {
		if s.actions[i].Valid() {
			return false
		}
	}
	return true
}

// IsActionCorrect reports whether actionID names an existing action.
func (s *StateO) IsActionCorrect(actionID int) bool {
	return actionID >= 0 && actionID < len(s.actions)
}

// Normalize normalizes every action's outcome transitions.
func (s *StateO) Normalize() error {
	for i := range s.actions {
		if err := s.actions[i].Normalize(); err != nil {
			return err
		}
	}
	return nil
}

// PackActions removes invalid actions, reindexing the remaining ones,
// and returns the list of original action ids that were kept.
func (s *StateO) PackActions() []int {
	var original []int
	var kept []OutcomeAction
	for id := range s.actions {
		if s.actions[id].Valid() {
			kept = append(kept, s.actions[id])
			original = append(original, id)
		}
	}
	s.actions = kept
	return original
}
