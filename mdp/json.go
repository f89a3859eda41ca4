package mdp

import "encoding/json"

func marshalStates(states []JSONState) ([]byte, error) {
	return json.Marshal(states)
}

// The types below mirror the "Solution JSON" shape:
//
//	{stateid, actions:[{actionid, outcomes:[{outcomeid, stateids, probabilities, rewards}]}]}
//
// They are exported so that the solver package can build a JSON dump
// of a solved policy's realized transitions (one outcome per
// state/action, chosen by nature) without mdp having to know anything
// about Solutions.

// JSONOutcome is the JSON shape of a single outcome transition.
type JSONOutcome struct {
	OutcomeID     int       `json:"outcomeid"`
	StateIDs      []int     `json:"stateids"`
	Probabilities []float64 `json:"probabilities"`
	Rewards       []float64 `json:"rewards"`
}

// JSONAction is the JSON shape of a single action's outcomes.
type JSONAction struct {
	ActionID int           `json:"actionid"`
	Outcomes []JSONOutcome `json:"outcomes"`
}

// JSONState is the JSON shape of a single state's actions.
type JSONState struct {
	StateID int          `json:"stateid"`
	Actions []JSONAction `json:"actions"`
}

// TransitionJSON builds the JSONOutcome representation of t with the
// given outcome id (-1 if not applicable).
func TransitionJSON(t *Transition, outcomeID int) JSONOutcome {
	return JSONOutcome{
		OutcomeID:     outcomeID,
		StateIDs:      t.Indices(),
		Probabilities: t.Probabilities(),
		Rewards:       t.Rewards(),
	}
}

// StateJSON builds the JSONState representation of every valid
// action's transition in s, treating plain actions as a single
// outcome with id -1.
func StateJSON(s *State, stateID int) JSONState {
	js := JSONState{StateID: stateID}
	for aid := range s.actions {
		a := &s.actions[aid]
		if !a.Valid() {
			continue
		}
		js.Actions = append(js.Actions, JSONAction{
			ActionID: aid,
			Outcomes: []JSONOutcome{TransitionJSON(&a.transition, -1)},
		})
	}
	return js
}

// StateOJSON builds the JSONState representation of every valid
// action's outcomes in s.
func StateOJSON(s *StateO, stateID int) JSONState {
	js := JSONState{StateID: stateID}
	for aid := range s.actions {
		a := &s.actions[aid]
		if !a.Valid() {
			continue
		}
		ja := JSONAction{ActionID: aid}
		for oid := range a.outcomes {
			ja.Outcomes = append(ja.Outcomes, TransitionJSON(&a.outcomes[oid], oid))
		}
		js.Actions = append(js.Actions, ja)
	}
	return js
}

// MarshalJSON implements json.Marshaler, dumping every state's valid
// actions and their transitions in the Solution JSON shape.
func (m *MDP) MarshalJSON() ([]byte, error) {
	states := make([]JSONState, len(m.states))
	for i := range m.states {
		states[i] = StateJSON(&m.states[i], i)
	}
	return marshalStates(states)
}

// MarshalJSON implements json.Marshaler for MDPO.
func (m *MDPO) MarshalJSON() ([]byte, error) {
	states := make([]JSONState, len(m.states))
	for i := range m.states {
		states[i] = StateOJSON(&m.states[i], i)
	}
	return marshalStates(states)
}
