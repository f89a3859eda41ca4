package mdp

import (
	"encoding/json"
	"testing"
)

func TestMDPMarshalJSONShape(t *testing.T) {
	m := buildThreeStateChain(t)
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}

	var states []JSONState
	if err := json.Unmarshal(data, &states); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if len(states) != 3 {
		t.Fatalf("len(states) = %d, want 3", len(states))
	}
	if len(states[0].Actions) != 1 {
		t.Fatalf("len(states[0].Actions) = %d, want 1", len(states[0].Actions))
	}
	outcomes := states[0].Actions[0].Outcomes
	if len(outcomes) != 1 || outcomes[0].OutcomeID != -1 {
		t.Errorf("plain-action outcome id = %+v, want single outcome with id -1", outcomes)
	}
	if len(states[2].Actions) != 0 {
		t.Errorf("terminal state should have no actions, got %d", len(states[2].Actions))
	}
}

func TestMDPOMarshalJSONShape(t *testing.T) {
	m := buildThreeStateChain(t)
	mo := AddUncertainty(m)

	data, err := json.Marshal(mo)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	var states []JSONState
	if err := json.Unmarshal(data, &states); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	outcomes := states[0].Actions[0].Outcomes
	if len(outcomes) != 1 || outcomes[0].OutcomeID != 0 {
		t.Errorf("single-outcome action outcome id = %+v, want id 0", outcomes)
	}
}
