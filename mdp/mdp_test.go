package mdp

import (
	"strings"
	"testing"
)

// buildThreeStateChain builds a 3-state chain shared by the mdp
// package tests: state 0 and 1 each have a single
// action moving to the next state with reward 1, state 2 is terminal.
func buildThreeStateChain(t *testing.T) *MDP {
	t.Helper()
	m := NewMDP(3)
	must(t, m.AddSample(0, 0, 1, 1.0, 1.0, false))
	must(t, m.AddSample(1, 0, 2, 1.0, 1.0, false))
	return m
}

func TestCheckModelAcceptsValidChain(t *testing.T) {
	m := buildThreeStateChain(t)
	if err := m.CheckModel(); err != nil {
		t.Fatalf("CheckModel: %v", err)
	}
	if !m.State(2).IsTerminal() {
		t.Error("state 2 should be terminal (no actions)")
	}
}

func TestCheckModelDetectsUnnormalizedAction(t *testing.T) {
	m := NewMDP(2)
	must(t, m.AddSample(0, 0, 1, 0.4, 0, true)) // forced, sums to 0.4
	err := m.CheckModel()
	if err == nil {
		t.Fatal("expected CheckModel to reject an unnormalized action")
	}
	if _, ok := err.(*ModelError); !ok {
		t.Errorf("expected *ModelError, got %T", err)
	}
}

func TestCheckModelDetectsOutOfRangeTarget(t *testing.T) {
	m := NewMDP(2)
	must(t, m.AddSample(0, 0, 5, 1.0, 0, false))
	if err := m.CheckModel(); err == nil {
		t.Fatal("expected CheckModel to reject an out-of-range target")
	}
}

func TestAddUncertaintyProducesSingleOutcomeNominalOne(t *testing.T) {
	m := buildThreeStateChain(t)
	mo := AddUncertainty(m)

	if mo.Size() != m.Size() {
		t.Fatalf("AddUncertainty size = %d, want %d", mo.Size(), m.Size())
	}
	a := mo.State(0).Action(0)
	if a.OutcomeCount() != 1 {
		t.Fatalf("OutcomeCount() = %d, want 1", a.OutcomeCount())
	}
	w := a.Weights()
	if len(w) != 1 || !floatsClose(w[0], 1.0, EqualityEpsilon) {
		t.Errorf("Weights() = %v, want [1.0]", w)
	}
	if err := mo.CheckModel(); err != nil {
		t.Errorf("CheckModel on AddUncertainty result: %v", err)
	}
}

func TestPackActionsReindexesAndReportsOriginalIDs(t *testing.T) {
	m := NewMDP(2)
	m.State(0).CreateAction(3) // grows to actions 0..3, only 3 valid
	must(t, m.AddSample(0, 3, 1, 1.0, 0, false))

	kept := m.PackActions()
	if got, want := kept[0], []int{3}; !intSliceEqual(got, want) {
		t.Errorf("PackActions()[0] = %v, want %v", got, want)
	}
	if m.State(0).Size() != 1 {
		t.Errorf("state 0 should have exactly 1 action after packing, got %d", m.State(0).Size())
	}
}

func TestFromCSVAndToCSVRoundTrip(t *testing.T) {
	input := "idstatefrom,idaction,idstateto,probability,reward\n" +
		"0,0,1,0.5,1\n" +
		"0,0,2,0.5,2\n" +
		"1,0,2,1,0\n"

	m, err := FromCSV(strings.NewReader(input), false)
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}
	if m.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", m.Size())
	}
	if err := m.CheckModel(); err != nil {
		t.Fatalf("CheckModel: %v", err)
	}

	var sb strings.Builder
	if err := m.ToCSV(&sb, false); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	m2, err := FromCSV(strings.NewReader(sb.String()), false)
	if err != nil {
		t.Fatalf("FromCSV on round-trip output: %v", err)
	}
	if err := m2.CheckModel(); err != nil {
		t.Fatalf("CheckModel on round-tripped model: %v", err)
	}
	if m2.Size() != m.Size() {
		t.Errorf("round-tripped Size() = %d, want %d", m2.Size(), m.Size())
	}
}

func TestFromCSVRejectsBadHeader(t *testing.T) {
	input := "wrong,header\n0,0\n"
	if _, err := FromCSV(strings.NewReader(input), false); err == nil {
		t.Error("expected error for mismatched CSV header")
	}
}

func TestFromCSVODetectsNonContiguousOutcomes(t *testing.T) {
	input := "idstatefrom,idaction,idoutcome,idstateto,probability,reward\n" +
		"0,0,0,1,1.0,0\n" +
		"0,0,2,1,1.0,0\n" // outcome 1 missing

	if _, err := FromCSVO(strings.NewReader(input), false); err == nil {
		t.Error("expected error for non-contiguous outcome ids")
	}
}

func TestFromCSVOAcceptsContiguousOutcomes(t *testing.T) {
	input := "idstatefrom,idaction,idoutcome,idstateto,probability,reward\n" +
		"0,0,0,1,1.0,1\n" +
		"0,0,1,1,1.0,2\n"

	mo, err := FromCSVO(strings.NewReader(input), false)
	if err != nil {
		t.Fatalf("FromCSVO: %v", err)
	}
	a := mo.State(0).Action(0)
	if a.OutcomeCount() != 2 {
		t.Errorf("OutcomeCount() = %d, want 2", a.OutcomeCount())
	}
}
