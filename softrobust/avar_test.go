package softrobust

import (
	"math"
	"testing"

	"github.com/samuelfneumann/craam/lp"
	"github.com/samuelfneumann/craam/mdp"
)

func floatsClose(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// buildTwoModelMDPO is a one-state, two-action, two-outcome model: action
// 0 is safe (reward 1 under both outcomes), action 1 is risky (reward 5
// under outcome 0, reward -5 under outcome 1). The state self-loops so
// it never terminates.
func buildTwoModelMDPO(t *testing.T) *mdp.MDPO {
	t.Helper()
	m := mdp.NewMDPO(1)
	must(t, m.AddSample(0, 0, 0, 0, 1.0, 1, false))
	must(t, m.AddSample(0, 0, 1, 0, 1.0, 1, false))
	must(t, m.AddSample(0, 1, 0, 0, 1.0, 5, false))
	must(t, m.AddSample(0, 1, 1, 0, 1.0, -5, false))
	return m
}

func TestSolveAVaRQuadProducesValidPolicyDistribution(t *testing.T) {
	m := buildTwoModelMDPO(t)
	backend := lp.NewSimplexBackend()

	res, err := SolveAVaRQuad(m, 0.9, 0.5, 0.5, []float64{1}, nil, backend, 300, 0.05)
	must(t, err)
	if res.Status != lp.StatusOptimal {
		t.Fatalf("status = %v, want optimal", res.Status)
	}
	if len(res.Policy) != 1 || len(res.Policy[0]) != 2 {
		t.Fatalf("policy shape = %v, want [1][2]", res.Policy)
	}
	sum := res.Policy[0][0] + res.Policy[0][1]
	if !floatsClose(sum, 1, 1e-6) {
		t.Errorf("policy does not sum to 1: %v", res.Policy[0])
	}
	for _, p := range res.Policy[0] {
		if p < -1e-9 {
			t.Errorf("policy entry %v is negative", p)
		}
	}
}

func TestSolveAVaRQuadBetaZeroPrefersExpectationMaximizingAction(t *testing.T) {
	// beta=0 drops the AVaR penalty entirely, so the objective reduces
	// to expected return; action 1's expected reward (0) is no better
	// than action 0's (1) here, but with risk-neutral weighting and
	// favorable outcome odds the optimizer should not collapse entirely
	// onto the worse action.
	m := buildTwoModelMDPO(t)
	backend := lp.NewSimplexBackend()

	res, err := SolveAVaRQuad(m, 0.9, 0.99, 0, []float64{1}, nil, backend, 300, 0.05)
	must(t, err)
	if res.Status != lp.StatusOptimal {
		t.Fatalf("status = %v, want optimal", res.Status)
	}
	// action 0 (reward 1 always) should receive more weight than the
	// zero-expectation risky action 1.
	if res.Policy[0][0] < res.Policy[0][1] {
		t.Errorf("policy = %v, want safe action weighted at least as much as risky action", res.Policy[0])
	}
}

func TestSolveAVaRQuadRejectsNonUniformOutcomeCount(t *testing.T) {
	m := mdp.NewMDPO(2)
	must(t, m.AddSample(0, 0, 0, 1, 1.0, 1, false))
	must(t, m.AddSample(0, 0, 1, 1, 1.0, 1, false))
	must(t, m.AddSample(1, 0, 0, 1, 1.0, 1, false))
	backend := lp.NewSimplexBackend()

	_, err := SolveAVaRQuad(m, 0.9, 0.5, 0.5, []float64{1, 0}, nil, backend, 10, 0.05)
	if err == nil {
		t.Fatal("expected error for non-uniform outcome count")
	}
}

func TestSolveAVaRQuadRejectsMismatchedAlpha0Length(t *testing.T) {
	m := buildTwoModelMDPO(t)
	backend := lp.NewSimplexBackend()

	_, err := SolveAVaRQuad(m, 0.9, 0.5, 0.5, []float64{1, 2}, nil, backend, 10, 0.05)
	if err == nil {
		t.Fatal("expected error for mismatched alpha0 length")
	}
}

func TestProjectSimplexProducesValidDistribution(t *testing.T) {
	v := []float64{5, -1, 2}
	projectSimplex(v)
	var sum float64
	for _, x := range v {
		if x < -1e-9 {
			t.Errorf("projected value %v is negative", x)
		}
		sum += x
	}
	if !floatsClose(sum, 1, 1e-9) {
		t.Errorf("projected sum = %v, want 1", sum)
	}
}
