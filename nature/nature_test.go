package nature

import (
	"math"
	"testing"
)

func floatsClose(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func TestAverageReturnsNominalAndExpectedValue(t *testing.T) {
	n := Average()
	p, v := n(0, 0, []float64{0.5, 0.5}, []float64{10, 20})
	if !floatsClose(p[0], 0.5, 1e-9) || !floatsClose(p[1], 0.5, 1e-9) {
		t.Errorf("Average should not perturb the nominal distribution, got %v", p)
	}
	if !floatsClose(v, 15, 1e-9) {
		t.Errorf("Average value = %v, want 15", v)
	}
}

// TestL1WorstMatchesWorkedExample checks a worked example: an
// L1 ball of radius 0.5 should shift up to 0.25 probability mass to
// the worst (lowest-z) successor.
func TestL1WorstMatchesWorkedExample(t *testing.T) {
	n := L1Worst(0.5)
	nominal := []float64{0.5, 0.5}
	z := []float64{10, 0} // index 1 is the worst (lowest-z) successor

	p, v := n(0, 0, nominal, z)
	if !floatsClose(p[1], 0.75, 1e-9) {
		t.Errorf("worst-successor probability = %v, want 0.75 (0.5 nominal + 0.25 budget)", p[1])
	}
	if !floatsClose(p[0], 0.25, 1e-9) {
		t.Errorf("best-successor probability = %v, want 0.25", p[0])
	}
	wantV := 0.25*10 + 0.75*0
	if !floatsClose(v, wantV, 1e-9) {
		t.Errorf("value = %v, want %v", v, wantV)
	}
	sum := p[0] + p[1]
	if !floatsClose(sum, 1, 1e-9) {
		t.Errorf("perturbed distribution should still sum to 1, got %v", sum)
	}
}

func TestL1WorstZeroRadiusIsIdentity(t *testing.T) {
	n := L1Worst(0)
	nominal := []float64{0.2, 0.3, 0.5}
	p, _ := n(0, 0, nominal, []float64{3, 1, 2})
	for i := range nominal {
		if !floatsClose(p[i], nominal[i], 1e-9) {
			t.Errorf("p[%d] = %v, want nominal %v with zero radius", i, p[i], nominal[i])
		}
	}
}

func TestL1WorstCannotExceedSourceMass(t *testing.T) {
	// A huge radius should still leave a valid distribution: all mass
	// collapses onto the single worst atom.
	n := L1Worst(10)
	nominal := []float64{0.2, 0.3, 0.5}
	z := []float64{5, 1, 9} // index 1 is worst
	p, _ := n(0, 0, nominal, z)

	sum := 0.0
	for _, pi := range p {
		if pi < -1e-9 {
			t.Fatalf("probability went negative: %v", p)
		}
		sum += pi
	}
	if !floatsClose(sum, 1, 1e-9) {
		t.Errorf("sum(p) = %v, want 1", sum)
	}
	if !floatsClose(p[1], 1.0, 1e-9) {
		t.Errorf("p[1] = %v, want 1 (all mass collapses to the worst atom)", p[1])
	}
}

func TestAVaRCapsEachAtomAtNominalOverAlpha(t *testing.T) {
	n := AVaR(0.5)
	nominal := []float64{0.4, 0.6}
	z := []float64{10, 0} // index 1 worst, capped at 0.6/0.5=1.2 -> takes all 1.0

	p, v := n(0, 0, nominal, z)
	if !floatsClose(p[1], 1.0, 1e-9) {
		t.Errorf("p[1] = %v, want 1.0 (cap 0.6/0.5=1.2 truncated to remaining mass 1.0)", p[1])
	}
	if !floatsClose(p[0], 0, 1e-9) {
		t.Errorf("p[0] = %v, want 0", p[0])
	}
	if !floatsClose(v, 0, 1e-9) {
		t.Errorf("value = %v, want 0", v)
	}
}

func TestAVaRSpillsToNextAtomWhenCapped(t *testing.T) {
	n := AVaR(0.25)
	nominal := []float64{0.2, 0.8}
	z := []float64{0, 10} // index 0 worst, cap 0.2/0.25=0.8

	p, _ := n(0, 0, nominal, z)
	if !floatsClose(p[0], 0.8, 1e-9) {
		t.Errorf("p[0] = %v, want 0.8 (capped)", p[0])
	}
	if !floatsClose(p[1], 0.2, 1e-9) {
		t.Errorf("p[1] = %v, want 0.2 (remaining mass spills to next-worst atom)", p[1])
	}
}

func TestAVaRAlphaOneReproducesNominal(t *testing.T) {
	n := AVaR(1.0) // alpha=1 reduces to the nominal distribution
	nominal := []float64{0.3, 0.3, 0.4}
	p, _ := n(0, 0, nominal, []float64{1, 2, 3})
	for i := range nominal {
		if !floatsClose(p[i], nominal[i], 1e-9) {
			t.Errorf("alpha=1 should reproduce nominal, p[%d] = %v, want %v", i, p[i], nominal[i])
		}
	}
}

func TestConfigBuildDispatchesByKind(t *testing.T) {
	cases := []Config{
		{Kind: TypeAverage},
		{Kind: TypeL1Worst, Radius: 0.5},
		{Kind: TypeAVaR, Alpha: 0.5},
	}
	for _, c := range cases {
		n, err := c.Build()
		if err != nil {
			t.Fatalf("Build(%+v): %v", c, err)
		}
		if n == nil {
			t.Fatalf("Build(%+v) returned nil nature", c)
		}
	}
}

func TestConfigValidateRejectsBadParams(t *testing.T) {
	if err := (Config{Kind: TypeAVaR, Alpha: 0}).Validate(); err == nil {
		t.Error("expected error for alpha=0")
	}
	if err := (Config{Kind: TypeAVaR, Alpha: 1.5}).Validate(); err == nil {
		t.Error("expected error for alpha>1")
	}
	if err := (Config{Kind: TypeL1Worst, Radius: -1}).Validate(); err == nil {
		t.Error("expected error for negative radius")
	}
	if err := (Config{Kind: "bogus"}).Validate(); err == nil {
		t.Error("expected error for unregistered kind")
	}
}

func TestConfigJSONRoundTrip(t *testing.T) {
	c := Config{Kind: TypeL1Worst, Radius: 0.25}
	data, err := c.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var c2 Config
	if err := c2.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if c2.Kind != c.Kind || c2.Radius != c.Radius {
		t.Errorf("round-tripped Config = %+v, want %+v", c2, c)
	}
}

func TestAverageSFallsBackToGreedyWhenNoPolicyGiven(t *testing.T) {
	n := AverageS()
	nominal := [][]float64{{1.0}, {1.0}}
	z := [][]float64{{5}, {9}}
	policy, natureProbs, value := n(0, nil, nominal, z)
	if policy[1] != 1 || policy[0] != 0 {
		t.Errorf("AverageS should pick the best action greedily, got policy %v", policy)
	}
	if !floatsClose(value, 9, 1e-9) {
		t.Errorf("value = %v, want 9", value)
	}
	if len(natureProbs) != 2 {
		t.Errorf("AverageS must not perturb nominal probabilities")
	}
}
