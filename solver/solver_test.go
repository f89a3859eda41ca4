package solver

import (
	"math"
	"testing"

	"github.com/samuelfneumann/craam/bellman"
	"github.com/samuelfneumann/craam/mdp"
	"github.com/samuelfneumann/craam/nature"
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

// buildChain builds a three-state cyclic chain: action 0 is the "bad"
// action, action 1 is the optimal action everywhere, with
// V ≈ [8.91, 9.90, 11.00] under γ=0.9.
func buildChain(t *testing.T) *mdp.MDP {
	t.Helper()
	m := mdp.NewMDP(3)
	must(t, m.AddSample(0, 0, 0, 1.0, 0, false))
	must(t, m.AddSample(0, 1, 1, 1.0, 0, false))
	must(t, m.AddSample(1, 0, 0, 1.0, 1, false))
	must(t, m.AddSample(1, 1, 2, 1.0, 0, false))
	must(t, m.AddSample(2, 0, 1, 1.0, 1, false))
	must(t, m.AddSample(2, 1, 2, 1.0, 1.1, false))
	return m
}

func TestVIMatchesThreeStateChain(t *testing.T) {
	m := buildChain(t)
	sol, err := VI(bellman.Plain(m, nil), m.Size(), 0.9, Options{MaxResidual: 1e-6, MaxIterations: 10000})
	must(t, err)

	if sol.Status != StatusOK {
		t.Fatalf("status = %v, want ok", sol.Status)
	}
	wantPolicy := []int{1, 1, 1}
	for s := range wantPolicy {
		if sol.Policy[s] != wantPolicy[s] {
			t.Errorf("Policy[%d] = %d, want %d", s, sol.Policy[s], wantPolicy[s])
		}
	}
	wantV := []float64{8.91, 9.90, 11.00}
	for s := range wantV {
		if !floatsClose(sol.Value[s], wantV[s], 1e-2) {
			t.Errorf("Value[%d] = %v, want %v", s, sol.Value[s], wantV[s])
		}
	}
}

func TestVITerminalStateAlwaysZero(t *testing.T) {
	m := mdp.NewMDP(2)
	must(t, m.AddSample(0, 0, 1, 1.0, 5, false))
	// state 1 is terminal: no actions.

	sol, err := VI(bellman.Plain(m, nil), m.Size(), 0.9, Options{MaxResidual: 1e-6})
	must(t, err)
	if sol.Value[1] != 0 {
		t.Errorf("terminal state value = %v, want 0", sol.Value[1])
	}
	if sol.Policy[1] != -1 {
		t.Errorf("terminal state policy = %d, want -1 (no action)", sol.Policy[1])
	}
}

func TestVIL1RobustIsNeverBetterThanPlain(t *testing.T) {
	m := buildChain(t)
	plain, err := VI(bellman.Plain(m, nil), m.Size(), 0.9, Options{MaxResidual: 1e-6})
	must(t, err)

	robust, err := VI(bellman.SARobust(m, nature.L1Worst(0.5), nil), m.Size(), 0.9, Options{MaxResidual: 1e-6})
	must(t, err)

	for s := range plain.Value {
		if robust.Value[s] > plain.Value[s]+1e-6 {
			t.Errorf("robust value[%d] = %v exceeds plain value %v", s, robust.Value[s], plain.Value[s])
		}
	}
}

func TestPIMatchesVIOnSameChain(t *testing.T) {
	m := buildChain(t)
	vi, err := VI(bellman.Plain(m, nil), m.Size(), 0.9, Options{MaxResidual: 1e-8})
	must(t, err)
	pi, err := PI(m, 0.9, Options{MaxResidual: 1e-8})
	must(t, err)

	for s := range vi.Value {
		if !floatsClose(vi.Value[s], pi.Value[s], 1e-4) {
			t.Errorf("PI value[%d] = %v, VI value = %v", s, pi.Value[s], vi.Value[s])
		}
	}
}

func TestMPIConvergesToSameValueAsVI(t *testing.T) {
	m := buildChain(t)
	vi, err := VI(bellman.Plain(m, nil), m.Size(), 0.9, Options{MaxResidual: 1e-8})
	must(t, err)

	factory := func(fixedPolicy []int) bellman.Backup { return bellman.Plain(m, fixedPolicy) }
	mpi, err := MPI(factory, m.Size(), 0.9, MPIOptions{Options: Options{MaxResidual: 1e-6}})
	must(t, err)

	for s := range vi.Value {
		if !floatsClose(vi.Value[s], mpi.Value[s], 1e-2) {
			t.Errorf("MPI value[%d] = %v, VI value = %v", s, mpi.Value[s], vi.Value[s])
		}
	}
}

// TestRPPIConvergesWithinThirtyIterations checks RPPI converges within
// a small iteration budget given a reasonably small initial epsilon.
func TestRPPIConvergesWithinThirtyIterations(t *testing.T) {
	m := buildChain(t)
	sol, err := RPPI(m, nature.L1Worst(0.1), 0.9, RPPIOptions{
		Options:        Options{MaxResidual: 1e-4, MaxIterations: 30},
		InitialEpsilon: 0.01,
	})
	must(t, err)

	if sol.Status != StatusOK {
		t.Fatalf("status = %v, want ok within 30 iterations", sol.Status)
	}
	if sol.Iterations > 30 {
		t.Errorf("Iterations = %d, want <= 30", sol.Iterations)
	}
	if sol.Residual >= 1e-4 {
		t.Errorf("Residual = %v, want < 1e-4", sol.Residual)
	}

	want, err := VI(bellman.SARobust(m, nature.L1Worst(0.1), nil), m.Size(), 0.9, Options{MaxResidual: 1e-8})
	must(t, err)
	for s := range want.Value {
		if sol.Policy[s] != want.Policy[s] {
			t.Errorf("Policy[%d] = %d, want %d (robust VI)", s, sol.Policy[s], want.Policy[s])
		}
		if !floatsClose(sol.Value[s], want.Value[s], 1e-2) {
			t.Errorf("Value[%d] = %v, want %v (robust VI)", s, sol.Value[s], want.Value[s])
		}
	}
}

func TestVIRandEvaluatesFixedPolicy(t *testing.T) {
	m := buildChain(t)
	// always take action 1, deterministic one-hot randomized policy.
	policy := [][]float64{{0, 1}, {0, 1}, {0, 1}}
	sol, err := VIRand(m, policy, 0.9, Options{MaxResidual: 1e-6})
	must(t, err)

	wantV := []float64{8.91, 9.90, 11.00}
	for s := range wantV {
		if !floatsClose(sol.Value[s], wantV[s], 1e-2) {
			t.Errorf("VIRand Value[%d] = %v, want %v", s, sol.Value[s], wantV[s])
		}
	}
}

func TestPIRandMatchesVIRand(t *testing.T) {
	m := buildChain(t)
	policy := [][]float64{{0, 1}, {0, 1}, {0, 1}}
	viSol, err := VIRand(m, policy, 0.9, Options{MaxResidual: 1e-8})
	must(t, err)
	piSol, err := PIRand(m, policy, 0.9)
	must(t, err)

	for s := range viSol.Value {
		if !floatsClose(viSol.Value[s], piSol.Value[s], 1e-4) {
			t.Errorf("PIRand value[%d] = %v, VIRand value = %v", s, piSol.Value[s], viSol.Value[s])
		}
	}
}

func TestCheckpointerSavesOnInterval(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	cp := NewCheckpointer(2, func(iteration int) string {
		calls++
		return dir + "/snap.bin"
	})
	must(t, cp.Maybe(0, Snapshot{Iteration: 0}))
	must(t, cp.Maybe(1, Snapshot{Iteration: 1}))
	must(t, cp.Maybe(2, Snapshot{Iteration: 2, Value: []float64{1, 2, 3}}))

	if calls != 2 {
		t.Fatalf("expected 2 checkpoint writes (iterations 0 and 2), got %d", calls)
	}

	snap, err := LoadCheckpoint(dir + "/snap.bin")
	must(t, err)
	if snap.Iteration != 2 || len(snap.Value) != 3 {
		t.Errorf("loaded snapshot = %+v, want iteration 2 with 3 values", snap)
	}
}
