// Command craamctl loads an MDP from a CSV file, resolves an optional
// nature response, runs one of the iterative solvers, and prints the
// resulting Solution — a thin command-line front end over packages
// mdp, nature, bellman, and solver, grounded on the solver-parameter
// surface of the solver API.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/samuelfneumann/craam/bellman"
	"github.com/samuelfneumann/craam/internal/progressbar"
	"github.com/samuelfneumann/craam/mdp"
	"github.com/samuelfneumann/craam/nature"
	"github.com/samuelfneumann/craam/solver"
)

func main() {
	var (
		mdpPath       = flag.String("mdp", "", "path to an MDP CSV file (idstatefrom,idaction,idstateto,probability,reward)")
		discount      = flag.Float64("discount", 0.95, "discount factor")
		solverName    = flag.String("solver", "vi", "solver to run: vi, mpi, pi, or rppi")
		natureKind    = flag.String("nature", "", "nature response: average, l1-worst, or avar (empty means plain, non-robust)")
		natureRadius  = flag.Float64("nature-radius", 0, "L1 ball radius, used when -nature=l1-worst")
		natureAlpha   = flag.Float64("nature-alpha", 1, "AVaR risk level, used when -nature=avar")
		rppiEpsilon0  = flag.Float64("rppi-epsilon0", 0, "RPPI initial epsilon (0 means the package default)")
		maxIterations = flag.Int("max-iterations", 0, "iteration cap (0 means the package default)")
		maxResidual   = flag.Float64("max-residual", 0, "residual convergence threshold (0 means the package default)")
		timeout       = flag.Duration("timeout", 0, "wall-clock timeout (0 means no timeout)")
		forceImport   = flag.Bool("force", false, "import rows with probability <= 0 instead of skipping them (probabilities below -1e-3 are rejected)")
		asJSON        = flag.Bool("json", false, "print the Solution as JSON instead of its text summary")
		showProgress  = flag.Bool("progress", false, "display a terminal progress bar while the solver runs")
	)
	flag.Parse()

	if *mdpPath == "" {
		fmt.Fprintln(os.Stderr, "craamctl: -mdp is required")
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*mdpPath)
	if err != nil {
		log.Fatalf("craamctl: %v", err)
	}
	m, err := mdp.FromCSV(f, *forceImport)
	f.Close()
	if err != nil {
		log.Fatalf("craamctl: loading MDP: %v", err)
	}
	if err := m.CheckModel(); err != nil {
		log.Fatalf("craamctl: invalid model: %v", err)
	}

	var natureFn nature.SANature
	if *natureKind != "" {
		cfg := nature.Config{Kind: nature.Type(*natureKind), Radius: *natureRadius, Alpha: *natureAlpha}
		natureFn, err = cfg.Build()
		if err != nil {
			log.Fatalf("craamctl: nature config: %v", err)
		}
	}

	opts := solver.Options{
		MaxIterations: *maxIterations,
		MaxResidual:   *maxResidual,
		Timeout:       *timeout,
	}
	if *showProgress {
		limit := opts.MaxIterations
		if limit <= 0 {
			limit = solver.DefaultMaxIterations
		}
		bar := progressbar.New(40, limit)
		opts.Progress = func(iteration int, residual float64) bool {
			bar.Increment()
			bar.Display()
			return true
		}
	}

	sol, err := runSolver(*solverName, m, natureFn, *discount, opts, *rppiEpsilon0)
	if err != nil {
		log.Fatalf("craamctl: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sol); err != nil {
			log.Fatalf("craamctl: encoding solution: %v", err)
		}
		return
	}
	fmt.Println(sol)
}

func runSolver(name string, m *mdp.MDP, natureFn nature.SANature, discount float64,
	opts solver.Options, rppiEpsilon0 float64) (solver.Solution, error) {

	switch name {
	case "vi":
		backup := bellman.Plain(m, nil)
		if natureFn != nil {
			backup = bellman.SARobust(m, natureFn, nil)
		}
		return solver.VI(backup, m.Size(), discount, opts)

	case "mpi":
		factory := func(fixedPolicy []int) bellman.Backup {
			if natureFn != nil {
				return bellman.SARobust(m, natureFn, fixedPolicy)
			}
			return bellman.Plain(m, fixedPolicy)
		}
		return solver.MPI(factory, m.Size(), discount, solver.MPIOptions{Options: opts})

	case "pi":
		if natureFn != nil {
			return solver.Solution{}, fmt.Errorf("pi does not support a robust nature response; use rppi")
		}
		return solver.PI(m, discount, opts)

	case "rppi":
		if natureFn == nil {
			return solver.Solution{}, fmt.Errorf("rppi requires -nature")
		}
		return solver.RPPI(m, natureFn, discount, solver.RPPIOptions{Options: opts, InitialEpsilon: rppiEpsilon0})

	default:
		return solver.Solution{}, fmt.Errorf("unknown solver %q (want vi, mpi, pi, or rppi)", name)
	}
}
