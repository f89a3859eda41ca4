package lp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// bigM is the Big-M penalty applied to artificial variables. It must
// dominate any feasible objective value for the penalty method to be
// valid; the occupancy/LP problems this backend serves have rewards
// and values bounded well below this.
const bigM = 1e7

const simplexEpsilon = 1e-9

// SimplexBackend is a dense Big-M primal simplex solver for LP, and a
// projected-gradient ascent heuristic for QP, both built on
// gonum.org/v1/gonum/mat tableaus/vectors. It targets the small, dense
// programs this library produces (one row per state-action pair, or
// one column per occupancy/soft-robust decision variable), not
// large-scale optimization.
type SimplexBackend struct {
	MaxIterations int
}

// NewSimplexBackend returns a SimplexBackend with a default iteration
// cap.
func NewSimplexBackend() *SimplexBackend {
	return &SimplexBackend{MaxIterations: 2000}
}

func (b *SimplexBackend) maxIterations() int {
	if b.MaxIterations > 0 {
		return b.MaxIterations
	}
	return 2000
}

// splitColumn records how one expanded simplex column maps back to an
// original decision variable: sign is +1 for a bounded or free-positive
// part, -1 for a free-negative part, so x[orig] = sum(sign*colValue).
type splitColumn struct {
	orig int
	sign float64
}

// SolveLP solves p by Big-M simplex. Free variables are split into a
// nonnegative positive/negative pair; every row is normalized to a
// nonnegative right-hand side and given either a slack (≤ rows) or a
// surplus+artificial pair (≥ rows, after sign normalization turns a row
// into a ≥ constraint).
func (b *SimplexBackend) SolveLP(p Problem) (Result, error) {
	n := len(p.C)
	m := len(p.B)
	if len(p.A) != m {
		return Result{}, fmt.Errorf("lp: len(A)=%d does not match len(B)=%d", len(p.A), m)
	}
	free := p.Free
	if free == nil {
		free = make([]bool, n)
	}

	var cols []splitColumn
	for i := 0; i < n; i++ {
		if free[i] {
			cols = append(cols, splitColumn{orig: i, sign: 1})
			cols = append(cols, splitColumn{orig: i, sign: -1})
		} else {
			cols = append(cols, splitColumn{orig: i, sign: 1})
		}
	}
	k := len(cols)

	// Normalize row signs so every b_i >= 0, tracking whether the
	// (possibly flipped) row is now a <= or >= constraint.
	rowA := make([][]float64, m)
	rowB := make([]float64, m)
	rowGE := make([]bool, m)
	for i := 0; i < m; i++ {
		if len(p.A[i]) != n {
			return Result{}, fmt.Errorf("lp: row %d has %d columns, want %d", i, len(p.A[i]), n)
		}
		sign := 1.0
		b := p.B[i]
		if b < 0 {
			sign = -1
			b = -b
		}
		row := make([]float64, k)
		for j, c := range cols {
			row[j] = sign * c.sign * p.A[i][c.orig]
		}
		rowA[i] = row
		rowB[i] = b
		rowGE[i] = sign < 0
	}

	numSlack, numSurplus, numArtificial := 0, 0, 0
	for i := 0; i < m; i++ {
		if rowGE[i] {
			numSurplus++
			numArtificial++
		} else {
			numSlack++
		}
	}
	total := k + numSlack + numSurplus + numArtificial

	tab := mat.NewDense(m+1, total+1, nil)
	basis := make([]int, m)
	cExt := make([]float64, total)
	copy(cExt, extendCost(p.C, cols))

	slackCursor := k
	surplusCursor := k + numSlack
	artCursor := k + numSlack + numSurplus
	for i := 0; i < m; i++ {
		for j := 0; j < k; j++ {
			tab.Set(i, j, rowA[i][j])
		}
		tab.Set(i, total, rowB[i])
		if rowGE[i] {
			tab.Set(i, surplusCursor, -1)
			tab.Set(i, artCursor, 1)
			cExt[artCursor] = bigM
			basis[i] = artCursor
			surplusCursor++
			artCursor++
		} else {
			tab.Set(i, slackCursor, 1)
			basis[i] = slackCursor
			slackCursor++
		}
	}

	// Initial reduced-cost row: since B = I initially, reducedCost_j =
	// c_j - sum_i cB[i]*A[i][j].
	for j := 0; j <= total; j++ {
		var val float64
		if j < total {
			val = cExt[j]
		}
		for i := 0; i < m; i++ {
			val -= cExt[basis[i]] * tab.At(i, j)
		}
		tab.Set(m, j, val)
	}

	status := StatusOptimal
	for iter := 0; iter < b.maxIterations(); iter++ {
		enter := -1
		best := -simplexEpsilon
		for j := 0; j < total; j++ {
			v := tab.At(m, j)
			if v < best {
				best = v
				enter = j
			}
		}
		if enter == -1 {
			break
		}

		leave := -1
		bestRatio := math.Inf(1)
		for i := 0; i < m; i++ {
			a := tab.At(i, enter)
			if a > simplexEpsilon {
				ratio := tab.At(i, total) / a
				if ratio < bestRatio-1e-12 || (ratio < bestRatio+1e-12 && (leave == -1 || basis[i] < basis[leave])) {
					bestRatio = ratio
					leave = i
				}
			}
		}
		if leave == -1 {
			return Result{Status: StatusInfeasibleOrUnbounded}, nil
		}

		pivot := tab.At(leave, enter)
		for j := 0; j <= total; j++ {
			tab.Set(leave, j, tab.At(leave, j)/pivot)
		}
		for i := 0; i <= m; i++ {
			if i == leave {
				continue
			}
			factor := tab.At(i, enter)
			if factor == 0 {
				continue
			}
			for j := 0; j <= total; j++ {
				tab.Set(i, j, tab.At(i, j)-factor*tab.At(leave, j))
			}
		}
		basis[leave] = enter
	}

	for i := 0; i < m; i++ {
		if basis[i] >= k+numSlack+numSurplus && tab.At(i, total) > 1e-6 {
			return Result{Status: StatusInfeasibleOrUnbounded}, nil
		}
	}

	expanded := make([]float64, total)
	for i := 0; i < m; i++ {
		expanded[basis[i]] = tab.At(i, total)
	}

	x := make([]float64, n)
	for j, c := range cols {
		x[c.orig] += c.sign * expanded[j]
	}

	var objective float64
	for i, ci := range p.C {
		objective += ci * x[i]
	}

	return Result{X: x, Objective: objective, Status: status}, nil
}

func extendCost(c []float64, cols []splitColumn) []float64 {
	out := make([]float64, len(cols))
	for j, col := range cols {
		out[j] = col.sign * c[col.orig]
	}
	return out
}

// SolveQP runs projected-gradient ascent on p.Evaluate, re-projecting
// onto the feasible set after every step and keeping the best iterate
// seen. The soft-robust AVaR program is a bilinear,
// generally nonconvex maximization, so no global-optimality guarantee
// is offered; this matches the reference backend's role as a dense,
// dependency-free fallback rather than a production QP solver.
func (b *SimplexBackend) SolveQP(p QPObjective, iterations int, stepSize float64) (Result, error) {
	if p.Evaluate == nil || p.Gradient == nil || p.Project == nil {
		return Result{}, fmt.Errorf("lp: QPObjective requires Evaluate, Gradient, and Project")
	}
	x := p.Project(append([]float64(nil), p.X0...))
	best := append([]float64(nil), x...)
	bestVal := p.Evaluate(x)

	for it := 0; it < iterations; it++ {
		g := p.Gradient(x)
		next := make([]float64, len(x))
		for i := range x {
			next[i] = x[i] + stepSize*g[i]
		}
		next = p.Project(next)
		val := p.Evaluate(next)
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return Result{X: best, Objective: bestVal, Status: StatusInfeasibleOrUnbounded}, nil
		}
		x = next
		if val > bestVal {
			bestVal = val
			best = append([]float64(nil), x...)
		}
	}

	return Result{X: best, Objective: bestVal, Status: StatusOptimal}, nil
}
