package nature

import "sort"

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// argsortAscending returns the indices of z in ascending order of
// value, used by both the L1-ball and AVaR nature responses to decide
// which atoms get more or less mass.
func argsortAscending(z []float64) []int {
	order := make([]int, len(z))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return z[order[i]] < z[order[j]] })
	return order
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func onehot(n, i int) []float64 {
	v := make([]float64, n)
	if n > 0 {
		v[i] = 1
	}
	return v
}
