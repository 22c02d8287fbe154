// Package stats holds the order-statistic estimators used to turn historical
// session totals into dynamic limits.
package stats

import (
	"math"
	"sort"
)

// Quantile returns cut point k of n (k in 1..n-1) using linear
// interpolation between order statistics with the data treated as the
// whole population ("inclusive" method). The index arithmetic is done in
// integers so evenly spaced inputs produce exact results.
// ok is false when fewer than two values are given or k is out of range.
func Quantile(values []float64, k, n int) (float64, bool) {
	if len(values) < 2 || n < 2 || k < 1 || k >= n {
		return 0, false
	}
	data := sortedCopy(values)

	m := len(data) - 1
	j := k * m / n
	delta := k*m - j*n
	if j+1 >= len(data) {
		return data[len(data)-1], true
	}
	return (data[j]*float64(n-delta) + data[j+1]*float64(delta)) / float64(n), true
}

// NearestRank returns the ceil(p*len)-th smallest value, clamped to the
// data range. p is a fraction in [0, 1].
func NearestRank(values []float64, p float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	data := sortedCopy(values)
	idx := int(math.Ceil(p*float64(len(data)))) - 1
	idx = min(len(data)-1, max(0, idx))
	return data[idx], true
}

// P90 estimates the 90th percentile. An empty series has no estimate and a
// single value is its own percentile.
func P90(values []float64) (float64, bool) {
	switch len(values) {
	case 0:
		return 0, false
	case 1:
		return values[0], true
	}
	if v, ok := Quantile(values, 9, 10); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v, true
	}
	return NearestRank(values, 0.9)
}

func sortedCopy(values []float64) []float64 {
	data := append([]float64(nil), values...)
	sort.Float64s(data)
	return data
}
