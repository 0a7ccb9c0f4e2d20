package timeseries

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the median of values over a sorted copy; even-length
// inputs average the two middle elements. Empty input yields 0.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Pearson computes the Pearson correlation coefficient between two
// index-aligned series. ok is false when the series lengths differ, fewer
// than two points are present, either series has zero variance, or any
// value is not finite. The coefficient is clamped to [-1, 1] so floating
// point rounding never leaks out of range.
func Pearson(a, b []float64) (r float64, ok bool) {
	n := len(a)
	if n != len(b) || n < 2 {
		return 0, false
	}
	for i := 0; i < n; i++ {
		if !isFinite(a[i]) || !isFinite(b[i]) {
			return 0, false
		}
	}

	meanA := Mean(a)
	meanB := Mean(b)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		// Undefined correlation, not zero correlation.
		return 0, false
	}

	r = cov / math.Sqrt(varA*varB)
	if r > 1 {
		r = 1
	}
	if r < -1 {
		r = -1
	}
	return r, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
