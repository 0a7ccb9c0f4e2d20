package timeseries

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanAndMedian(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.5, Mean([]float64{1, 2, 3, 4}))

	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 2, 3}))

	// Median must not reorder the caller's slice.
	in := []float64{9, 1, 5}
	Median(in)
	assert.Equal(t, []float64{9, 1, 5}, in)
}

func TestPearsonSelfAndSymmetry(t *testing.T) {
	a := []float64{10, 20, 30, 40}
	b := []float64{12, 18, 33, 41}

	self, ok := Pearson(a, a)
	require.True(t, ok)
	assert.InDelta(t, 1.0, self, 1e-12)

	ab, ok := Pearson(a, b)
	require.True(t, ok)
	ba, ok2 := Pearson(b, a)
	require.True(t, ok2)
	assert.InDelta(t, ab, ba, 1e-12)
	assert.Greater(t, ab, 0.95)
}

func TestPearsonUndefinedCases(t *testing.T) {
	_, ok := Pearson([]float64{1, 2, 3}, []float64{1, 2})
	assert.False(t, ok, "mismatched lengths")

	_, ok = Pearson([]float64{1}, []float64{2})
	assert.False(t, ok, "fewer than two points")

	_, ok = Pearson([]float64{5, 5, 5}, []float64{1, 2, 3})
	assert.False(t, ok, "zero variance left")

	_, ok = Pearson([]float64{1, 2, 3}, []float64{7, 7, 7})
	assert.False(t, ok, "zero variance right")

	_, ok = Pearson([]float64{1, math.NaN(), 3}, []float64{1, 2, 3})
	assert.False(t, ok, "NaN input")

	_, ok = Pearson([]float64{1, math.Inf(1), 3}, []float64{1, 2, 3})
	assert.False(t, ok, "Inf input")
}

func TestCurrentStreak(t *testing.T) {
	assert.Equal(t, 0, CurrentStreak(nil))
	assert.Equal(t, 0, CurrentStreak([]bool{true, false}))
	assert.Equal(t, 3, CurrentStreak([]bool{true, true, false, true, true, true}))
	assert.Equal(t, 4, CurrentStreak([]bool{true, true, true, true}))
}

func TestRunsAndLongest(t *testing.T) {
	series := []bool{true, true, false, true, true, true}
	runs := Runs(series)
	require.Len(t, runs, 2)
	assert.Equal(t, Run{Start: 0, End: 1, Length: 2}, runs[0])
	assert.Equal(t, Run{Start: 3, End: 5, Length: 3}, runs[1])

	best, ok := LongestRun(series)
	require.True(t, ok)
	assert.Equal(t, 3, best.Length)

	// Earlier run wins a tie.
	best, ok = LongestRun([]bool{true, true, false, true, true})
	require.True(t, ok)
	assert.Equal(t, 0, best.Start)

	_, ok = LongestRun([]bool{false, false})
	assert.False(t, ok)

	// Fully true series: current == longest == N.
	full := []bool{true, true, true, true, true}
	assert.Equal(t, 5, CurrentStreak(full))
	best, _ = LongestRun(full)
	assert.Equal(t, 5, best.Length)
}
