package timeseries

// Run is a maximal stretch of consecutive true values in a compliance
// series, identified by index bounds into the input (oldest first).
type Run struct {
	Start  int
	End    int // inclusive
	Length int
}

// CurrentStreak counts the trailing true values of an oldest-to-newest
// compliance series, stopping at the first false scanning backward.
func CurrentStreak(series []bool) int {
	count := 0
	for i := len(series) - 1; i >= 0; i-- {
		if !series[i] {
			break
		}
		count++
	}
	return count
}

// Runs enumerates every maximal run of true values in order of appearance.
func Runs(series []bool) []Run {
	var runs []Run
	start := -1
	for i, v := range series {
		if v {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, Run{Start: start, End: i - 1, Length: i - start})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, Run{Start: start, End: len(series) - 1, Length: len(series) - start})
	}
	return runs
}

// LongestRun returns the longest maximal run; earlier runs win ties.
// ok is false when the series contains no true value.
func LongestRun(series []bool) (Run, bool) {
	var best Run
	found := false
	for _, r := range Runs(series) {
		if !found || r.Length > best.Length {
			best = r
			found = true
		}
	}
	return best, found
}
