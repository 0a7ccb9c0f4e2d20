package progression

import "math"

// xpCurveCoef fixes the leveling curve: XP_req = 120 * (level^1.5).
// The curve is a pure function of level and is deliberately not part of
// the tunable configuration.
const xpCurveCoef = 120.0

// XPRequiredForLevel returns the cumulative XP threshold for the given
// level. Level 0 requires 0 XP.
func XPRequiredForLevel(level int) int {
	if level <= 0 {
		return 0
	}
	req := xpCurveCoef * math.Pow(float64(level), 1.5)
	// Ceil so floating point rounding never makes a threshold easier.
	return int(math.Ceil(req))
}

// LevelForXP returns the highest level L with xp >= XPRequiredForLevel(L).
func LevelForXP(xp int) int {
	if xp <= 0 {
		return 0
	}

	// Exponential search for an upper bound, then binary search.
	low := 0
	high := 1
	for XPRequiredForLevel(high) <= xp {
		low = high
		high *= 2
		if high > 1_000_000 {
			break
		}
	}

	for low+1 < high {
		mid := low + (high-low)/2
		if XPRequiredForLevel(mid) <= xp {
			low = mid
		} else {
			high = mid
		}
	}
	return low
}
