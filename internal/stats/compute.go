package stats

import "math"

// rate calculates part / total as a fraction.
// A zero total yields 0, never NaN or Inf.
func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

// mean calculates the arithmetic mean of values, 0 for an empty slice.
func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// round1 rounds to one decimal place. Fixed rounding policy for avg level.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// roundNearest rounds to the nearest integer. Fixed rounding policy for avg streak.
func roundNearest(x float64) int {
	return int(math.Round(x))
}
