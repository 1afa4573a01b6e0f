package analysis

import "math"

// Level conversion helpers shared across stages. Zero amplitude maps to
// negative infinity rather than a log-of-zero NaN; degenerate inputs are
// first-class outcomes here, not errors.

// dbFromLinear converts a linear amplitude to dBFS. Returns -Inf for zero or
// negative input.
func dbFromLinear(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20.0 * math.Log10(v)
}

// linearFromDb converts a dBFS value to linear amplitude.
func linearFromDb(db float64) float64 {
	return math.Pow(10, db/20.0)
}

// clamp restricts val to the range [min, max].
func clamp(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
