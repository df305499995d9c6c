package task

import "math"

// ProgressMeasurement names how a task's percent_complete is allowed to
// move. Each value is the fixed string key used in external formats.
type ProgressMeasurement string

const (
	PercentComplete        ProgressMeasurement = "percent_complete"
	ZeroOneHundred          ProgressMeasurement = "0_100"
	FiftyFifty              ProgressMeasurement = "50_50"
	TwentyFiveSeventyFive   ProgressMeasurement = "25_75"
	SeventyFiveTwentyFive   ProgressMeasurement = "75_25"
	PreDefinedRationale     ProgressMeasurement = "pre_defined_rationale"
)

// epsilon is the tolerance used when comparing percent_complete against an
// allowed set, and when checking rationale weight sums.
const epsilon = 1e-6

// AllowedPercents returns the fixed set of percent_complete values allowed
// for m, and whether the set is closed. PercentComplete and
// PreDefinedRationale return ok=false: the former allows any value in
// [0,1], the latter constrains percent_complete indirectly through its
// rationale weights, not through a fixed percent set.
func AllowedPercents(m ProgressMeasurement) (values []float64, ok bool) {
	switch m {
	case ZeroOneHundred:
		return []float64{0, 1}, true
	case FiftyFifty:
		return []float64{0, 0.5, 1}, true
	case TwentyFiveSeventyFive, SeventyFiveTwentyFive:
		return []float64{0, 0.25, 0.75, 1}, true
	default:
		return nil, false
	}
}

// ApproxEqual reports whether a and b are within epsilon of each other.
func ApproxEqual(a, b float64) bool {
	return math.Abs(a-b) <= epsilon
}

// Epsilon exposes the shared tolerance to callers outside this package
// (the validator) that need the identical constant rather than a private
// copy.
func Epsilon() float64 { return epsilon }

// RationaleItem is one weighted component of a PreDefinedRationale
// progress measurement.
type RationaleItem struct {
	ID         int32   `json:"id"`
	Name       string  `json:"name"`
	Weight     float64 `json:"weight"`
	IsComplete bool    `json:"is_complete"`
}
