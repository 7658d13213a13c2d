package template

import "math"

// stripThresholds are the variance levels separating the gray shades of a
// spectral strip.
var stripThresholds = [...]float64{0.06, 0.07, 0.09, 0.11, 0.13, 0.15, 0.16, 0.17, 0.19}

// StripLevels is the number of distinct shades returned by StripShade.
const StripLevels = len(stripThresholds) + 1

// StripShade maps a bin variance to a shade level from 0 (lowest variance)
// to StripLevels-1. A variance equal to a threshold stays in the lower
// level. NaN maps to 0.
func StripShade(variance float64) int {
	if math.IsNaN(variance) {
		return 0
	}

	level := 0
	for _, th := range stripThresholds {
		if variance > th {
			level++
		}
	}

	return level
}
