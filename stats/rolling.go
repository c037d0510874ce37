package stats

import (
	"gonum.org/v1/gonum/floats"
)

// WindowStats holds summary statistics over a trailing window.
type WindowStats struct {
	Mean float64
	Min  float64
	Max  float64
}

// TrailingWindow computes summary statistics over the last `window` values.
// If fewer values are available, the whole slice is used.
func TrailingWindow(values []float64, window int) WindowStats {
	if window < 1 {
		window = 1
	}
	if window > len(values) {
		window = len(values)
	}
	w := values[len(values)-window:]
	return WindowStats{
		Mean: floats.Sum(w) / float64(len(w)),
		Min:  floats.Min(w),
		Max:  floats.Max(w),
	}
}
