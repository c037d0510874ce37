package forecast

import (
	"math"

	"github.com/sartorproj/recast/timeseries"
)

// Band holds a point forecast with lower and upper quantile bounds per step.
// Invariant: Lower[i] <= Point[i] <= Upper[i] for every step.
type Band struct {
	Point []float64
	Lower []float64
	Upper []float64
}

// Len returns the number of steps in the band.
func (b *Band) Len() int {
	return len(b.Point)
}

// Slice returns the band restricted to steps [start, end).
func (b *Band) Slice(start, end int) *Band {
	out := &Band{
		Point: make([]float64, end-start),
		Lower: make([]float64, end-start),
		Upper: make([]float64, end-start),
	}
	copy(out.Point, b.Point[start:end])
	copy(out.Lower, b.Lower[start:end])
	copy(out.Upper, b.Upper[start:end])
	return out
}

// Width returns the band width at each step.
func (b *Band) Width() []float64 {
	w := make([]float64, len(b.Point))
	for i := range w {
		w[i] = b.Upper[i] - b.Lower[i]
	}
	return w
}

// Result is the full output of one forecasting call for one series.
type Result struct {
	Entity string

	// Train and Test are the split slices of the input series.
	Train *timeseries.Series
	Test  *timeseries.Series

	// TestForecast covers the held-out test window; HorizonForecast covers
	// the steps beyond the observed range. Both are on the original scale.
	TestForecast    *Band
	HorizonForecast *Band

	// Test-window accuracy.
	RMSE     float64
	MAE      float64
	MAPE     float64
	Coverage float64 // fraction of test truths inside [lower, upper]

	// Diagnostics lists recoverable degradations (e.g. low-confidence
	// orders). An empty list means a clean run.
	Diagnostics []string
}

// Evaluate fills the test-window accuracy metrics from the truth values.
func (r *Result) Evaluate() {
	truth := r.Test.Values
	band := r.TestForecast
	if band == nil || len(truth) == 0 || band.Len() != len(truth) {
		return
	}
	var sse, sae, sape float64
	covered := 0
	for i, actual := range truth {
		err := actual - band.Point[i]
		sse += err * err
		sae += math.Abs(err)
		if actual != 0 {
			sape += math.Abs(err / actual)
		}
		if actual >= band.Lower[i] && actual <= band.Upper[i] {
			covered++
		}
	}
	n := float64(len(truth))
	r.RMSE = math.Sqrt(sse / n)
	r.MAE = sae / n
	r.MAPE = 100 * sape / n
	r.Coverage = float64(covered) / n
}
