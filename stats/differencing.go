package stats

import (
	"errors"
	"fmt"

	"github.com/sartorproj/recast/timeseries"
)

// ErrTooShort is returned when a series is too short for the requested
// differencing order.
var ErrTooShort = errors.New("series too short for differencing order")

// NDiffs determines the number of first differences required for
// stationarity, up to maxD (default 2). testType is "kpss" (default, with
// ADF confirmation on borderline statistics) or "adf". exhausted reports
// that the returned order could not be verified stationary, either because
// the test still failed at maxD or because differencing left too few
// observations to test; the returned d is a best-effort order.
func NDiffs(series *timeseries.Series, maxD int, testType string) (d int, exhausted bool) {
	if maxD <= 0 {
		maxD = 2
	}
	if testType == "" {
		testType = "kpss"
	}

	current := series
	for d := 0; d < maxD; d++ {
		if isStationary(current, testType) {
			return d, false
		}
		current = diffSeries(current)
		if current.Len() < 10 {
			return d + 1, true
		}
	}
	if isStationary(current, testType) {
		return maxD, false
	}
	return maxD, true
}

func isStationary(series *timeseries.Series, testType string) bool {
	if testType == "adf" {
		result := ADF(series, 0)
		return result != nil && result.IsStationary
	}
	// The KPSS p-value approximation is a step function, so a borderline
	// statistic lands exactly on the 0.05 boundary. Require ADF to agree
	// unless KPSS is clearly inside the stationary region.
	kpss := KPSS(series, "c", 0)
	if kpss == nil || !kpss.IsStationary {
		return false
	}
	if kpss.PValue > 0.1 {
		return true
	}
	adf := ADF(series, 0)
	return adf != nil && adf.IsStationary
}

func diffSeries(s *timeseries.Series) *timeseries.Series {
	return timeseries.New(s.Name, s.StartYear+1, firstDiff(s.Values))
}

// Differencer applies d successive first differences and remembers the tail
// values needed to integrate forecasts back to the original scale. The zero
// order Differencer is the identity transform.
type Differencer struct {
	Order int
	tails []float64   // last value of each level 0..Order-1 of the applied series
	heads []float64   // first value of each level 0..Order-1, for full reconstruction
	last  []float64   // the differenced series produced by Apply
}

// NewDifferencer creates a differencing transform of the given order.
func NewDifferencer(order int) *Differencer {
	if order < 0 {
		order = 0
	}
	return &Differencer{Order: order}
}

// Apply differences values Order times and records the state needed by
// InvertPath and Reconstruct. The returned slice has length
// len(values)-Order.
func (d *Differencer) Apply(values []float64) ([]float64, error) {
	if len(values) <= d.Order {
		return nil, fmt.Errorf("%w: length %d, order %d", ErrTooShort, len(values), d.Order)
	}
	d.tails = make([]float64, d.Order)
	d.heads = make([]float64, d.Order)
	current := make([]float64, len(values))
	copy(current, values)
	for i := 0; i < d.Order; i++ {
		d.tails[i] = current[len(current)-1]
		d.heads[i] = current[0]
		current = firstDiff(current)
	}
	d.last = make([]float64, len(current))
	copy(d.last, current)
	return current, nil
}

// Differenced returns the series produced by the last Apply.
func (d *Differencer) Differenced() []float64 {
	out := make([]float64, len(d.last))
	copy(out, d.last)
	return out
}

// InvertPath integrates a future path on the differenced scale back to the
// original scale. The path is taken to start immediately after the series
// passed to Apply; integration at each level is a cumulative sum seeded with
// that level's final applied value.
func (d *Differencer) InvertPath(path []float64) []float64 {
	result := make([]float64, len(path))
	copy(result, path)
	for level := d.Order - 1; level >= 0; level-- {
		prev := d.tails[level]
		for i := range result {
			result[i] += prev
			prev = result[i]
		}
	}
	return result
}

// Reconstruct rebuilds the original series from its differenced form,
// making Apply followed by Reconstruct a round trip.
func (d *Differencer) Reconstruct(diffed []float64) []float64 {
	current := make([]float64, len(diffed))
	copy(current, diffed)
	for level := d.Order - 1; level >= 0; level-- {
		rebuilt := make([]float64, len(current)+1)
		rebuilt[0] = d.heads[level]
		for i, v := range current {
			rebuilt[i+1] = rebuilt[i] + v
		}
		current = rebuilt
	}
	return current
}
