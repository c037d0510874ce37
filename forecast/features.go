package forecast

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/recast/model"
	"github.com/sartorproj/recast/stats"
)

// NumWindowStats is the number of rolling-window summary features appended
// after the lag features: mean, min, and max.
const NumWindowStats = 3

// MinHistory returns the shortest history that can produce a feature row.
func MinHistory(lags, window int) int {
	if window > lags {
		return window
	}
	return lags
}

// FeatureRow computes one feature vector from a history buffer: the last
// `lags` values, most recent first, followed by rolling mean, min, and max
// over the last `window` values. The history must hold at least
// MinHistory(lags, window) values.
func FeatureRow(history []float64, lags, window int) []float64 {
	row := make([]float64, lags+NumWindowStats)
	n := len(history)
	for j := 0; j < lags; j++ {
		row[j] = history[n-1-j]
	}
	ws := stats.TrailingWindow(history, window)
	row[lags] = ws.Mean
	row[lags+1] = ws.Min
	row[lags+2] = ws.Max
	return row
}

// BuildTable constructs the supervised table for one series: a feature row
// for every interior step with the next value as target.
func BuildTable(values []float64, lags, window int) (*mat.Dense, []float64, error) {
	start := MinHistory(lags, window)
	rows := len(values) - start
	if rows < 1 {
		return nil, nil, fmt.Errorf("%w: %d values for lags=%d window=%d",
			ErrInsufficientData, len(values), lags, window)
	}
	x := mat.NewDense(rows, lags+NumWindowStats, nil)
	y := make([]float64, rows)
	for i := 0; i < rows; i++ {
		t := start + i
		x.SetRow(i, FeatureRow(values[:t], lags, window))
		y[i] = values[t]
	}
	return x, y, nil
}

// Recurse drives the regressor forward `steps` times. Each prediction is
// appended to a copy of the history buffer and the next step's features are
// recomputed from the extended history. Returns the predicted values in
// order and the extended history.
func Recurse(reg model.Regressor, history []float64, steps, lags, window int) (preds, extended []float64, err error) {
	extended = make([]float64, len(history), len(history)+steps)
	copy(extended, history)
	preds = make([]float64, 0, steps)
	for s := 0; s < steps; s++ {
		v, err := reg.PredictOne(FeatureRow(extended, lags, window))
		if err != nil {
			return nil, nil, fmt.Errorf("recursive step %d: %w", s, err)
		}
		preds = append(preds, v)
		extended = append(extended, v)
	}
	return preds, extended, nil
}

// Residuals computes in-sample one-step residuals of a fitted regressor
// over its training table. These form the bootstrap resampling pool.
func Residuals(reg model.Regressor, x *mat.Dense, y []float64) ([]float64, error) {
	n, k := x.Dims()
	residuals := make([]float64, n)
	row := make([]float64, k)
	for i := 0; i < n; i++ {
		mat.Row(row, i, x)
		pred, err := reg.PredictOne(row)
		if err != nil {
			return nil, err
		}
		residuals[i] = y[i] - pred
	}
	return residuals, nil
}
