// Package forecast implements the single-series recursive interval
// forecaster.
//
// A point-prediction primitive is trained on a supervised table of lagged
// and rolling-window features built from the (possibly differenced) training
// prefix, then driven forward one step at a time: each prediction is
// appended to an explicit history buffer and the next step's features are
// recomputed from the extended history. Errors therefore compound through
// the feedback loop, which is deliberate: multi-step uncertainty must grow
// with horizon.
//
// Prediction intervals come from a residual bootstrap. In-sample one-step
// residuals are resampled with replacement and added to the recursive point
// path; every replicate path is integrated back to the original scale
// before percentiles are taken, because differencing does not commute with
// quantile operations over multi-step cumulative sums.
//
// # Basic Usage
//
//	order, _ := autoorder.Select(series, nil)
//	f, err := forecast.New(model.NewRidge(1e-3), forecast.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := f.Forecast(series, order)
//	// res.TestForecast covers the held-out suffix, res.HorizonForecast the
//	// steps beyond the observed range; both carry point, lower, and upper.
package forecast
