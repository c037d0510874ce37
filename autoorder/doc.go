// Package autoorder implements automatic order selection for the recursive
// forecaster.
//
// For each series it determines an integer triple: the autoregressive lag
// count, the differencing order that renders the series stationary, and the
// rolling-window size used for window features. Differencing is chosen by
// stepwise KPSS/ADF testing up to a maximum order; the lag count is chosen by
// fitting AR(p) models over a grid pruned to the significant partial
// autocorrelations and minimizing an information criterion; the window size
// is a configurable multiple of the lag count.
//
// # Basic Usage
//
//	order, err := autoorder.Select(series, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("lags=%d d=%d window=%d\n", order.Lags, order.Differencing, order.WindowSize)
//
// If stationarity cannot be achieved within the maximum differencing order,
// selection still succeeds with the maximum order and Order.LowConfidence
// set; callers decide whether to surface the diagnostic.
package autoorder
