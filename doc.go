// Package recast provides recursive probabilistic forecasting for panels of
// annual time series.
//
// ReCast turns any point-prediction model into a multi-horizon interval
// forecaster. A regressor is trained on lagged and rolling-window features of
// a (possibly differenced) series, driven forward recursively one step at a
// time, and wrapped in a residual bootstrap that yields calibrated prediction
// bands on the original scale. Panels of related series (for example, log
// GDP per capita across countries) can be forecast independently with a
// pooled model, many-to-one with cross-series features, many-to-many with a
// joint vector model, or with a recurrent sequence model.
//
// # Quick Start
//
// Forecast a single series with automatically selected orders:
//
//	order, _ := autoorder.Select(series, nil)
//	f, _ := forecast.New(model.NewRidge(1e-3), forecast.DefaultConfig())
//	res, _ := f.Forecast(series, order)
//	fmt.Println(res.HorizonForecast.Point)
//
// # Packages
//
// The library is organized into the following packages:
//
//   - timeseries: year-indexed series, panels, splits, and CSV loading
//   - stats: stationarity tests, differencing, autocorrelation, criteria
//   - autoorder: automatic (lags, differencing, window) selection
//   - model: point-forecast primitives (ridge, boosted stumps, recurrent)
//   - forecast: the single-series recursive interval forecaster
//   - multiseries: independent, many-to-one, and many-to-many panel schemes
//   - recurrent: sequence-model panel forecasting with Monte-Carlo bands
//
// # References
//
//   - Hyndman, R.J., & Athanasopoulos, G. (2021). Forecasting: Principles and Practice
//   - Efron, B., & Tibshirani, R. (1993). An Introduction to the Bootstrap
package recast
