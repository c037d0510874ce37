// Package stats provides statistical tests and transforms for time series.
//
// This package includes stationarity tests, differencing analysis, the
// reversible Differencer transform, autocorrelation functions, rolling-window
// statistics, and information criteria used by the order search.
//
// # Stationarity Tests
//
// Test whether a time series is stationary:
//
//	// Augmented Dickey-Fuller test
//	// H0: Series has unit root (non-stationary)
//	adf := stats.ADF(series, 0)
//	fmt.Printf("ADF: stat=%.4f, p=%.4f, stationary=%v\n",
//	    adf.Statistic, adf.PValue, adf.IsStationary)
//
//	// KPSS test (recommended)
//	// H0: Series is stationary
//	kpss := stats.KPSS(series, "c", 0)
//
// # Differencing
//
// Determine how many first differences a series needs, and apply them
// reversibly:
//
//	d, exhausted := stats.NDiffs(series, 2, "kpss")
//
//	diff := stats.NewDifferencer(d)
//	stationary, _ := diff.Apply(series.Values)
//	// ... forecast on the differenced scale ...
//	original := diff.InvertPath(futurePath)
//
// # Autocorrelation Functions
//
//	acf := stats.ACF(series, 20)
//	pacf := stats.PACF(series, 20)
//	acfResult := stats.ACFWithConfidence(series, 20)
package stats
