package stats

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/recast/timeseries"
)

// ADFResult represents the result of an Augmented Dickey-Fuller test.
type ADFResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	NObs         int
	CriticalVals map[string]float64
	IsStationary bool
}

// ADF performs the Augmented Dickey-Fuller test for unit root.
// The null hypothesis is that the series has a unit root (is non-stationary).
// If p-value < 0.05, we reject the null and conclude the series is stationary.
func ADF(series *timeseries.Series, maxLag int) *ADFResult {
	n := series.Len()
	if n < 10 {
		return nil
	}

	// Default lag selection: floor of (n-1)^(1/3).
	if maxLag <= 0 {
		maxLag = int(math.Floor(math.Pow(float64(n-1), 1.0/3.0)))
	}
	if maxLag >= n-1 {
		maxLag = n - 2
	}

	diff := firstDiff(series.Values)

	// Regression: delta_y_t = alpha + beta*y_{t-1} + sum(gamma_i * delta_y_{t-i}) + eps.
	// Testing beta = 0 (unit root) against beta < 0 (stationary).
	nObs := n - maxLag - 1
	if nObs < 10 {
		return nil
	}

	k := 2 + maxLag
	x := mat.NewDense(nObs, k, nil)
	y := make([]float64, nObs)
	for i := 0; i < nObs; i++ {
		t := i + maxLag
		y[i] = diff[t]
		x.Set(i, 0, 1)
		x.Set(i, 1, series.Values[t])
		for j := 1; j <= maxLag; j++ {
			x.Set(i, 1+j, diff[t-j])
		}
	}

	coeffs, se, err := OLS(x, y)
	if err != nil || se[1] == 0 {
		return nil
	}
	tStat := coeffs[1] / se[1]

	// Approximate critical values with constant, no trend.
	criticalVals := map[string]float64{
		"1%":  -3.43,
		"5%":  -2.86,
		"10%": -2.57,
	}
	pValue := mackinnonPValue(tStat)

	return &ADFResult{
		Statistic:    tStat,
		PValue:       pValue,
		Lags:         maxLag,
		NObs:         nObs,
		CriticalVals: criticalVals,
		IsStationary: pValue < 0.05,
	}
}

// KPSSResult represents the result of a KPSS test.
type KPSSResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	CriticalVals map[string]float64
	IsStationary bool
}

// KPSS performs the Kwiatkowski-Phillips-Schmidt-Shin test for stationarity.
// The null hypothesis is that the series is stationary. regression is "c"
// for level stationarity or "ct" for trend stationarity.
func KPSS(series *timeseries.Series, regression string, nlags int) *KPSSResult {
	n := series.Len()
	if n < 10 {
		return nil
	}
	if nlags <= 0 {
		nlags = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}

	residuals := make([]float64, n)
	if regression == "ct" {
		// Linear detrend via OLS on [1, t].
		x := mat.NewDense(n, 2, nil)
		for i := 0; i < n; i++ {
			x.Set(i, 0, 1)
			x.Set(i, 1, float64(i))
		}
		coeffs, _, err := OLS(x, series.Values)
		if err != nil {
			return nil
		}
		for i, v := range series.Values {
			residuals[i] = v - coeffs[0] - coeffs[1]*float64(i)
		}
	} else {
		mean := series.Mean()
		for i, v := range series.Values {
			residuals[i] = v - mean
		}
	}

	cumSum := make([]float64, n)
	cumSum[0] = residuals[0]
	for i := 1; i < n; i++ {
		cumSum[i] = cumSum[i-1] + residuals[i]
	}

	// Long-run variance with Bartlett weights (Newey-West).
	s2 := 0.0
	for _, r := range residuals {
		s2 += r * r
	}
	s2 /= float64(n)
	for l := 1; l <= nlags; l++ {
		cov := 0.0
		for i := l; i < n; i++ {
			cov += residuals[i] * residuals[i-l]
		}
		cov /= float64(n)
		weight := 1.0 - float64(l)/float64(nlags+1)
		s2 += 2 * weight * cov
	}
	if s2 <= 0 {
		s2 = 1e-10
	}

	etaSq := 0.0
	for _, cs := range cumSum {
		etaSq += cs * cs
	}
	stat := etaSq / (float64(n) * float64(n) * s2)

	var criticalVals map[string]float64
	if regression == "ct" {
		criticalVals = map[string]float64{"10%": 0.119, "5%": 0.146, "1%": 0.216}
	} else {
		criticalVals = map[string]float64{"10%": 0.347, "5%": 0.463, "1%": 0.739}
	}
	pValue := kpssPValue(stat, regression)

	return &KPSSResult{
		Statistic:    stat,
		PValue:       pValue,
		Lags:         nlags,
		CriticalVals: criticalVals,
		IsStationary: pValue >= 0.05,
	}
}

func firstDiff(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		out[i-1] = values[i] - values[i-1]
	}
	return out
}

// mackinnonPValue approximates the ADF p-value using the MacKinnon (1994)
// response surface for the constant-only regression.
func mackinnonPValue(stat float64) float64 {
	switch {
	case stat < -3.96:
		return 0.001
	case stat < -3.43:
		return 0.01
	case stat < -2.86:
		return 0.05
	case stat < -2.57:
		return 0.10
	case stat < -1.94:
		return 0.25
	case stat < -1.62:
		return 0.50
	default:
		return math.Min(0.5+(stat+1.62)*0.25, 0.99)
	}
}

// kpssPValue approximates the KPSS p-value by interpolating the tabulated
// critical values.
func kpssPValue(stat float64, regression string) float64 {
	if regression == "ct" {
		switch {
		case stat > 0.216:
			return 0.01
		case stat > 0.146:
			return 0.05
		case stat > 0.119:
			return 0.10
		default:
			return 0.10 + (0.119-stat)*2
		}
	}
	switch {
	case stat > 0.739:
		return 0.01
	case stat > 0.463:
		return 0.05
	case stat > 0.347:
		return 0.10
	default:
		return 0.10 + (0.347-stat)*0.5
	}
}
