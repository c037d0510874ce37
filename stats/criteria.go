package stats

import "math"

// InformationCriteria holds AIC, AICc, and BIC for a fitted model.
type InformationCriteria struct {
	AIC    float64
	AICc   float64
	BIC    float64
	LogLik float64
}

// CalculateIC calculates all information criteria from a log-likelihood,
// observation count, and parameter count.
func CalculateIC(logLik float64, nObs, nParams int) *InformationCriteria {
	k := float64(nParams)
	n := float64(nObs)

	aic := -2*logLik + 2*k
	bic := -2*logLik + k*math.Log(n)

	aicc := math.Inf(1)
	if n-k-1 > 0 {
		aicc = aic + 2*k*(k+1)/(n-k-1)
	}

	return &InformationCriteria{
		AIC:    aic,
		AICc:   aicc,
		BIC:    bic,
		LogLik: logLik,
	}
}

// GaussianLogLik computes the Gaussian log-likelihood of a residual vector.
func GaussianLogLik(residuals []float64) float64 {
	n := len(residuals)
	if n == 0 {
		return math.Inf(-1)
	}
	sse := 0.0
	for _, r := range residuals {
		sse += r * r
	}
	variance := sse / float64(n)
	if variance <= 0 {
		return math.Inf(-1)
	}
	nf := float64(n)
	return -nf/2*math.Log(2*math.Pi) - nf/2*math.Log(variance) - sse/(2*variance)
}
