package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrSingularDesign is returned when a regression design matrix cannot be
// solved.
var ErrSingularDesign = errors.New("singular design matrix")

// OLS fits y = X*beta by ordinary least squares and returns the coefficients
// and their standard errors.
func OLS(x *mat.Dense, y []float64) (coeffs, stdErrors []float64, err error) {
	n, k := x.Dims()
	if n == 0 || n != len(y) {
		return nil, nil, errors.New("design matrix and response length mismatch")
	}
	if n <= k {
		return nil, nil, errors.New("more regressors than observations")
	}

	yv := mat.NewVecDense(n, y)

	var xtx mat.SymDense
	xtx.SymOuterK(1, x.T())
	var chol mat.Cholesky
	if !chol.Factorize(&xtx) {
		return nil, nil, ErrSingularDesign
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), yv)

	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &xty); err != nil {
		return nil, nil, ErrSingularDesign
	}

	// Residual variance for the standard errors.
	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	sse := 0.0
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		sse += r * r
	}
	s2 := sse / float64(n-k)

	var xtxInv mat.SymDense
	if err := chol.InverseTo(&xtxInv); err != nil {
		return nil, nil, ErrSingularDesign
	}

	coeffs = make([]float64, k)
	stdErrors = make([]float64, k)
	for i := 0; i < k; i++ {
		coeffs[i] = beta.AtVec(i)
		stdErrors[i] = math.Sqrt(s2 * xtxInv.At(i, i))
	}
	return coeffs, stdErrors, nil
}

// FitAR fits an AR(p) model with intercept to values by OLS and returns the
// coefficients (intercept first) and the residuals.
func FitAR(values []float64, p int) (coeffs, residuals []float64, err error) {
	n := len(values)
	if p < 1 {
		return nil, nil, errors.New("AR order must be positive")
	}
	if n-p <= p+1 {
		return nil, nil, errors.New("insufficient observations for AR order")
	}

	rows := n - p
	x := mat.NewDense(rows, p+1, nil)
	y := make([]float64, rows)
	for i := 0; i < rows; i++ {
		t := i + p
		x.Set(i, 0, 1)
		for j := 1; j <= p; j++ {
			x.Set(i, j, values[t-j])
		}
		y[i] = values[t]
	}

	coeffs, _, err = OLS(x, y)
	if err != nil {
		return nil, nil, err
	}

	residuals = make([]float64, rows)
	for i := 0; i < rows; i++ {
		pred := coeffs[0]
		for j := 1; j <= p; j++ {
			pred += coeffs[j] * values[i+p-j]
		}
		residuals[i] = y[i] - pred
	}
	return coeffs, residuals, nil
}
