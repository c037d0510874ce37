package stats

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestOLSRecoversLinearModel(t *testing.T) {
	// y = 2 + 3*x, noise-free.
	n := 30
	x := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		xi := float64(i)
		x.Set(i, 0, 1)
		x.Set(i, 1, xi)
		y[i] = 2 + 3*xi
	}

	coeffs, stdErrors, err := OLS(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, coeffs[0], 1e-8)
	assert.InDelta(t, 3.0, coeffs[1], 1e-8)
	assert.InDelta(t, 0.0, stdErrors[1], 1e-6)
}

func TestOLSSingularDesign(t *testing.T) {
	// Two identical columns cannot be solved.
	n := 20
	x := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x.Set(i, 0, float64(i))
		x.Set(i, 1, float64(i))
		y[i] = float64(i)
	}

	_, _, err := OLS(x, y)
	assert.ErrorIs(t, err, ErrSingularDesign)
}

func TestFitARRecoversCoefficients(t *testing.T) {
	// AR(2): y_t = 1 + 0.6 y_{t-1} - 0.2 y_{t-2} + eps.
	rng := rand.New(rand.NewSource(99))
	n := 2000
	values := make([]float64, n)
	for i := 2; i < n; i++ {
		values[i] = 1 + 0.6*values[i-1] - 0.2*values[i-2] + 0.1*rng.NormFloat64()
	}

	coeffs, residuals, err := FitAR(values, 2)
	require.NoError(t, err)
	require.Len(t, coeffs, 3)
	assert.InDelta(t, 1.0, coeffs[0], 0.1)
	assert.InDelta(t, 0.6, coeffs[1], 0.05)
	assert.InDelta(t, -0.2, coeffs[2], 0.05)
	assert.Len(t, residuals, n-2)
}

func TestFitARInsufficientData(t *testing.T) {
	_, _, err := FitAR([]float64{1, 2, 3, 4}, 3)
	assert.Error(t, err)
}
