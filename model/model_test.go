package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestRidgeRecoversLinearFunction(t *testing.T) {
	// y = 1 + 2a - 0.5b
	n := 50
	x := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < n; i++ {
		a, b := rng.Float64()*10, rng.Float64()*10
		x.Set(i, 0, a)
		x.Set(i, 1, b)
		y[i] = 1 + 2*a - 0.5*b
	}

	r := NewRidge(1e-8)
	require.NoError(t, r.Fit(x, y))

	pred, err := r.PredictOne([]float64{4, 2})
	require.NoError(t, err)
	assert.InDelta(t, 1+8-1, pred, 1e-4)
}

func TestRidgeErrors(t *testing.T) {
	r := NewRidge(0)
	_, err := r.PredictOne([]float64{1})
	assert.ErrorIs(t, err, ErrNotFitted)

	x := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	require.NoError(t, r.Fit(x, []float64{2, 4, 6, 8}))
	_, err = r.PredictOne([]float64{1, 2})
	assert.ErrorIs(t, err, ErrBadDimensions)

	err = r.Fit(x, []float64{1, 2})
	assert.ErrorIs(t, err, ErrNoTrainingData)
}

func TestVectorRidgeTwoTargets(t *testing.T) {
	// Target 0: 2a; target 1: 3 - a.
	n := 40
	x := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		a := float64(i) / 4
		x.Set(i, 0, a)
		y.Set(i, 0, 2*a)
		y.Set(i, 1, 3-a)
	}

	r := NewVectorRidge(1e-8)
	require.NoError(t, r.Fit(x, y))

	pred, err := r.PredictVector([]float64{5})
	require.NoError(t, err)
	require.Len(t, pred, 2)
	assert.InDelta(t, 10.0, pred[0], 1e-4)
	assert.InDelta(t, -2.0, pred[1], 1e-4)
}

func TestGradientBoostFitsStepFunction(t *testing.T) {
	n := 60
	x := mat.NewDense(n, 1, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		v := float64(i)
		x.Set(i, 0, v)
		if v < 30 {
			y[i] = -1
		} else {
			y[i] = 1
		}
	}

	g := NewGradientBoost(200)
	require.NoError(t, g.Fit(x, y))

	lo, err := g.PredictOne([]float64{10})
	require.NoError(t, err)
	hi, err := g.PredictOne([]float64{50})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, lo, 0.05)
	assert.InDelta(t, 1.0, hi, 0.05)
}

func TestGradientBoostConstantTarget(t *testing.T) {
	// No split improves on the mean, so the ensemble stays empty and
	// predicts the base value.
	x := mat.NewDense(6, 1, []float64{1, 2, 3, 4, 5, 6})
	y := []float64{4, 4, 4, 4, 4, 4}

	g := NewGradientBoost(50)
	require.NoError(t, g.Fit(x, y))
	pred, err := g.PredictOne([]float64{100})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, pred, 1e-12)
}

func seqTrainingData(t *testing.T, nWin, w, feat, nOut int, seed int64) ([]*mat.Dense, *mat.Dense) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	windows := make([]*mat.Dense, nWin)
	targets := mat.NewDense(nWin, nOut, nil)
	for i := range windows {
		win := mat.NewDense(w, feat, nil)
		for r := 0; r < w; r++ {
			for c := 0; c < feat; c++ {
				win.Set(r, c, rng.NormFloat64())
			}
		}
		windows[i] = win
		for j := 0; j < nOut; j++ {
			// Target depends on the window's final row.
			targets.Set(i, j, win.At(w-1, j%feat)+0.1*rng.NormFloat64())
		}
	}
	return windows, targets
}

func TestRecurrentDeterministicPrediction(t *testing.T) {
	for _, cell := range []CellType{CellRNN, CellGRU} {
		windows, targets := seqTrainingData(t, 40, 4, 3, 2, 17)
		m := NewRecurrent(cell, 16, 1)
		require.NoError(t, m.Fit(windows, targets))

		a, err := m.PredictVector(windows[0])
		require.NoError(t, err)
		b, err := m.PredictVector(windows[0])
		require.NoError(t, err)
		assert.Equal(t, a, b, "cell %s must be deterministic", cell)
		assert.Len(t, a, 2)
	}
}

func TestRecurrentPerturbedPrediction(t *testing.T) {
	windows, targets := seqTrainingData(t, 40, 4, 3, 1, 17)
	m := NewRecurrent(CellRNN, 16, 1)
	require.NoError(t, m.Fit(windows, targets))

	point, err := m.PredictVector(windows[0])
	require.NoError(t, err)

	a, err := m.PredictPerturbed(windows[0], rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	b, err := m.PredictPerturbed(windows[0], rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	assert.Equal(t, a, b, "same noise seed must give the same path")
	assert.NotEqual(t, point, a, "noise must move the prediction")
}

func TestRecurrentNotFitted(t *testing.T) {
	m := NewRecurrent(CellRNN, 8, 1)
	_, err := m.PredictVector(mat.NewDense(2, 2, nil))
	assert.ErrorIs(t, err, ErrNotFitted)
}
