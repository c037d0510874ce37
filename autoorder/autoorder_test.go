package autoorder

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/recast/timeseries"
)

func arSeries(name string, n int, phi float64, seed int64) *timeseries.Series {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := 1; i < n; i++ {
		values[i] = phi*values[i-1] + rng.NormFloat64()
	}
	return timeseries.New(name, 1960, values)
}

func randomWalk(name string, n int, seed int64) *timeseries.Series {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := 1; i < n; i++ {
		values[i] = values[i-1] + rng.NormFloat64()
	}
	return timeseries.New(name, 1960, values)
}

func TestSelectStationarySeries(t *testing.T) {
	s := arSeries("ar1", 200, 0.6, 42)

	order, err := Select(s, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, order.Differencing)
	assert.GreaterOrEqual(t, order.Lags, 1)
	assert.LessOrEqual(t, order.Lags, 5)
	assert.Equal(t, order.Lags, order.WindowSize) // default multiple is 1
	assert.False(t, order.LowConfidence)
	assert.GreaterOrEqual(t, order.ModelsEvaluated, 1)
	assert.LessOrEqual(t, order.ModelsEvaluated, 5)
}

func TestLastSignificantLag(t *testing.T) {
	// Index 0 is lag zero and never counts.
	assert.Equal(t, 2, lastSignificantLag([]float64{1, 0.6, 0.3, 0.05, 0.02}, 0.14))
	assert.Equal(t, 4, lastSignificantLag([]float64{1, 0.6, 0.05, 0.02, -0.2}, 0.14))
	assert.Equal(t, 1, lastSignificantLag([]float64{1, 0.05, 0.02, 0.01}, 0.14), "no significant lag keeps the minimum grid")
}

func TestSelectPrunesLagGrid(t *testing.T) {
	// The number of AR fits must equal the PACF cap of the (here
	// undifferenced) series, not the full configured grid.
	s := arSeries("ar1", 5000, 0.8, 3)
	cfg := DefaultConfig()
	cfg.MaxLags = 40

	order, err := Select(s, cfg)
	require.NoError(t, err)
	require.Equal(t, 0, order.Differencing)

	want := pacfLagCap(s, cfg.MaxLags)
	assert.Equal(t, want, order.ModelsEvaluated)
	assert.GreaterOrEqual(t, order.Lags, 1)
	assert.LessOrEqual(t, order.Lags, want)
}

func TestSelectRandomWalk(t *testing.T) {
	s := randomWalk("rw", 200, 42)

	order, err := Select(s, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, order.Differencing)
	assert.False(t, order.LowConfidence)
}

func TestSelectDeterministic(t *testing.T) {
	s := arSeries("ar1", 150, 0.5, 9)
	a, err := Select(s, nil)
	require.NoError(t, err)
	b, err := Select(s, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSelectLowConfidenceFallback(t *testing.T) {
	// Double-integrated noise still fails the stationarity test after the
	// single allowed difference.
	rng := rand.New(rand.NewSource(7))
	values := make([]float64, 200)
	level := 0.0
	for i := 1; i < len(values); i++ {
		level += rng.NormFloat64()
		values[i] = values[i-1] + level
	}
	s := timeseries.New("i2", 1900, values)

	cfg := DefaultConfig()
	cfg.MaxD = 1
	order, err := Select(s, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, order.Differencing)
	assert.True(t, order.LowConfidence)
}

func TestSelectWindowMultiple(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WindowMultiple = 3
	order, err := Select(arSeries("ar1", 200, 0.6, 42), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3*order.Lags, order.WindowSize)
}

func TestSelectTooShort(t *testing.T) {
	_, err := Select(timeseries.New("tiny", 2000, []float64{1, 2, 3}), nil)
	assert.ErrorIs(t, err, ErrSeriesTooShort)
}

func TestSelectPanel(t *testing.T) {
	panel := timeseries.NewPanel()
	require.NoError(t, panel.Add(arSeries("A", 120, 0.5, 1)))
	require.NoError(t, panel.Add(randomWalk("B", 120, 2)))

	orders, err := SelectPanel(panel, nil)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, 0, orders["A"].Differencing)
	assert.Equal(t, 1, orders["B"].Differencing)
}
