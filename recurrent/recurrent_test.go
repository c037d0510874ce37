package recurrent

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/recast/forecast"
	"github.com/sartorproj/recast/model"
	"github.com/sartorproj/recast/timeseries"
)

func driftPanel(t *testing.T, n, years int, seed int64) *timeseries.Panel {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	panel := timeseries.NewPanel()
	names := []string{"AUS", "AUT", "BEL", "CAN"}
	for i := 0; i < n; i++ {
		values := make([]float64, years)
		values[0] = 8 + float64(i)
		for j := 1; j < years; j++ {
			values[j] = values[j-1] + 0.03 + 0.01*rng.NormFloat64()
		}
		require.NoError(t, panel.Add(timeseries.New(names[i], 1960, values)))
	}
	return panel
}

func testConfig() *forecast.Config {
	cfg := forecast.DefaultConfig()
	cfg.Horizon = 20
	cfg.LowerQ = 17
	cfg.UpperQ = 84
	cfg.BootstrapSamples = 50
	return cfg
}

func TestRecurrentForecastShapes(t *testing.T) {
	for _, cell := range []model.CellType{model.CellRNN, model.CellGRU} {
		panel := driftPanel(t, 3, 58, 42)
		f, err := New(testConfig(), &Options{LayerType: cell, Units: 16})
		require.NoError(t, err)

		targets := []string{"AUS", "BEL"}
		results, err := f.Forecast(panel, targets)
		require.NoError(t, err)
		require.Len(t, results, 2, "cell %s", cell)

		for _, target := range targets {
			res := results[target]
			assert.Equal(t, 12, res.Test.Len())
			require.Equal(t, 12, res.TestForecast.Len())
			require.Equal(t, 20, res.HorizonForecast.Len())
			for _, band := range []*forecast.Band{res.TestForecast, res.HorizonForecast} {
				for i := 0; i < band.Len(); i++ {
					assert.LessOrEqual(t, band.Lower[i], band.Point[i])
					assert.GreaterOrEqual(t, band.Upper[i], band.Point[i])
				}
			}
		}
	}
}

func TestRecurrentForecastReproducible(t *testing.T) {
	panel := driftPanel(t, 3, 58, 42)
	run := func() *forecast.Result {
		f, err := New(testConfig(), &Options{Units: 16})
		require.NoError(t, err)
		results, err := f.Forecast(panel, []string{"AUS"})
		require.NoError(t, err)
		return results["AUS"]
	}
	a, b := run(), run()
	assert.Equal(t, a.TestForecast, b.TestForecast)
	assert.Equal(t, a.HorizonForecast, b.HorizonForecast)
}

func TestRecurrentBandsOpenUp(t *testing.T) {
	// Stochastic forward passes must give the band nonzero width somewhere.
	panel := driftPanel(t, 3, 58, 42)
	f, err := New(testConfig(), &Options{Units: 16})
	require.NoError(t, err)

	results, err := f.Forecast(panel, []string{"AUS"})
	require.NoError(t, err)
	total := 0.0
	for _, w := range results["AUS"].HorizonForecast.Width() {
		total += w
	}
	assert.Greater(t, total, 0.0)
}

func TestRecurrentUnknownTarget(t *testing.T) {
	panel := driftPanel(t, 2, 58, 42)
	f, err := New(testConfig(), nil)
	require.NoError(t, err)

	_, err = f.Forecast(panel, []string{"NOPE"})
	assert.ErrorIs(t, err, timeseries.ErrUnknownEntity)
}

func TestRecurrentInsufficientData(t *testing.T) {
	panel := driftPanel(t, 2, 8, 42)
	cfg := testConfig()
	cfg.TrainSplit = 0.5

	f, err := New(cfg, &Options{WindowSteps: 4})
	require.NoError(t, err)
	_, err = f.Forecast(panel, []string{"AUS"})
	assert.ErrorIs(t, err, forecast.ErrInsufficientData)
}

func TestOptionsNormalized(t *testing.T) {
	cfg := testConfig()
	opts := (*Options)(nil).normalized(cfg)
	assert.Equal(t, model.CellRNN, opts.LayerType)
	assert.Equal(t, 32, opts.Units)
	assert.Equal(t, 4, opts.WindowSteps)
	assert.Equal(t, cfg.BootstrapSamples, opts.Samples)
}
