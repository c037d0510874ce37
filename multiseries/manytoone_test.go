package multiseries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/recast/forecast"
	"github.com/sartorproj/recast/model"
	"github.com/sartorproj/recast/timeseries"
)

func newRidgeFactory() func() model.Regressor {
	return func() model.Regressor { return model.NewRidge(1e-3) }
}

func TestManyToOneForecast(t *testing.T) {
	panel := driftPanel(t, 4, 58, 42)
	f, err := NewManyToOne(newRidgeFactory(), crossConfig(), nil)
	require.NoError(t, err)

	targets := []string{"AUS", "CAN"}
	results, err := f.Forecast(panel, targets)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, target := range targets {
		assertResultShape(t, results[target], 12, 50)
	}
}

func TestManyToOneUnknownTarget(t *testing.T) {
	panel := driftPanel(t, 3, 58, 42)
	f, err := NewManyToOne(newRidgeFactory(), crossConfig(), nil)
	require.NoError(t, err)

	_, err = f.Forecast(panel, []string{"AUS", "NOPE"})
	assert.ErrorIs(t, err, timeseries.ErrUnknownEntity)
}

func TestManyToOneInsufficientData(t *testing.T) {
	panel := driftPanel(t, 3, 10, 42)
	cfg := crossConfig()
	cfg.TrainSplit = 0.5

	f, err := NewManyToOne(newRidgeFactory(), cfg, nil)
	require.NoError(t, err)
	_, err = f.Forecast(panel, []string{"AUS"})
	assert.ErrorIs(t, err, forecast.ErrInsufficientData)
}

func TestManyToOneFittedContinuation(t *testing.T) {
	panel := driftPanel(t, 4, 58, 42)
	opts := &Options{NonTargetFitted: true}
	f, err := NewManyToOne(newRidgeFactory(), crossConfig(), opts)
	require.NoError(t, err)

	results, err := f.Forecast(panel, []string{"AUS"})
	require.NoError(t, err)
	assertResultShape(t, results["AUS"], 12, 50)
}

func TestRecurseLockstepAdvancesAllHistories(t *testing.T) {
	states := map[string]*entityState{
		"A": {history: []float64{0.1, 0.2, 0.3}},
		"B": {history: []float64{1, 1, 1}},
	}
	entities := []string{"A", "B"}

	f := &ManyToOne{}
	preds, err := f.recurseLockstep(stubReg{v: 0.5}, states, entities, "A", 3, 1, 2, nil, 0)
	require.NoError(t, err)

	assert.Equal(t, []float64{0.5, 0.5, 0.5}, preds)
	// Every history grows by exactly one value per step.
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.5, 0.5, 0.5}, states["A"].history)
	assert.Equal(t, []float64{1, 1, 1, 0, 0, 0}, states["B"].history)
}

func TestBuildCrossTable(t *testing.T) {
	states := map[string]*entityState{
		"A": {history: []float64{1, 2, 3, 4}},
		"B": {history: []float64{5, 6, 7, 8}},
	}
	x, y := buildCrossTable(states, []string{"A", "B"}, "A", 2)

	rows, cols := x.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 4, cols)
	assert.Equal(t, []float64{3, 4}, y)
	// First row: lags of A then B at t=2, most recent first.
	assert.Equal(t, 2.0, x.At(0, 0))
	assert.Equal(t, 1.0, x.At(0, 1))
	assert.Equal(t, 6.0, x.At(0, 2))
	assert.Equal(t, 5.0, x.At(0, 3))
}
