package multiseries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/recast/forecast"
	"github.com/sartorproj/recast/model"
	"github.com/sartorproj/recast/timeseries"
)

func TestManyToManyForecast(t *testing.T) {
	panel := driftPanel(t, 4, 58, 42)
	f, err := NewManyToMany(model.NewVectorRidge(1e-3), crossConfig(), nil)
	require.NoError(t, err)

	targets := []string{"AUS", "AUT", "CAN"}
	results, err := f.Forecast(panel, targets)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, target := range targets {
		assertResultShape(t, results[target], 12, 50)
	}
}

func TestManyToManyUnknownTarget(t *testing.T) {
	panel := driftPanel(t, 3, 58, 42)
	f, err := NewManyToMany(model.NewVectorRidge(1e-3), crossConfig(), nil)
	require.NoError(t, err)

	_, err = f.Forecast(panel, []string{"NOPE"})
	assert.ErrorIs(t, err, timeseries.ErrUnknownEntity)
}

func TestManyToManyInsufficientData(t *testing.T) {
	panel := driftPanel(t, 3, 10, 42)
	cfg := crossConfig()
	cfg.TrainSplit = 0.5

	f, err := NewManyToMany(model.NewVectorRidge(1e-3), cfg, nil)
	require.NoError(t, err)
	_, err = f.Forecast(panel, []string{"AUS"})
	assert.ErrorIs(t, err, forecast.ErrInsufficientData)
}

func TestBuildVectorTable(t *testing.T) {
	states := map[string]*entityState{
		"A": {history: []float64{1, 2, 3, 4}},
		"B": {history: []float64{5, 6, 7, 8}},
	}
	x, y := buildVectorTable(states, []string{"A", "B"}, []string{"A", "B"}, 2)

	rows, cols := x.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 4, cols)
	yr, yc := y.Dims()
	assert.Equal(t, 2, yr)
	assert.Equal(t, 2, yc)
	assert.Equal(t, 3.0, y.At(0, 0))
	assert.Equal(t, 7.0, y.At(0, 1))
}

func TestRecurseVectorLockstep(t *testing.T) {
	states := map[string]*entityState{
		"A": {history: []float64{0.1, 0.2}},
		"B": {history: []float64{1, 1}},
		"C": {history: []float64{2, 2}},
	}
	entities := []string{"A", "B", "C"}

	reg := model.NewVectorRidge(1e-3)
	// Train on a trivial table so the primitive is fitted; the assertions
	// only concern the recursion bookkeeping.
	x, y := buildVectorTable(map[string]*entityState{
		"A": {history: []float64{1, 2, 3, 4, 5}},
		"B": {history: []float64{1, 2, 3, 4, 5}},
		"C": {history: []float64{1, 2, 3, 4, 5}},
	}, entities, []string{"A", "B"}, 2)
	require.NoError(t, reg.Fit(x, y))

	f := &ManyToMany{reg: reg}
	paths, err := f.recurseVector(states, entities, []string{"A", "B"}, 4, 1, 2)
	require.NoError(t, err)

	require.Len(t, paths, 2)
	assert.Len(t, paths[0], 4)
	assert.Len(t, paths[1], 4)
	// Targets advance by predictions, the non-target by the frozen-level rule.
	assert.Len(t, states["A"].history, 6)
	assert.Len(t, states["B"].history, 6)
	assert.Equal(t, []float64{2, 2, 0, 0, 0, 0}, states["C"].history)
}
