package multiseries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/recast/autoorder"
	"github.com/sartorproj/recast/forecast"
	"github.com/sartorproj/recast/model"
	"github.com/sartorproj/recast/timeseries"
)

func sharedOrders(panel *timeseries.Panel) map[string]*autoorder.Order {
	orders := make(map[string]*autoorder.Order)
	for _, name := range panel.Entities() {
		orders[name] = &autoorder.Order{Lags: 2, Differencing: 1, WindowSize: 2}
	}
	return orders
}

func TestIndependentForecast(t *testing.T) {
	panel := driftPanel(t, 4, 58, 42)
	f, err := NewIndependent(model.NewRidge(1e-3), crossConfig())
	require.NoError(t, err)

	results, err := f.Forecast(panel, sharedOrders(panel))
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, name := range panel.Entities() {
		assertResultShape(t, results[name], 12, 50)
	}
}

func TestIndependentSingleSharedOrder(t *testing.T) {
	// One order under any entity's name serves the whole panel.
	panel := driftPanel(t, 3, 58, 7)
	f, err := NewIndependent(model.NewRidge(1e-3), crossConfig())
	require.NoError(t, err)

	orders := map[string]*autoorder.Order{
		"AUS": {Lags: 2, Differencing: 1, WindowSize: 2},
	}
	results, err := f.Forecast(panel, orders)
	require.NoError(t, err)
	require.Len(t, results, 3)
}

func TestIndependentPerEntityDifferencing(t *testing.T) {
	panel := driftPanel(t, 3, 58, 7)
	f, err := NewIndependent(model.NewGradientBoost(50), crossConfig())
	require.NoError(t, err)

	orders := sharedOrders(panel)
	orders["AUT"].Differencing = 0
	results, err := f.Forecast(panel, orders)
	require.NoError(t, err)
	assertResultShape(t, results["AUT"], 12, 50)
}

func TestIndependentPoolingKeepsResultShapes(t *testing.T) {
	// Forecasting a cluster subset out of a larger pooled panel must yield
	// the same result shapes as training on the subset alone; only the
	// numbers differ, because pooling changes the fitted primitive.
	full := driftPanel(t, 6, 58, 42)
	clusters := timeseries.ClusterAssignment{
		"AUS": 0, "AUT": 0, "BEL": 1, "CAN": 0, "CHE": 1, "DEU": 0,
	}
	subset, err := full.SubsetCluster(clusters, 0)
	require.NoError(t, err)
	require.Equal(t, 4, subset.NumEntities())

	forecastAll := func(panel *timeseries.Panel) map[string]*forecast.Result {
		f, err := NewIndependent(model.NewRidge(1e-3), crossConfig())
		require.NoError(t, err)
		results, err := f.Forecast(panel, sharedOrders(panel))
		require.NoError(t, err)
		return results
	}

	pooled := forecastAll(full)
	alone := forecastAll(subset)
	for _, name := range subset.Entities() {
		require.Contains(t, pooled, name)
		require.Contains(t, alone, name)
		assert.Equal(t, alone[name].TestForecast.Len(), pooled[name].TestForecast.Len())
		assert.Equal(t, alone[name].HorizonForecast.Len(), pooled[name].HorizonForecast.Len())
		assert.Equal(t, alone[name].Train.Len(), pooled[name].Train.Len())
	}
}

func TestIndependentNoOrders(t *testing.T) {
	panel := driftPanel(t, 2, 58, 7)
	f, err := NewIndependent(model.NewRidge(1e-3), crossConfig())
	require.NoError(t, err)

	_, err = f.Forecast(panel, nil)
	assert.Error(t, err)
}
