package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestADFStationaryVsRandomWalk(t *testing.T) {
	stationary := arSeries("ar1", 300, 0.4, 11)
	result := ADF(stationary, 0)
	require.NotNil(t, result)
	assert.True(t, result.IsStationary, "t=%v p=%v", result.Statistic, result.PValue)
	assert.Less(t, result.Statistic, 0.0)

	walk := randomWalk("rw", 300, 11)
	result = ADF(walk, 0)
	require.NotNil(t, result)
	assert.False(t, result.IsStationary, "t=%v p=%v", result.Statistic, result.PValue)
}

func TestKPSSStationaryVsRandomWalk(t *testing.T) {
	stationary := arSeries("ar1", 300, 0.4, 23)
	result := KPSS(stationary, "c", 0)
	require.NotNil(t, result)
	assert.True(t, result.IsStationary)

	walk := randomWalk("rw", 300, 23)
	result = KPSS(walk, "c", 0)
	require.NotNil(t, result)
	assert.False(t, result.IsStationary)
}

func TestADFShortSeries(t *testing.T) {
	assert.Nil(t, ADF(arSeries("ar1", 8, 0.5, 1), 0))
}
