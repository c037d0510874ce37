package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// constReg predicts a fixed value; Fit is a no-op.
type constReg struct{ v float64 }

func (c constReg) Fit(_ *mat.Dense, _ []float64) error { return nil }

func (c constReg) PredictOne(_ []float64) (float64, error) { return c.v, nil }

func TestFeatureRow(t *testing.T) {
	row := FeatureRow([]float64{1, 2, 3, 4, 5}, 2, 3)
	require.Len(t, row, 2+NumWindowStats)

	// Lags are most recent first, then mean/min/max over the last 3.
	assert.Equal(t, 5.0, row[0])
	assert.Equal(t, 4.0, row[1])
	assert.InDelta(t, 4.0, row[2], 1e-12)
	assert.Equal(t, 3.0, row[3])
	assert.Equal(t, 5.0, row[4])
}

func TestBuildTable(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}
	x, y, err := BuildTable(values, 2, 2)
	require.NoError(t, err)

	rows, cols := x.Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 2+NumWindowStats, cols)
	assert.Equal(t, []float64{3, 4, 5, 6}, y)
	// First row is built from history [1, 2].
	assert.Equal(t, 2.0, x.At(0, 0))
	assert.Equal(t, 1.0, x.At(0, 1))
}

func TestBuildTableTooShort(t *testing.T) {
	_, _, err := BuildTable([]float64{1, 2}, 2, 5)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestRecurseExtendsHistory(t *testing.T) {
	history := []float64{1, 2, 3}
	preds, extended, err := Recurse(constReg{v: 7}, history, 4, 2, 2)
	require.NoError(t, err)

	assert.Equal(t, []float64{7, 7, 7, 7}, preds)
	assert.Equal(t, []float64{1, 2, 3, 7, 7, 7, 7}, extended)
	assert.Equal(t, []float64{1, 2, 3}, history, "input history must not be mutated")
}

func TestResiduals(t *testing.T) {
	x := mat.NewDense(3, 2, nil)
	y := []float64{1, 2, 3}
	res, err := Residuals(constReg{v: 1}, x, y)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, res)
}
