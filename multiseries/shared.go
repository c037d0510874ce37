package multiseries

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/recast/forecast"
	"github.com/sartorproj/recast/model"
	"github.com/sartorproj/recast/stats"
	"github.com/sartorproj/recast/timeseries"
)

// DefaultCrossLags is the per-series lag count used by the cross-series
// schemes when none is configured.
const DefaultCrossLags = 2

// defaultCrossDifferencing is applied by the cross-series schemes when the
// config carries no override; trending level data wants one difference.
const defaultCrossDifferencing = 1

// splitIndex mirrors the single-series split: floor(trainSplit * T).
func splitIndex(trainSplit float64, length int) (int, error) {
	if trainSplit <= 0 || trainSplit >= 1 {
		return 0, fmt.Errorf("%w: train split %v not in (0,1)", timeseries.ErrInvalidSplit, trainSplit)
	}
	cut := int(math.Floor(trainSplit * float64(length)))
	if cut < 1 || cut >= length {
		return 0, fmt.Errorf("%w: split %v leaves an empty partition for length %d",
			timeseries.ErrInvalidSplit, trainSplit, length)
	}
	return cut, nil
}

// entityState carries one entity's differencing transform and its
// differenced, append-only history buffer through a lockstep recursion.
type entityState struct {
	differ  *stats.Differencer
	history []float64
}

// diffStates differences each entity's first `upTo` observations at order d
// and returns per-entity state keyed by name.
func diffStates(panel *timeseries.Panel, upTo, d int) (map[string]*entityState, error) {
	states := make(map[string]*entityState, panel.NumEntities())
	for _, name := range panel.Entities() {
		s, _ := panel.Get(name)
		differ := stats.NewDifferencer(d)
		diffed, err := differ.Apply(s.Values[:upTo])
		if err != nil {
			return nil, fmt.Errorf("%w: %q has %d training observations for d=%d",
				forecast.ErrInsufficientData, name, upTo, d)
		}
		states[name] = &entityState{differ: differ, history: diffed}
	}
	return states, nil
}

// crossFeatureRow concatenates the last `lags` differenced values of every
// entity, most recent first, in sorted entity order.
func crossFeatureRow(states map[string]*entityState, entities []string, lags int) []float64 {
	row := make([]float64, 0, lags*len(entities))
	for _, name := range entities {
		h := states[name].history
		for j := 0; j < lags; j++ {
			row = append(row, h[len(h)-1-j])
		}
	}
	return row
}

// continuationValue advances a non-target entity by one step: zero on the
// differenced scale (a frozen level at d=1, a frozen slope at d=2), or the
// repeated last value for undifferenced series.
func continuationValue(h []float64, d int) float64 {
	if d > 0 {
		return 0
	}
	return h[len(h)-1]
}

// taggedRegressor adapts a pooled regressor to one entity's recursion by
// appending the entity-identifier feature to every row. Fit is never called
// through this wrapper.
type taggedRegressor struct {
	reg model.Regressor
	id  float64
}

func (t taggedRegressor) Fit(_ *mat.Dense, _ []float64) error { return nil }

func (t taggedRegressor) PredictOne(features []float64) (float64, error) {
	return t.reg.PredictOne(append(features, t.id))
}
