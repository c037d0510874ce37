package multiseries

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/recast/autoorder"
	"github.com/sartorproj/recast/forecast"
	"github.com/sartorproj/recast/model"
	"github.com/sartorproj/recast/stats"
	"github.com/sartorproj/recast/timeseries"
)

// Independent fits one primitive jointly on all entities' pooled training
// rows and then recurses each entity's forecast independently with the
// shared primitive and a per-entity history buffer.
type Independent struct {
	reg model.Regressor
	cfg *forecast.Config
}

// NewIndependent creates an independent multi-series forecaster around one
// shared primitive.
func NewIndependent(reg model.Regressor, cfg *forecast.Config) (*Independent, error) {
	if cfg == nil {
		cfg = forecast.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Independent{reg: reg, cfg: cfg}, nil
}

// pooledRows holds per-entity material for joint training and recursion.
type pooledRows struct {
	differ  *stats.Differencer
	diffed  []float64
	resid   []float64
	skipped string // non-empty: diagnostic explaining exclusion
}

// Forecast trains once on the pooled supervised table and returns one
// result per entity that contributed training rows. Entities whose series
// are too short for the shared geometry are skipped with a logged
// diagnostic rather than aborting the panel.
//
// orders may carry one entry per entity or a single shared order under any
// entity's name; the pooled feature geometry uses the maximum lags and
// window across the supplied orders so one primitive can serve all series.
func (f *Independent) Forecast(panel *timeseries.Panel, orders map[string]*autoorder.Order) (map[string]*forecast.Result, error) {
	cfg := f.cfg
	entities := panel.Entities()
	if len(entities) == 0 {
		return nil, timeseries.ErrEmptyPanel
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("no orders supplied")
	}

	lags, window := 1, 1
	for _, o := range orders {
		if o.Lags > lags {
			lags = o.Lags
		}
		if o.WindowSize > window {
			window = o.WindowSize
		}
	}
	if window < lags {
		window = lags
	}
	sharedOrder := sharedOrderFor(orders)

	cut, err := splitIndex(cfg.TrainSplit, panel.Length())
	if err != nil {
		return nil, err
	}

	perEntity := make(map[string]*pooledRows, len(entities))
	x, y, rowEntity, err := f.buildPooled(panel, entities, orders, sharedOrder, perEntity, cut, lags, window)
	if err != nil {
		return nil, err
	}
	if err := f.reg.Fit(x, y); err != nil {
		return nil, fmt.Errorf("fitting pooled primitive: %w", err)
	}
	f.fillResiduals(x, y, rowEntity, perEntity)

	results := make(map[string]*forecast.Result, len(entities))
	rng := rand.New(rand.NewSource(cfg.Seed))
	for i, name := range entities {
		pe := perEntity[name]
		if pe.skipped != "" {
			continue
		}
		res, err := f.recurseEntity(panel, name, float64(i), pe, cut, lags, window, rng)
		if err != nil {
			cfg.Logger.Warn().Str("entity", name).Err(err).Msg("entity recursion failed, skipping")
			continue
		}
		results[name] = res
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no entity produced a forecast", forecast.ErrInsufficientData)
	}
	return results, nil
}

func sharedOrderFor(orders map[string]*autoorder.Order) *autoorder.Order {
	for _, o := range orders {
		return o
	}
	return nil
}

func (f *Independent) entityOrder(orders map[string]*autoorder.Order, shared *autoorder.Order, name string) *autoorder.Order {
	if o, ok := orders[name]; ok {
		return o
	}
	return shared
}

func (f *Independent) entityDifferencing(o *autoorder.Order) int {
	if f.cfg.Differencing >= 0 {
		return f.cfg.Differencing
	}
	return o.Differencing
}

// buildPooled concatenates each usable entity's supervised rows, with a
// numeric series-identifier feature appended, and records each row's owner
// for per-entity residual pooling.
func (f *Independent) buildPooled(panel *timeseries.Panel, entities []string,
	orders map[string]*autoorder.Order, shared *autoorder.Order,
	perEntity map[string]*pooledRows, cut, lags, window int) (*mat.Dense, []float64, []string, error) {

	nFeat := lags + forecast.NumWindowStats + 1
	var rows [][]float64
	var y []float64
	var rowEntity []string

	for i, name := range entities {
		s, _ := panel.Get(name)
		d := f.entityDifferencing(f.entityOrder(orders, shared, name))
		pe := &pooledRows{differ: stats.NewDifferencer(d)}
		perEntity[name] = pe

		diffed, err := pe.differ.Apply(s.Values[:cut])
		if err != nil || len(diffed)-forecast.MinHistory(lags, window) < lags+1 {
			pe.skipped = fmt.Sprintf("%s: training prefix too short for shared geometry", name)
			f.cfg.Logger.Warn().Str("entity", name).Msg("excluded from pooled training")
			continue
		}
		pe.diffed = diffed

		start := forecast.MinHistory(lags, window)
		for t := start; t < len(diffed); t++ {
			row := forecast.FeatureRow(diffed[:t], lags, window)
			row = append(row, float64(i))
			rows = append(rows, row)
			y = append(y, diffed[t])
			rowEntity = append(rowEntity, name)
		}
	}
	if len(rows) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: no entity contributed training rows", forecast.ErrInsufficientData)
	}

	x := mat.NewDense(len(rows), nFeat, nil)
	for i, row := range rows {
		x.SetRow(i, row)
	}
	return x, y, rowEntity, nil
}

// fillResiduals splits the pooled in-sample residuals back into per-entity
// bootstrap pools so each entity's bands reflect its own error scale.
func (f *Independent) fillResiduals(x *mat.Dense, y []float64, rowEntity []string, perEntity map[string]*pooledRows) {
	_, k := x.Dims()
	row := make([]float64, k)
	for i := range y {
		mat.Row(row, i, x)
		pred, err := f.reg.PredictOne(row)
		if err != nil {
			continue
		}
		pe := perEntity[rowEntity[i]]
		pe.resid = append(pe.resid, y[i]-pred)
	}
}

func (f *Independent) recurseEntity(panel *timeseries.Panel, name string, id float64,
	pe *pooledRows, cut, lags, window int, rng *rand.Rand) (*forecast.Result, error) {

	cfg := f.cfg
	s, _ := panel.Get(name)
	train := s.Slice(0, cut)
	test := s.Slice(cut, s.Len())
	result := &forecast.Result{Entity: name, Train: train, Test: test}

	tagged := taggedRegressor{reg: f.reg, id: id}
	steps := test.Len()
	if !cfg.RefitOnFull {
		steps += cfg.Horizon
	}
	diffs, _, err := forecast.Recurse(tagged, pe.diffed, steps, lags, window)
	if err != nil {
		return nil, err
	}
	band := forecast.BandFromResiduals(diffs, pe.resid, pe.differ,
		cfg.BootstrapSamples, cfg.LowerQ, cfg.UpperQ, rng)
	result.TestForecast = band.Slice(0, test.Len())
	if !cfg.RefitOnFull {
		result.HorizonForecast = band.Slice(test.Len(), band.Len())
	} else {
		// Extend this entity's history over the full observed range with the
		// shared primitive unchanged; pooled refits would couple entities
		// through the test window, which Independent deliberately avoids.
		fullDiffer := stats.NewDifferencer(pe.differ.Order)
		diffFull, err := fullDiffer.Apply(s.Values)
		if err != nil {
			return nil, err
		}
		hDiffs, _, err := forecast.Recurse(tagged, diffFull, cfg.Horizon, lags, window)
		if err != nil {
			return nil, err
		}
		result.HorizonForecast = forecast.BandFromResiduals(hDiffs, pe.resid, fullDiffer,
			cfg.BootstrapSamples, cfg.LowerQ, cfg.UpperQ, rng)
	}
	result.Evaluate()
	return result, nil
}
