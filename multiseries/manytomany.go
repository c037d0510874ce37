package multiseries

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/recast/forecast"
	"github.com/sartorproj/recast/model"
	"github.com/sartorproj/recast/stats"
	"github.com/sartorproj/recast/timeseries"
)

// ManyToMany trains a single vector primitive that consumes the lagged
// values of all series and emits the next step for every target at once.
// Recursion appends the predicted vector to all target histories in one
// move, and bootstrap resampling draws joint residual vectors so
// cross-target correlation survives into the bands.
type ManyToMany struct {
	reg  model.VectorRegressor
	cfg  *forecast.Config
	opts *Options
}

// NewManyToMany creates a many-to-many forecaster around one shared vector
// primitive.
func NewManyToMany(reg model.VectorRegressor, cfg *forecast.Config, opts *Options) (*ManyToMany, error) {
	if cfg == nil {
		cfg = forecast.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ManyToMany{reg: reg, cfg: cfg, opts: opts.normalized()}, nil
}

// Forecast produces one result per requested target from a single joint
// fit. Unknown target names fail fast before any fitting.
func (f *ManyToMany) Forecast(panel *timeseries.Panel, targets []string) (map[string]*forecast.Result, error) {
	cfg := f.cfg
	if err := panel.Validate(targets); err != nil {
		return nil, err
	}
	cut, err := splitIndex(cfg.TrainSplit, panel.Length())
	if err != nil {
		return nil, err
	}
	d := defaultCrossDifferencing
	if cfg.Differencing >= 0 {
		d = cfg.Differencing
	}
	lags := f.opts.Lags
	entities := panel.Entities()

	states, err := diffStates(panel, cut, d)
	if err != nil {
		return nil, err
	}
	if trainLen := len(states[entities[0]].history); trainLen-lags < lags+1 {
		return nil, fmt.Errorf("%w: %d usable rows, need at least %d",
			forecast.ErrInsufficientData, trainLen-lags, lags+1)
	}

	x, y := buildVectorTable(states, entities, targets, lags)
	if err := f.reg.Fit(x, y); err != nil {
		return nil, fmt.Errorf("fitting vector primitive: %w", err)
	}
	residualRows, err := vectorResiduals(f.reg, x, y)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	testLen := panel.Length() - cut
	steps := testLen
	if !cfg.RefitOnFull {
		steps += cfg.Horizon
	}
	pointDiffs, err := f.recurseVector(states, entities, targets, steps, d, lags)
	if err != nil {
		return nil, err
	}
	differs := make([]*stats.Differencer, len(targets))
	for j, t := range targets {
		differs[j] = states[t].differ
	}
	bands := forecast.JointBandsFromResiduals(pointDiffs, residualRows, differs,
		cfg.BootstrapSamples, cfg.LowerQ, cfg.UpperQ, rng)

	var horizonBands []*forecast.Band
	if cfg.RefitOnFull {
		fullStates, err := diffStates(panel, panel.Length(), d)
		if err != nil {
			return nil, err
		}
		xf, yf := buildVectorTable(fullStates, entities, targets, lags)
		if err := f.reg.Fit(xf, yf); err != nil {
			return nil, fmt.Errorf("refitting vector primitive on full series: %w", err)
		}
		fullRows, err := vectorResiduals(f.reg, xf, yf)
		if err != nil {
			return nil, err
		}
		hDiffs, err := f.recurseVector(fullStates, entities, targets, cfg.Horizon, d, lags)
		if err != nil {
			return nil, err
		}
		fullDiffers := make([]*stats.Differencer, len(targets))
		for j, t := range targets {
			fullDiffers[j] = fullStates[t].differ
		}
		horizonBands = forecast.JointBandsFromResiduals(hDiffs, fullRows, fullDiffers,
			cfg.BootstrapSamples, cfg.LowerQ, cfg.UpperQ, rng)
	}

	results := make(map[string]*forecast.Result, len(targets))
	for j, target := range targets {
		s, _ := panel.Get(target)
		res := &forecast.Result{
			Entity: target,
			Train:  s.Slice(0, cut),
			Test:   s.Slice(cut, s.Len()),
		}
		res.TestForecast = bands[j].Slice(0, testLen)
		if cfg.RefitOnFull {
			res.HorizonForecast = horizonBands[j]
		} else {
			res.HorizonForecast = bands[j].Slice(testLen, bands[j].Len())
		}
		res.Evaluate()
		results[target] = res
	}
	return results, nil
}

// buildVectorTable builds the joint supervised table: cross-series lag
// features per row, one target column per requested entity.
func buildVectorTable(states map[string]*entityState, entities, targets []string, lags int) (*mat.Dense, *mat.Dense) {
	trainLen := len(states[entities[0]].history)
	rows := trainLen - lags
	x := mat.NewDense(rows, lags*len(entities), nil)
	y := mat.NewDense(rows, len(targets), nil)

	trimmed := make(map[string]*entityState, len(entities))
	for t := lags; t < trainLen; t++ {
		for _, name := range entities {
			trimmed[name] = &entityState{history: states[name].history[:t]}
		}
		x.SetRow(t-lags, crossFeatureRow(trimmed, entities, lags))
		for j, target := range targets {
			y.Set(t-lags, j, states[target].history[t])
		}
	}
	return x, y
}

// vectorResiduals computes the in-sample residual vector per training row.
func vectorResiduals(reg model.VectorRegressor, x, y *mat.Dense) ([][]float64, error) {
	n, k := x.Dims()
	_, m := y.Dims()
	rows := make([][]float64, n)
	feat := make([]float64, k)
	for i := 0; i < n; i++ {
		mat.Row(feat, i, x)
		pred, err := reg.PredictVector(feat)
		if err != nil {
			return nil, err
		}
		row := make([]float64, m)
		for j := 0; j < m; j++ {
			row[j] = y.At(i, j) - pred[j]
		}
		rows[i] = row
	}
	return rows, nil
}

// recurseVector advances all series one step at a time: targets by the
// predicted vector, remaining entities by the continuation rule.
func (f *ManyToMany) recurseVector(states map[string]*entityState, entities, targets []string,
	steps, d, lags int) ([][]float64, error) {

	targetIdx := make(map[string]int, len(targets))
	for j, t := range targets {
		targetIdx[t] = j
	}
	paths := make([][]float64, len(targets))
	for j := range paths {
		paths[j] = make([]float64, 0, steps)
	}

	for s := 0; s < steps; s++ {
		pred, err := f.reg.PredictVector(crossFeatureRow(states, entities, lags))
		if err != nil {
			return nil, fmt.Errorf("recursive step %d: %w", s, err)
		}
		for j := range targets {
			paths[j] = append(paths[j], pred[j])
		}
		for _, name := range entities {
			st := states[name]
			if j, ok := targetIdx[name]; ok {
				st.history = append(st.history, pred[j])
			} else {
				st.history = append(st.history, continuationValue(st.history, d))
			}
		}
	}
	return paths, nil
}
