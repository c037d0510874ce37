package multiseries

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/recast/forecast"
	"github.com/sartorproj/recast/model"
	"github.com/sartorproj/recast/timeseries"
)

// Options configures the cross-series schemes.
type Options struct {
	// Lags is the per-series lag count used for cross-series features
	// (default: DefaultCrossLags).
	Lags int

	// NonTargetFitted advances non-target series during recursion with
	// their own fitted single-series forecasters instead of the default
	// naive last-value continuation.
	NonTargetFitted bool
}

func (o *Options) normalized() *Options {
	out := Options{Lags: DefaultCrossLags}
	if o != nil {
		out = *o
		if out.Lags < 1 {
			out.Lags = DefaultCrossLags
		}
	}
	return &out
}

// ManyToOne trains one dedicated primitive per target entity; each target's
// features are the lagged values of every series in the panel. During
// recursion all series' histories advance in lockstep so each step can
// supply features for the next.
type ManyToOne struct {
	newReg func() model.Regressor
	cfg    *forecast.Config
	opts   *Options
}

// NewManyToOne creates a many-to-one forecaster. newReg constructs a fresh
// primitive per target, since each target exclusively owns its model.
func NewManyToOne(newReg func() model.Regressor, cfg *forecast.Config, opts *Options) (*ManyToOne, error) {
	if cfg == nil {
		cfg = forecast.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ManyToOne{newReg: newReg, cfg: cfg, opts: opts.normalized()}, nil
}

// Forecast produces one result per requested target. Unknown target names
// fail fast before any fitting.
func (f *ManyToOne) Forecast(panel *timeseries.Panel, targets []string) (map[string]*forecast.Result, error) {
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

	// Optional fitted continuation for non-targets: each entity gets its own
	// single-series predicted path on the differenced scale.
	var continuation map[string][]float64
	testLen := panel.Length() - cut
	if f.opts.NonTargetFitted {
		continuation, err = f.fitContinuations(states, entities, testLen+cfg.Horizon, lags)
		if err != nil {
			return nil, err
		}
	}

	results := make(map[string]*forecast.Result, len(targets))
	for _, target := range targets {
		res, err := f.forecastTarget(panel, target, entities, cut, d, lags, continuation)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", target, err)
		}
		results[target] = res
	}
	return results, nil
}

// buildCrossTable builds the supervised table for one target: every row's
// features are the last `lags` differenced values of all series and the
// target is the target's next differenced value.
func buildCrossTable(states map[string]*entityState, entities []string, target string, lags int) (*mat.Dense, []float64) {
	trainLen := len(states[entities[0]].history)
	rows := trainLen - lags
	x := mat.NewDense(rows, lags*len(entities), nil)
	y := make([]float64, rows)

	trimmed := make(map[string]*entityState, len(entities))
	for t := lags; t < trainLen; t++ {
		for _, name := range entities {
			trimmed[name] = &entityState{history: states[name].history[:t]}
		}
		x.SetRow(t-lags, crossFeatureRow(trimmed, entities, lags))
		y[t-lags] = states[target].history[t]
	}
	return x, y
}

// fitContinuations fits an independent single-series primitive per entity
// and records its recursive differenced path, used to advance non-targets.
func (f *ManyToOne) fitContinuations(states map[string]*entityState, entities []string, steps, lags int) (map[string][]float64, error) {
	paths := make(map[string][]float64, len(entities))
	for _, name := range entities {
		reg := f.newReg()
		x, y, err := forecast.BuildTable(states[name].history, lags, lags)
		if err != nil {
			return nil, fmt.Errorf("continuation for %q: %w", name, err)
		}
		if err := reg.Fit(x, y); err != nil {
			return nil, fmt.Errorf("continuation for %q: %w", name, err)
		}
		preds, _, err := forecast.Recurse(reg, states[name].history, steps, lags, lags)
		if err != nil {
			return nil, fmt.Errorf("continuation for %q: %w", name, err)
		}
		paths[name] = preds
	}
	return paths, nil
}

func (f *ManyToOne) forecastTarget(panel *timeseries.Panel, target string, entities []string,
	cut, d, lags int, continuation map[string][]float64) (*forecast.Result, error) {

	cfg := f.cfg
	s, _ := panel.Get(target)
	train := s.Slice(0, cut)
	test := s.Slice(cut, s.Len())
	result := &forecast.Result{Entity: target, Train: train, Test: test}

	// Fresh differenced states per target: lockstep recursion mutates them.
	states, err := diffStates(panel, cut, d)
	if err != nil {
		return nil, err
	}

	reg := f.newReg()
	x, y := buildCrossTable(states, entities, target, lags)
	if err := reg.Fit(x, y); err != nil {
		return nil, fmt.Errorf("fitting primitive: %w", err)
	}
	pool, err := forecast.Residuals(reg, x, y)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	steps := test.Len()
	if !cfg.RefitOnFull {
		steps += cfg.Horizon
	}
	diffs, err := f.recurseLockstep(reg, states, entities, target, steps, d, lags, continuation, 0)
	if err != nil {
		return nil, err
	}
	band := forecast.BandFromResiduals(diffs, pool, states[target].differ,
		cfg.BootstrapSamples, cfg.LowerQ, cfg.UpperQ, rng)
	result.TestForecast = band.Slice(0, test.Len())
	if !cfg.RefitOnFull {
		result.HorizonForecast = band.Slice(test.Len(), band.Len())
	} else {
		fullStates, err := diffStates(panel, panel.Length(), d)
		if err != nil {
			return nil, err
		}
		xf, yf := buildCrossTable(fullStates, entities, target, lags)
		if err := reg.Fit(xf, yf); err != nil {
			return nil, fmt.Errorf("refitting primitive on full series: %w", err)
		}
		fullPool, err := forecast.Residuals(reg, xf, yf)
		if err != nil {
			return nil, err
		}
		hDiffs, err := f.recurseLockstep(reg, fullStates, entities, target, cfg.Horizon, d, lags, continuation, test.Len())
		if err != nil {
			return nil, err
		}
		result.HorizonForecast = forecast.BandFromResiduals(hDiffs, fullPool, fullStates[target].differ,
			cfg.BootstrapSamples, cfg.LowerQ, cfg.UpperQ, rng)
	}
	result.Evaluate()
	return result, nil
}

// recurseLockstep advances every series' history by exactly one value per
// step: the target by its prediction, non-targets by their continuation
// rule. pathOffset skips continuation-path entries already consumed by an
// earlier recursion over the test window.
func (f *ManyToOne) recurseLockstep(reg model.Regressor, states map[string]*entityState,
	entities []string, target string, steps, d, lags int,
	continuation map[string][]float64, pathOffset int) ([]float64, error) {

	preds := make([]float64, 0, steps)
	for s := 0; s < steps; s++ {
		v, err := reg.PredictOne(crossFeatureRow(states, entities, lags))
		if err != nil {
			return nil, fmt.Errorf("recursive step %d: %w", s, err)
		}
		preds = append(preds, v)
		for _, name := range entities {
			st := states[name]
			if name == target {
				st.history = append(st.history, v)
				continue
			}
			next := continuationValue(st.history, d)
			if continuation != nil {
				if path := continuation[name]; pathOffset+s < len(path) {
					next = path[pathOffset+s]
				}
			}
			st.history = append(st.history, next)
		}
	}
	return preds, nil
}
