package forecast

import (
	"fmt"
	"math/rand"

	"github.com/sartorproj/recast/autoorder"
	"github.com/sartorproj/recast/model"
	"github.com/sartorproj/recast/stats"
	"github.com/sartorproj/recast/timeseries"
)

// Forecaster drives one point-prediction primitive recursively over a
// single series and constructs bootstrap interval bands. The primitive is
// exclusively owned by the forecaster for the duration of a call; nothing
// is retained across calls.
type Forecaster struct {
	reg model.Regressor
	cfg *Config
}

// New creates a single-series forecaster. Configuration errors surface here,
// before any data is touched.
func New(reg model.Regressor, cfg *Config) (*Forecaster, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Forecaster{reg: reg, cfg: cfg}, nil
}

// Forecast runs the full procedure for one series: split, difference, fit,
// recursive test-window prediction, optional refit on the full series, and
// horizon prediction, each with residual-bootstrap bands on the original
// scale.
func (f *Forecaster) Forecast(series *timeseries.Series, order *autoorder.Order) (*Result, error) {
	cfg := f.cfg
	train, test, err := series.Split(cfg.TrainSplit)
	if err != nil {
		return nil, err
	}

	d := order.Differencing
	if cfg.Differencing >= 0 {
		d = cfg.Differencing
	}
	lags := order.Lags
	if lags < 1 {
		lags = 1
	}
	window := order.WindowSize
	if window < lags {
		window = lags
	}

	result := &Result{Entity: series.Name, Train: train, Test: test}
	if order.LowConfidence {
		msg := fmt.Sprintf("%s: order selection exhausted differencing search at d=%d", series.Name, d)
		result.Diagnostics = append(result.Diagnostics, msg)
		cfg.Logger.Warn().Str("entity", series.Name).Int("d", d).Msg("forecasting with low-confidence order")
	}

	differ := stats.NewDifferencer(d)
	diffTrain, err := differ.Apply(train.Values)
	if err != nil {
		return nil, fmt.Errorf("%w: training prefix of %d too short for d=%d",
			ErrInsufficientData, train.Len(), d)
	}
	if usable := len(diffTrain) - MinHistory(lags, window); usable < lags+1 {
		return nil, fmt.Errorf("%w: %d usable rows, need at least %d",
			ErrInsufficientData, usable, lags+1)
	}

	x, y, err := BuildTable(diffTrain, lags, window)
	if err != nil {
		return nil, err
	}
	if err := f.reg.Fit(x, y); err != nil {
		return nil, fmt.Errorf("fitting primitive: %w", err)
	}
	residualPool, err := Residuals(f.reg, x, y)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	// Test-window recursion; without refit the horizon continues the same
	// feedback loop, so predict both ranges in one pass.
	steps := test.Len()
	if !cfg.RefitOnFull {
		steps += cfg.Horizon
	}
	diffs, _, err := Recurse(f.reg, diffTrain, steps, lags, window)
	if err != nil {
		return nil, err
	}
	band := BandFromResiduals(diffs, residualPool, differ, cfg.BootstrapSamples, cfg.LowerQ, cfg.UpperQ, rng)
	result.TestForecast = band.Slice(0, test.Len())
	if !cfg.RefitOnFull {
		result.HorizonForecast = band.Slice(test.Len(), band.Len())
	}
	result.Evaluate()

	if cfg.RefitOnFull {
		// Retrain on the entire observed series so horizon forecasts use all
		// data, while the reported test accuracy stays honest.
		fullDiffer := stats.NewDifferencer(d)
		diffFull, err := fullDiffer.Apply(series.Values)
		if err != nil {
			return nil, fmt.Errorf("%w: series of %d too short for d=%d",
				ErrInsufficientData, series.Len(), d)
		}
		xf, yf, err := BuildTable(diffFull, lags, window)
		if err != nil {
			return nil, err
		}
		if err := f.reg.Fit(xf, yf); err != nil {
			return nil, fmt.Errorf("refitting primitive on full series: %w", err)
		}
		fullPool, err := Residuals(f.reg, xf, yf)
		if err != nil {
			return nil, err
		}
		hDiffs, _, err := Recurse(f.reg, diffFull, cfg.Horizon, lags, window)
		if err != nil {
			return nil, err
		}
		result.HorizonForecast = BandFromResiduals(hDiffs, fullPool, fullDiffer,
			cfg.BootstrapSamples, cfg.LowerQ, cfg.UpperQ, rng)
	}

	cfg.Logger.Debug().
		Str("entity", series.Name).
		Int("test_steps", result.TestForecast.Len()).
		Int("horizon_steps", result.HorizonForecast.Len()).
		Float64("rmse", result.RMSE).
		Float64("coverage", result.Coverage).
		Msg("forecast complete")
	return result, nil
}
