package forecast

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var (
	// ErrInsufficientData is returned when the training prefix leaves fewer
	// usable supervised rows than lags+1.
	ErrInsufficientData = errors.New("insufficient data for requested order and split")

	// ErrInvalidQuantile is returned for malformed percentile bounds.
	ErrInvalidQuantile = errors.New("invalid quantile bounds")

	// ErrInvalidHorizon is returned for a negative forecast horizon.
	ErrInvalidHorizon = errors.New("invalid horizon")
)

// Config holds the forecasting run configuration shared by all schemes.
type Config struct {
	TrainSplit float64 // fraction of the series used for training, in (0,1)
	Horizon    int     // steps to forecast beyond the observed range
	LowerQ     float64 // lower band percentile, in (0,100)
	UpperQ     float64 // upper band percentile, in (0,100), > LowerQ

	// BootstrapSamples is the number of residual-bootstrap repetitions per
	// step (minimum 200 by default).
	BootstrapSamples int

	// Seed drives all resampling; runs with equal seeds are reproducible.
	Seed int64

	// RefitOnFull retrains on the entire series after test evaluation so
	// horizon forecasts use all available data.
	RefitOnFull bool

	// Differencing overrides the order's differencing when >= 0.
	Differencing int

	Logger zerolog.Logger
}

// DefaultConfig returns the default forecasting configuration.
func DefaultConfig() *Config {
	return &Config{
		TrainSplit:       0.8,
		Horizon:          10,
		LowerQ:           10,
		UpperQ:           90,
		BootstrapSamples: 200,
		Seed:             1,
		RefitOnFull:      true,
		Differencing:     -1,
		Logger:           zerolog.Nop(),
	}
}

// Validate fails fast on configuration errors, before any model fitting.
func (c *Config) Validate() error {
	if c.LowerQ <= 0 || c.UpperQ >= 100 || c.LowerQ >= c.UpperQ {
		return fmt.Errorf("%w: lower=%v upper=%v", ErrInvalidQuantile, c.LowerQ, c.UpperQ)
	}
	if c.TrainSplit <= 0 || c.TrainSplit >= 1 {
		return fmt.Errorf("train split %v not in (0,1)", c.TrainSplit)
	}
	if c.Horizon < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidHorizon, c.Horizon)
	}
	if c.BootstrapSamples < 1 {
		return fmt.Errorf("bootstrap samples must be positive, got %d", c.BootstrapSamples)
	}
	return nil
}
