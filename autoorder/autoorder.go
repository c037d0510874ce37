package autoorder

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/sartorproj/recast/stats"
	"github.com/sartorproj/recast/timeseries"
)

// ErrSeriesTooShort is returned when a series has too few observations for
// any candidate order.
var ErrSeriesTooShort = errors.New("series too short for order selection")

// Config holds configuration for the order search.
type Config struct {
	MaxLags        int    // Maximum AR lag count to consider (default: 5)
	MaxD           int    // Maximum differencing order (default: 2)
	WindowMultiple int    // WindowSize = WindowMultiple * Lags (default: 1)
	Criterion      string // "aicc" (default), "aic", or "bic"
	StationTest    string // "kpss" (default) or "adf"
	Logger         zerolog.Logger
}

// DefaultConfig returns the default order search configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxLags:        5,
		MaxD:           2,
		WindowMultiple: 1,
		Criterion:      "aicc",
		StationTest:    "kpss",
		Logger:         zerolog.Nop(),
	}
}

func (c *Config) normalized() *Config {
	out := *c
	if out.MaxLags <= 0 {
		out.MaxLags = 5
	}
	if out.MaxD < 0 {
		out.MaxD = 2
	}
	if out.WindowMultiple <= 0 {
		out.WindowMultiple = 1
	}
	if out.Criterion == "" {
		out.Criterion = "aicc"
	}
	if out.StationTest == "" {
		out.StationTest = "kpss"
	}
	return &out
}

// Order characterizes one series' autocorrelation structure: lag count,
// differencing order, and rolling-window size.
type Order struct {
	Lags         int
	Differencing int
	WindowSize   int

	// LowConfidence is set when the stationarity test still failed at the
	// maximum differencing order and the maximum was used as a fallback.
	LowConfidence bool

	// Criterion is the information criterion value of the winning lag count.
	Criterion float64

	// ModelsEvaluated counts the AR fits attempted during the search.
	ModelsEvaluated int
}

func (o *Order) String() string {
	return fmt.Sprintf("(lags=%d, d=%d, window=%d)", o.Lags, o.Differencing, o.WindowSize)
}

// Select determines the order for a single series. A nil config selects
// defaults. Selection is deterministic for a fixed series and config.
func Select(series *timeseries.Series, cfg *Config) (*Order, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.normalized()

	if series.Len() < 4 {
		return nil, fmt.Errorf("%w: %q has %d observations", ErrSeriesTooShort, series.Name, series.Len())
	}

	d, exhausted := stats.NDiffs(series, cfg.MaxD, cfg.StationTest)
	if exhausted {
		cfg.Logger.Warn().
			Str("entity", series.Name).
			Int("max_d", cfg.MaxD).
			Msg("series not stationary at maximum differencing order, using fallback")
	}

	diff := stats.NewDifferencer(d)
	working, err := diff.Apply(series.Values)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrSeriesTooShort, series.Name)
	}

	best := &Order{
		Lags:          1,
		Differencing:  d,
		LowConfidence: exhausted,
		Criterion:     math.Inf(1),
	}
	maxLags := pacfLagCap(timeseries.New(series.Name, series.StartYear+d, working), cfg.MaxLags)
	evaluated := 0
	for p := 1; p <= maxLags; p++ {
		coeffs, residuals, err := stats.FitAR(working, p)
		if err != nil {
			break // longer lags only get worse-conditioned
		}
		evaluated++
		ic := stats.CalculateIC(stats.GaussianLogLik(residuals), len(residuals), len(coeffs)+1)
		var crit float64
		switch cfg.Criterion {
		case "bic":
			crit = ic.BIC
		case "aic":
			crit = ic.AIC
		default:
			crit = ic.AICc
		}
		if crit < best.Criterion {
			best.Lags = p
			best.Criterion = crit
		}
	}
	best.ModelsEvaluated = evaluated
	best.WindowSize = cfg.WindowMultiple * best.Lags
	if best.WindowSize < 1 {
		best.WindowSize = 1
	}

	cfg.Logger.Debug().
		Str("entity", series.Name).
		Int("lags", best.Lags).
		Int("d", best.Differencing).
		Int("window", best.WindowSize).
		Int("models", evaluated).
		Msg("order selected")
	return best, nil
}

// pacfLagCap bounds the AR search grid by the partial autocorrelation
// structure of the differenced series: an AR(p) process has insignificant
// partial autocorrelations beyond lag p, so lags past the last significant
// one cannot win the criterion search and need not be fitted.
func pacfLagCap(series *timeseries.Series, maxLags int) int {
	pacf := stats.PACF(series, maxLags)
	conf := stats.ACFWithConfidence(series, maxLags)
	if pacf == nil || conf == nil {
		return maxLags
	}
	return lastSignificantLag(pacf, conf.ConfBounds)
}

// lastSignificantLag returns the largest lag whose partial autocorrelation
// exceeds the confidence bound in magnitude, at least 1.
func lastSignificantLag(pacf []float64, bound float64) int {
	last := 1
	for k := 1; k < len(pacf); k++ {
		if math.Abs(pacf[k]) > bound {
			last = k
		}
	}
	return last
}

// SelectPanel determines orders for every series in a panel. One
// uncooperative series does not abort the batch: its error is attached to
// the returned error only if every series fails; otherwise it is logged and
// the entity is skipped.
func SelectPanel(panel *timeseries.Panel, cfg *Config) (map[string]*Order, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	orders := make(map[string]*Order, panel.NumEntities())
	var lastErr error
	for _, name := range panel.Entities() {
		s, _ := panel.Get(name)
		order, err := Select(s, cfg)
		if err != nil {
			cfg.Logger.Warn().Str("entity", name).Err(err).Msg("order selection failed, skipping entity")
			lastErr = err
			continue
		}
		orders[name] = order
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("order selection failed for all entities: %w", lastErr)
	}
	return orders, nil
}
