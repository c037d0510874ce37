// Command demo runs the ReCast forecasting engine against a wide-format
// panel CSV (year column plus one column per country) and writes forecast
// bands as JSON for downstream plotting.
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sartorproj/recast/autoorder"
	"github.com/sartorproj/recast/forecast"
	"github.com/sartorproj/recast/model"
	"github.com/sartorproj/recast/multiseries"
	"github.com/sartorproj/recast/recurrent"
	"github.com/sartorproj/recast/timeseries"
)

var logger zerolog.Logger

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "recast-demo",
		Short:         "Probabilistic panel forecasting demo",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd.Flags())
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "optional YAML config file")
	pf.String("data", "gdp.csv", "wide-format panel CSV (year, one column per entity)")
	pf.String("clusters", "", "optional cluster-label CSV (entity, cluster)")
	pf.Bool("log-apply", true, "apply natural log to loaded values")
	pf.String("log-level", "info", "zerolog level")
	pf.Float64("train-split", 0.8, "training fraction in (0,1)")
	pf.Int("horizon", 50, "forecast steps beyond the observed range")
	pf.Float64("lower-q", 17, "lower band percentile")
	pf.Float64("upper-q", 84, "upper band percentile")
	pf.Int("samples", 200, "bootstrap repetitions")
	pf.Int64("seed", 1, "resampling seed")

	root.AddCommand(newOrdersCmd(), newForecastCmd())
	return root
}

func initConfig(flags *pflag.FlagSet) error {
	if err := viper.BindPFlags(flags); err != nil {
		return err
	}
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	viper.SetEnvPrefix("RECAST")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
	return nil
}

func loadPanel() (*timeseries.Panel, error) {
	opts := timeseries.DefaultCSVOptions()
	opts.ApplyLog = viper.GetBool("log-apply")
	panel, err := timeseries.LoadPanelCSV(viper.GetString("data"), opts)
	if err != nil {
		return nil, fmt.Errorf("loading panel: %w", err)
	}
	logger.Info().
		Int("entities", panel.NumEntities()).
		Int("years", panel.Length()).
		Msg("panel loaded")

	if clusterFile := viper.GetString("clusters"); clusterFile != "" {
		clusters, err := timeseries.LoadClusterCSV(clusterFile)
		if err != nil {
			return nil, fmt.Errorf("loading clusters: %w", err)
		}
		if id := viper.GetInt("cluster"); viper.IsSet("cluster") {
			return panel.SubsetCluster(clusters, id)
		}
	}
	return panel, nil
}

func runConfig() *forecast.Config {
	cfg := forecast.DefaultConfig()
	cfg.TrainSplit = viper.GetFloat64("train-split")
	cfg.Horizon = viper.GetInt("horizon")
	cfg.LowerQ = viper.GetFloat64("lower-q")
	cfg.UpperQ = viper.GetFloat64("upper-q")
	cfg.BootstrapSamples = viper.GetInt("samples")
	cfg.Seed = viper.GetInt64("seed")
	cfg.Logger = logger
	return cfg
}

func newOrdersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "Select (lags, differencing, window) per entity",
		RunE: func(_ *cobra.Command, _ []string) error {
			panel, err := loadPanel()
			if err != nil {
				return err
			}
			ocfg := autoorder.DefaultConfig()
			ocfg.Logger = logger
			orders, err := autoorder.SelectPanel(panel, ocfg)
			if err != nil {
				return err
			}
			for _, name := range panel.Entities() {
				if o, ok := orders[name]; ok {
					flag := ""
					if o.LowConfidence {
						flag = "  [low confidence]"
					}
					fmt.Printf("%-32s %s%s\n", name, o, flag)
				}
			}
			return nil
		},
	}
}

// bandJSON is the export shape consumed by the plotting scripts.
type bandJSON struct {
	Point []float64 `json:"point"`
	Lower []float64 `json:"lower"`
	Upper []float64 `json:"upper"`
}

type resultJSON struct {
	Entity      string    `json:"entity"`
	Train       []float64 `json:"train"`
	Test        []float64 `json:"test"`
	TestBand    bandJSON  `json:"test_forecast"`
	HorizonBand bandJSON  `json:"horizon_forecast"`
	RMSE        float64   `json:"rmse"`
	MAE         float64   `json:"mae"`
	MAPE        float64   `json:"mape"`
	Coverage    float64   `json:"coverage"`
	Diagnostics []string  `json:"diagnostics,omitempty"`
}

func toJSON(res *forecast.Result) resultJSON {
	band := func(b *forecast.Band) bandJSON {
		return bandJSON{Point: b.Point, Lower: b.Lower, Upper: b.Upper}
	}
	return resultJSON{
		Entity:      res.Entity,
		Train:       res.Train.Values,
		Test:        res.Test.Values,
		TestBand:    band(res.TestForecast),
		HorizonBand: band(res.HorizonForecast),
		RMSE:        res.RMSE,
		MAE:         res.MAE,
		MAPE:        res.MAPE,
		Coverage:    res.Coverage,
		Diagnostics: res.Diagnostics,
	}
}

func newForecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Run one of the forecasting schemes over the panel",
		RunE:  runForecast,
	}
	f := cmd.Flags()
	f.String("mode", "single", "single | independent | manytoone | manytomany | recurrent")
	f.StringSlice("targets", nil, "target entities (default: all)")
	f.Int("cluster", 0, "restrict the panel to one cluster id (needs --clusters)")
	f.String("primitive", "boost", "point primitive: boost | ridge")
	f.Int("lags", 2, "per-series lags for cross-series modes")
	f.String("layer-type", "rnn", "recurrent cell family: rnn | gru")
	f.Int("units", 32, "recurrent hidden units")
	f.String("out", "forecast.json", "output JSON file")
	f.String("csv-out", "", "optional long-format CSV of the forecast bands")
	return cmd
}

// writeBandsCSV writes every result's bands in long format: one row per
// entity, segment, and year.
func writeBandsCSV(filename string, panel *timeseries.Panel, results map[string]*forecast.Result) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()
	if err := w.Write([]string{"entity", "segment", "year", "point", "lower", "upper"}); err != nil {
		return err
	}

	ff := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, name := range panel.Entities() {
		res, ok := results[name]
		if !ok {
			continue
		}
		testStart := res.Test.StartYear
		for i := 0; i < res.TestForecast.Len(); i++ {
			row := []string{name, "test", strconv.Itoa(testStart + i),
				ff(res.TestForecast.Point[i]), ff(res.TestForecast.Lower[i]), ff(res.TestForecast.Upper[i])}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		horizonStart := res.Test.EndYear() + 1
		for i := 0; i < res.HorizonForecast.Len(); i++ {
			row := []string{name, "horizon", strconv.Itoa(horizonStart + i),
				ff(res.HorizonForecast.Point[i]), ff(res.HorizonForecast.Lower[i]), ff(res.HorizonForecast.Upper[i])}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

func newPrimitive() model.Regressor {
	if viper.GetString("primitive") == "ridge" {
		return model.NewRidge(1e-3)
	}
	return model.NewGradientBoost(100)
}

func runForecast(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	panel, err := loadPanel()
	if err != nil {
		return err
	}
	cfg := runConfig()
	targets := viper.GetStringSlice("targets")
	if len(targets) == 0 {
		targets = panel.Entities()
	}

	var results map[string]*forecast.Result
	mode := viper.GetString("mode")
	switch mode {
	case "single":
		results, err = runSingle(panel, targets, cfg)
	case "independent":
		ocfg := autoorder.DefaultConfig()
		ocfg.Logger = logger
		orders, oerr := autoorder.SelectPanel(panel, ocfg)
		if oerr != nil {
			return oerr
		}
		ind, ierr := multiseries.NewIndependent(newPrimitive(), cfg)
		if ierr != nil {
			return ierr
		}
		results, err = ind.Forecast(panel, orders)
	case "manytoone":
		opts := &multiseries.Options{Lags: viper.GetInt("lags")}
		mto, merr := multiseries.NewManyToOne(newPrimitive, cfg, opts)
		if merr != nil {
			return merr
		}
		results, err = mto.Forecast(panel, targets)
	case "manytomany":
		opts := &multiseries.Options{Lags: viper.GetInt("lags")}
		mtm, merr := multiseries.NewManyToMany(model.NewVectorRidge(1e-3), cfg, opts)
		if merr != nil {
			return merr
		}
		results, err = mtm.Forecast(panel, targets)
	case "recurrent":
		opts := &recurrent.Options{
			LayerType: model.CellType(viper.GetString("layer-type")),
			Units:     viper.GetInt("units"),
		}
		rec, rerr := recurrent.New(cfg, opts)
		if rerr != nil {
			return rerr
		}
		results, err = rec.Forecast(panel, targets)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		return err
	}

	out := make([]resultJSON, 0, len(results))
	for _, name := range panel.Entities() {
		if res, ok := results[name]; ok {
			out = append(out, toJSON(res))
			logger.Info().
				Str("entity", name).
				Float64("rmse", res.RMSE).
				Float64("coverage", res.Coverage).
				Msg("forecast")
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	outFile := viper.GetString("out")
	if err := os.WriteFile(outFile, data, 0o644); err != nil {
		return err
	}
	logger.Info().Str("file", outFile).Int("results", len(out)).Msg("wrote forecasts")

	if csvFile := viper.GetString("csv-out"); csvFile != "" {
		if err := writeBandsCSV(csvFile, panel, results); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
		logger.Info().Str("file", csvFile).Msg("wrote forecast bands")
	}
	return nil
}

func runSingle(panel *timeseries.Panel, targets []string, cfg *forecast.Config) (map[string]*forecast.Result, error) {
	if err := panel.Validate(targets); err != nil {
		return nil, err
	}
	ocfg := autoorder.DefaultConfig()
	ocfg.Logger = logger
	results := make(map[string]*forecast.Result, len(targets))
	for _, name := range targets {
		s, _ := panel.Get(name)
		order, err := autoorder.Select(s, ocfg)
		if err != nil {
			logger.Warn().Str("entity", name).Err(err).Msg("order selection failed, skipping")
			continue
		}
		f, err := forecast.New(newPrimitive(), cfg)
		if err != nil {
			return nil, err
		}
		res, err := f.Forecast(s, order)
		if err != nil {
			logger.Warn().Str("entity", name).Err(err).Msg("forecast failed, skipping")
			continue
		}
		results[name] = res
	}
	return results, nil
}
