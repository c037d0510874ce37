package recurrent

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/recast/forecast"
	"github.com/sartorproj/recast/model"
	"github.com/sartorproj/recast/stats"
	"github.com/sartorproj/recast/timeseries"
)

// Options configures the sequence model driven by the forecaster.
type Options struct {
	LayerType   model.CellType // recurrent unit family (default: model.CellRNN)
	Units       int            // hidden units (default: 32)
	WindowSteps int            // input window length in steps (default: 4)

	// Samples is the number of stochastic forward-pass repetitions per
	// recursion; 0 falls back to the config's BootstrapSamples.
	Samples int
}

func (o *Options) normalized(cfg *forecast.Config) *Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.LayerType == "" {
		out.LayerType = model.CellRNN
	}
	if out.Units <= 0 {
		out.Units = 32
	}
	if out.WindowSteps <= 0 {
		out.WindowSteps = 4
	}
	if out.Samples <= 0 {
		out.Samples = cfg.BootstrapSamples
	}
	return &out
}

// Forecaster drives one sequence model over the joint panel matrix.
type Forecaster struct {
	cfg  *forecast.Config
	opts *Options
}

// New creates a recurrent panel forecaster. Configuration errors surface
// here, before any data is touched.
func New(cfg *forecast.Config, opts *Options) (*Forecaster, error) {
	if cfg == nil {
		cfg = forecast.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Forecaster{cfg: cfg, opts: opts.normalized(cfg)}, nil
}

// panelState is the joint differenced history: one row per time step, one
// column per entity in sorted order, plus per-entity inversion transforms.
type panelState struct {
	rows    [][]float64
	differs map[string]*stats.Differencer
}

func newPanelState(panel *timeseries.Panel, upTo, d int) (*panelState, error) {
	entities := panel.Entities()
	st := &panelState{differs: make(map[string]*stats.Differencer, len(entities))}
	cols := make([][]float64, len(entities))
	for j, name := range entities {
		s, _ := panel.Get(name)
		differ := stats.NewDifferencer(d)
		diffed, err := differ.Apply(s.Values[:upTo])
		if err != nil {
			return nil, fmt.Errorf("%w: %q has %d training observations for d=%d",
				forecast.ErrInsufficientData, name, upTo, d)
		}
		st.differs[name] = differ
		cols[j] = diffed
	}
	steps := len(cols[0])
	st.rows = make([][]float64, steps)
	for t := 0; t < steps; t++ {
		row := make([]float64, len(entities))
		for j := range entities {
			row[j] = cols[j][t]
		}
		st.rows[t] = row
	}
	return st, nil
}

func (st *panelState) clone() *panelState {
	rows := make([][]float64, len(st.rows))
	for i, r := range st.rows {
		rows[i] = append([]float64(nil), r...)
	}
	return &panelState{rows: rows, differs: st.differs}
}

// window materializes the last w rows as a dense matrix.
func (st *panelState) window(w int) *mat.Dense {
	n := len(st.rows)
	cols := len(st.rows[0])
	out := mat.NewDense(w, cols, nil)
	for i := 0; i < w; i++ {
		out.SetRow(i, st.rows[n-w+i])
	}
	return out
}

// Forecast produces one result per requested target. Unknown target names
// fail fast before any fitting.
func (f *Forecaster) Forecast(panel *timeseries.Panel, targets []string) (map[string]*forecast.Result, error) {
	cfg := f.cfg
	opts := f.opts
	if err := panel.Validate(targets); err != nil {
		return nil, err
	}
	cut, err := splitIndex(cfg.TrainSplit, panel.Length())
	if err != nil {
		return nil, err
	}
	d := 1
	if cfg.Differencing >= 0 {
		d = cfg.Differencing
	}
	entities := panel.Entities()
	testLen := panel.Length() - cut

	state, err := newPanelState(panel, cut, d)
	if err != nil {
		return nil, err
	}
	seq := model.NewRecurrent(opts.LayerType, opts.Units, cfg.Seed)
	if err := f.fit(seq, state, entities, targets); err != nil {
		return nil, err
	}

	steps := testLen
	if !cfg.RefitOnFull {
		steps += cfg.Horizon
	}
	bands, err := f.recursePaths(seq, state, entities, targets, steps)
	if err != nil {
		return nil, err
	}

	var horizonBands []*forecast.Band
	if cfg.RefitOnFull {
		fullState, err := newPanelState(panel, panel.Length(), d)
		if err != nil {
			return nil, err
		}
		if err := f.fit(seq, fullState, entities, targets); err != nil {
			return nil, err
		}
		horizonBands, err = f.recursePaths(seq, fullState, entities, targets, cfg.Horizon)
		if err != nil {
			return nil, err
		}
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

// fit trains the sequence model on sliding windows of the joint matrix.
func (f *Forecaster) fit(seq model.SequenceModel, state *panelState, entities, targets []string) error {
	w := f.opts.WindowSteps
	trainLen := len(state.rows)
	if trainLen-w < 2 {
		return fmt.Errorf("%w: %d joint rows for window of %d steps",
			forecast.ErrInsufficientData, trainLen, w)
	}
	targetCol := targetColumns(entities, targets)

	nWin := trainLen - w
	windows := make([]*mat.Dense, nWin)
	targetsMat := mat.NewDense(nWin, len(targets), nil)
	for i := 0; i < nWin; i++ {
		win := mat.NewDense(w, len(entities), nil)
		for t := 0; t < w; t++ {
			win.SetRow(t, state.rows[i+t])
		}
		windows[i] = win
		for j, col := range targetCol {
			targetsMat.Set(i, j, state.rows[i+w][col])
		}
	}
	if err := seq.Fit(windows, targetsMat); err != nil {
		return fmt.Errorf("fitting sequence model: %w", err)
	}
	return nil
}

func targetColumns(entities, targets []string) []int {
	idx := make(map[string]int, len(entities))
	for j, name := range entities {
		idx[name] = j
	}
	cols := make([]int, len(targets))
	for j, t := range targets {
		cols[j] = idx[t]
	}
	return cols
}

// rollout runs one full recursive path, deterministic when rng is nil.
// Targets advance by their predictions; other entities hold their last
// differenced value's implied continuation (zero when differenced).
func (f *Forecaster) rollout(seq model.SequenceModel, state *panelState, entities, targets []string,
	steps int, rng *rand.Rand) ([][]float64, error) {

	w := f.opts.WindowSteps
	targetCol := targetColumns(entities, targets)
	isTarget := make(map[int]int, len(targetCol)) // entity column -> target index
	for j, col := range targetCol {
		isTarget[col] = j
	}
	d := state.differs[entities[0]].Order

	st := state.clone()
	paths := make([][]float64, len(targets))
	for j := range paths {
		paths[j] = make([]float64, 0, steps)
	}
	for s := 0; s < steps; s++ {
		var pred []float64
		var err error
		if rng == nil {
			pred, err = seq.PredictVector(st.window(w))
		} else {
			pred, err = seq.PredictPerturbed(st.window(w), rng)
		}
		if err != nil {
			return nil, fmt.Errorf("recursive step %d: %w", s, err)
		}
		last := st.rows[len(st.rows)-1]
		next := make([]float64, len(entities))
		for col := range entities {
			if j, ok := isTarget[col]; ok {
				next[col] = pred[j]
			} else if d > 0 {
				next[col] = 0
			} else {
				next[col] = last[col]
			}
		}
		for j := range targets {
			paths[j] = append(paths[j], next[targetCol[j]])
		}
		st.rows = append(st.rows, next)
	}
	return paths, nil
}

// recursePaths produces per-target bands: the deterministic rollout is the
// point path, and Samples perturbed rollouts form the empirical
// distribution, each integrated to the original scale before percentiles.
func (f *Forecaster) recursePaths(seq model.SequenceModel, state *panelState,
	entities, targets []string, steps int) ([]*forecast.Band, error) {

	cfg := f.cfg
	pointPaths, err := f.rollout(seq, state, entities, targets, steps, nil)
	if err != nil {
		return nil, err
	}

	samples := f.opts.Samples
	replicates := make([][][]float64, len(targets))
	for j := range replicates {
		replicates[j] = make([][]float64, steps)
		for i := range replicates[j] {
			replicates[j][i] = make([]float64, samples)
		}
	}
	for b := 0; b < samples; b++ {
		rng := rand.New(rand.NewSource(cfg.Seed + int64(b) + 1))
		samplePaths, err := f.rollout(seq, state, entities, targets, steps, rng)
		if err != nil {
			return nil, err
		}
		for j, target := range targets {
			inverted := state.differs[target].InvertPath(samplePaths[j])
			for i, v := range inverted {
				replicates[j][i][b] = v
			}
		}
	}

	bands := make([]*forecast.Band, len(targets))
	for j, target := range targets {
		point := state.differs[target].InvertPath(pointPaths[j])
		band := &forecast.Band{
			Point: point,
			Lower: make([]float64, steps),
			Upper: make([]float64, steps),
		}
		for i := 0; i < steps; i++ {
			sort.Float64s(replicates[j][i])
			band.Lower[i] = stat.Quantile(cfg.LowerQ/100, stat.LinInterp, replicates[j][i], nil)
			band.Upper[i] = stat.Quantile(cfg.UpperQ/100, stat.LinInterp, replicates[j][i], nil)
			if band.Lower[i] > point[i] {
				band.Lower[i] = point[i]
			}
			if band.Upper[i] < point[i] {
				band.Upper[i] = point[i]
			}
		}
		bands[j] = band
	}
	return bands, nil
}

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
