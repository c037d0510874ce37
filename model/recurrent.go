package model

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// CellType selects the recurrent unit family.
type CellType string

const (
	CellRNN CellType = "rnn" // tanh Elman cell
	CellGRU CellType = "gru" // gated recurrent unit
)

// Recurrent is a reservoir-style sequence model: recurrent cell weights are
// drawn once from a seeded RNG and held fixed, and only the linear readout
// from the final hidden state is fitted (by ridge regression). This keeps
// training deterministic and fast while still giving the recursion a
// stateful sequence primitive. PredictPerturbed injects Gaussian noise into
// the hidden state at every step, which is the stochastic-forward-pass
// mechanism the Monte-Carlo interval construction relies on.
type Recurrent struct {
	Cell     CellType // cell family (default: CellRNN)
	Units    int      // hidden state size (default: 32)
	Lambda   float64  // readout ridge penalty (default: 1e-3)
	NoiseStd float64  // hidden-state noise for perturbed passes (default: 0.05)
	Seed     int64    // weight initialization seed

	wIn, wRec   *mat.Dense // candidate/state weights
	wzIn, wzRec *mat.Dense // update gate (gru only)
	wrIn, wrRec *mat.Dense // reset gate (gru only)
	readout     *VectorRidge
	nFeat       int
	nOut        int
	fitted      bool
}

// NewRecurrent creates a sequence model with the given cell family and
// hidden-unit count.
func NewRecurrent(cell CellType, units int, seed int64) *Recurrent {
	if cell == "" {
		cell = CellRNN
	}
	if units <= 0 {
		units = 32
	}
	return &Recurrent{
		Cell:     cell,
		Units:    units,
		Lambda:   1e-3,
		NoiseStd: 0.05,
		Seed:     seed,
	}
}

func (m *Recurrent) initWeights(nFeat int) {
	rng := rand.New(rand.NewSource(m.Seed))
	draw := func(rows, cols int, scale float64) *mat.Dense {
		w := mat.NewDense(rows, cols, nil)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				w.Set(i, j, rng.NormFloat64()*scale)
			}
		}
		return w
	}
	inScale := 1.0 / math.Sqrt(float64(nFeat))
	// Keep the recurrent map contractive so hidden states stay bounded.
	recScale := 0.9 / math.Sqrt(float64(m.Units))

	m.wIn = draw(m.Units, nFeat, inScale)
	m.wRec = draw(m.Units, m.Units, recScale)
	if m.Cell == CellGRU {
		m.wzIn = draw(m.Units, nFeat, inScale)
		m.wzRec = draw(m.Units, m.Units, recScale)
		m.wrIn = draw(m.Units, nFeat, inScale)
		m.wrRec = draw(m.Units, m.Units, recScale)
	}
	m.nFeat = nFeat
}

// step advances the hidden state by one input row.
func (m *Recurrent) step(h, x []float64) []float64 {
	mv := func(w *mat.Dense, v []float64) []float64 {
		rows, _ := w.Dims()
		out := make([]float64, rows)
		for i := 0; i < rows; i++ {
			s := 0.0
			for j, vj := range v {
				s += w.At(i, j) * vj
			}
			out[i] = s
		}
		return out
	}

	if m.Cell == CellGRU {
		zi, zr := mv(m.wzIn, x), mv(m.wzRec, h)
		ri, rr := mv(m.wrIn, x), mv(m.wrRec, h)
		next := make([]float64, m.Units)
		gated := make([]float64, m.Units)
		z := make([]float64, m.Units)
		for i := 0; i < m.Units; i++ {
			z[i] = sigmoid(zi[i] + zr[i])
			r := sigmoid(ri[i] + rr[i])
			gated[i] = r * h[i]
		}
		ci, cr := mv(m.wIn, x), mv(m.wRec, gated)
		for i := 0; i < m.Units; i++ {
			cand := math.Tanh(ci[i] + cr[i])
			next[i] = (1-z[i])*h[i] + z[i]*cand
		}
		return next
	}

	ci, cr := mv(m.wIn, x), mv(m.wRec, h)
	next := make([]float64, m.Units)
	for i := 0; i < m.Units; i++ {
		next[i] = math.Tanh(ci[i] + cr[i])
	}
	return next
}

// encode runs a window through the cell and returns the final hidden state,
// optionally perturbing each step with Gaussian noise.
func (m *Recurrent) encode(window *mat.Dense, rng *rand.Rand) ([]float64, error) {
	steps, feat := window.Dims()
	if feat != m.nFeat {
		return nil, fmt.Errorf("%w: window has %d features, trained on %d", ErrBadDimensions, feat, m.nFeat)
	}
	h := make([]float64, m.Units)
	x := make([]float64, feat)
	for t := 0; t < steps; t++ {
		mat.Row(x, t, window)
		h = m.step(h, x)
		if rng != nil && m.NoiseStd > 0 {
			for i := range h {
				h[i] += rng.NormFloat64() * m.NoiseStd
			}
		}
	}
	return h, nil
}

// Fit encodes every training window and fits the ridge readout from final
// hidden states to next-step target vectors.
func (m *Recurrent) Fit(windows []*mat.Dense, targets *mat.Dense) error {
	if len(windows) == 0 {
		return ErrNoTrainingData
	}
	tn, nOut := targets.Dims()
	if tn != len(windows) {
		return fmt.Errorf("%w: %d windows, %d targets", ErrBadDimensions, len(windows), tn)
	}

	_, feat := windows[0].Dims()
	m.initWeights(feat)

	states := mat.NewDense(len(windows), m.Units, nil)
	for i, w := range windows {
		h, err := m.encode(w, nil)
		if err != nil {
			return err
		}
		states.SetRow(i, h)
	}

	m.readout = NewVectorRidge(m.Lambda)
	if err := m.readout.Fit(states, targets); err != nil {
		return err
	}
	m.nOut = nOut
	m.fitted = true
	return nil
}

// PredictVector runs one deterministic forward pass.
func (m *Recurrent) PredictVector(window *mat.Dense) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	h, err := m.encode(window, nil)
	if err != nil {
		return nil, err
	}
	return m.readout.PredictVector(h)
}

// PredictPerturbed runs one stochastic forward pass with hidden-state noise
// drawn from rng.
func (m *Recurrent) PredictPerturbed(window *mat.Dense, rng *rand.Rand) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	h, err := m.encode(window, rng)
	if err != nil {
		return nil, err
	}
	return m.readout.PredictVector(h)
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}
