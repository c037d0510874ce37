package model

import (
	"errors"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotFitted      = errors.New("model has not been fitted")
	ErrNoTrainingData = errors.New("no training data")
	ErrBadDimensions  = errors.New("feature dimensions do not match training data")
)

// Regressor is a scalar point-forecast primitive: it learns a mapping from
// feature rows to a scalar target and predicts one value at a time.
type Regressor interface {
	Fit(x *mat.Dense, y []float64) error
	PredictOne(features []float64) (float64, error)
}

// VectorRegressor learns a mapping from feature rows to target vectors and
// predicts one vector at a time. Used by the many-to-many scheme.
type VectorRegressor interface {
	Fit(x *mat.Dense, y *mat.Dense) error
	PredictVector(features []float64) ([]float64, error)
}

// SequenceModel consumes windows of multi-series rows (steps x features) and
// emits a next-step vector. PredictPerturbed re-runs the forward pass under
// stochastic perturbation for Monte-Carlo interval construction.
type SequenceModel interface {
	Fit(windows []*mat.Dense, targets *mat.Dense) error
	PredictVector(window *mat.Dense) ([]float64, error)
	PredictPerturbed(window *mat.Dense, rng *rand.Rand) ([]float64, error)
}
