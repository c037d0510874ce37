package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Ridge is a linear regressor with L2 regularization, solved in closed form
// with a Cholesky factorization of the augmented normal equations. The
// intercept column is appended internally and left unpenalized in effect by
// the small default lambda.
type Ridge struct {
	Lambda float64

	coeffs *mat.VecDense
	nFeat  int
	fitted bool
}

// NewRidge creates a ridge regressor. lambda <= 0 selects a small default.
func NewRidge(lambda float64) *Ridge {
	if lambda <= 0 {
		lambda = 1e-6
	}
	return &Ridge{Lambda: lambda}
}

// Fit solves (X'X + lambda*I) beta = X'y on the intercept-augmented design.
func (r *Ridge) Fit(x *mat.Dense, y []float64) error {
	n, k := x.Dims()
	if n == 0 || n != len(y) {
		return ErrNoTrainingData
	}

	aug := augmentIntercept(x)
	kk := k + 1

	var xtx mat.SymDense
	xtx.SymOuterK(1, aug.T())
	for i := 0; i < kk; i++ {
		xtx.SetSym(i, i, xtx.At(i, i)+r.Lambda)
	}

	var chol mat.Cholesky
	if !chol.Factorize(&xtx) {
		return fmt.Errorf("ridge fit: %w", ErrNoTrainingData)
	}

	var xty mat.VecDense
	xty.MulVec(aug.T(), mat.NewVecDense(n, y))

	coeffs := mat.NewVecDense(kk, nil)
	if err := chol.SolveVecTo(coeffs, &xty); err != nil {
		return fmt.Errorf("ridge fit: %w", err)
	}

	r.coeffs = coeffs
	r.nFeat = k
	r.fitted = true
	return nil
}

// PredictOne returns the fitted linear combination for one feature row.
func (r *Ridge) PredictOne(features []float64) (float64, error) {
	if !r.fitted {
		return 0, ErrNotFitted
	}
	if len(features) != r.nFeat {
		return 0, fmt.Errorf("%w: got %d features, trained on %d", ErrBadDimensions, len(features), r.nFeat)
	}
	pred := r.coeffs.AtVec(r.nFeat) // intercept
	for i, v := range features {
		pred += r.coeffs.AtVec(i) * v
	}
	return pred, nil
}

// VectorRidge is the multi-output form of Ridge: one shared design, one
// coefficient column per target dimension.
type VectorRidge struct {
	Lambda float64

	coeffs *mat.Dense
	nFeat  int
	nOut   int
	fitted bool
}

// NewVectorRidge creates a multi-output ridge regressor.
func NewVectorRidge(lambda float64) *VectorRidge {
	if lambda <= 0 {
		lambda = 1e-6
	}
	return &VectorRidge{Lambda: lambda}
}

// Fit solves (X'X + lambda*I) B = X'Y for all target columns at once.
func (r *VectorRidge) Fit(x *mat.Dense, y *mat.Dense) error {
	n, k := x.Dims()
	yn, m := y.Dims()
	if n == 0 || n != yn {
		return ErrNoTrainingData
	}

	aug := augmentIntercept(x)
	kk := k + 1

	var xtx mat.SymDense
	xtx.SymOuterK(1, aug.T())
	for i := 0; i < kk; i++ {
		xtx.SetSym(i, i, xtx.At(i, i)+r.Lambda)
	}

	var chol mat.Cholesky
	if !chol.Factorize(&xtx) {
		return fmt.Errorf("vector ridge fit: %w", ErrNoTrainingData)
	}

	var xty mat.Dense
	xty.Mul(aug.T(), y)

	var coeffs mat.Dense
	if err := chol.SolveTo(&coeffs, &xty); err != nil {
		return fmt.Errorf("vector ridge fit: %w", err)
	}

	r.coeffs = &coeffs
	r.nFeat = k
	r.nOut = m
	r.fitted = true
	return nil
}

// PredictVector returns one predicted value per target dimension.
func (r *VectorRidge) PredictVector(features []float64) ([]float64, error) {
	if !r.fitted {
		return nil, ErrNotFitted
	}
	if len(features) != r.nFeat {
		return nil, fmt.Errorf("%w: got %d features, trained on %d", ErrBadDimensions, len(features), r.nFeat)
	}
	out := make([]float64, r.nOut)
	for j := 0; j < r.nOut; j++ {
		pred := r.coeffs.At(r.nFeat, j) // intercept
		for i, v := range features {
			pred += r.coeffs.At(i, j) * v
		}
		out[j] = pred
	}
	return out, nil
}

// augmentIntercept appends a constant-1 column to the design matrix.
func augmentIntercept(x *mat.Dense) *mat.Dense {
	n, k := x.Dims()
	aug := mat.NewDense(n, k+1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			aug.Set(i, j, x.At(i, j))
		}
		aug.Set(i, k, 1)
	}
	return aug
}
