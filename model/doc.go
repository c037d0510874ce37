// Package model defines the point-forecast primitives driven by the
// recursive forecasters, and ships three interchangeable implementations.
//
// The forecasting engine never inspects a primitive's internals: it depends
// only on the Regressor, VectorRegressor, and SequenceModel capability
// interfaces. Ridge is a linear regressor solved with gonum, GradientBoost
// is a boosted-stumps ensemble fitted by iterative residual descent, and
// Recurrent is a reservoir-style sequence model with rnn and gru cell
// families whose readout is fitted by ridge regression.
//
// A primitive instance is exclusively owned by one forecasting call and must
// not be shared across concurrent recursions.
package model
