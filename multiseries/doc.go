// Package multiseries composes the single-series recursive forecaster
// across panels of related series.
//
// Three coupling schemes are provided, differing only in feature topology
// and in whether one primitive or many are trained:
//
//   - Independent: one primitive fitted jointly on all entities' pooled
//     training rows (with a series-identifier feature), then each entity's
//     trajectory recursed independently with its own history state. Pooling
//     raises effective training size for short series without cross-series
//     leakage during recursion.
//   - ManyToOne: one dedicated primitive per target whose features are the
//     lagged values of every series in the panel. During recursion all
//     series' histories advance in lockstep; non-target series are continued
//     by naive last-value extrapolation by default, or by their own fitted
//     single-series forecasters when Options.NonTargetFitted is set.
//   - ManyToMany: one shared vector primitive that consumes all series'
//     lags and emits the next step for every target at once. Bootstrap
//     resampling draws joint residual vectors so cross-target correlation
//     is preserved in the bands.
//
// All schemes report per-entity forecast.Result values with bands on the
// original scale.
package multiseries
