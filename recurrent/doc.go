// Package recurrent forecasts a panel with a sequence-model primitive.
//
// The recursion structure matches the many-to-many scheme: one model
// consumes windows of the full multi-series matrix and emits a next-step
// vector, and all series' histories advance in lockstep. Sequence models do
// not expose per-step residuals the way tree ensembles do, so interval
// construction re-runs the whole recursive path under stochastic
// perturbation (noise-injected forward passes) a fixed number of times and
// takes per-step percentiles of the resulting empirical distribution, after
// integrating each sample path back to the original scale.
package recurrent
