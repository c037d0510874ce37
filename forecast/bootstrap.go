package forecast

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/recast/stats"
)

// BandFromResiduals converts a recursive point path on the differenced
// scale into an interval band on the original scale.
//
// For each bootstrap replicate, a residual is resampled with replacement
// from the pool and added to every step's point prediction; the perturbed
// path is then integrated back through the differencer. Percentiles are
// taken across replicates per step only after inversion, since integration
// is a cumulative sum and does not commute with quantiles.
func BandFromResiduals(pointDiff, residualPool []float64, differ *stats.Differencer,
	samples int, lowerQ, upperQ float64, rng *rand.Rand) *Band {

	steps := len(pointDiff)
	point := differ.InvertPath(pointDiff)
	band := &Band{
		Point: point,
		Lower: make([]float64, steps),
		Upper: make([]float64, steps),
	}
	if steps == 0 {
		return band
	}
	if len(residualPool) == 0 {
		copy(band.Lower, point)
		copy(band.Upper, point)
		return band
	}

	// replicates[i] collects the per-step empirical distribution.
	replicates := make([][]float64, steps)
	for i := range replicates {
		replicates[i] = make([]float64, samples)
	}
	perturbed := make([]float64, steps)
	for b := 0; b < samples; b++ {
		for i, p := range pointDiff {
			perturbed[i] = p + residualPool[rng.Intn(len(residualPool))]
		}
		inverted := differ.InvertPath(perturbed)
		for i, v := range inverted {
			replicates[i][b] = v
		}
	}

	for i := range replicates {
		sort.Float64s(replicates[i])
		band.Lower[i] = stat.Quantile(lowerQ/100, stat.LinInterp, replicates[i], nil)
		band.Upper[i] = stat.Quantile(upperQ/100, stat.LinInterp, replicates[i], nil)
		// Finite replicate sets can cross the point path by sampling noise.
		if band.Lower[i] > point[i] {
			band.Lower[i] = point[i]
		}
		if band.Upper[i] < point[i] {
			band.Upper[i] = point[i]
		}
	}
	return band
}

// JointBandsFromResiduals is the many-to-many variant: the pool is a matrix
// of per-step residual vectors (rows) over all targets (columns), and whole
// rows are resampled so cross-target correlation survives. pointDiffs and
// differs are indexed per target; one band per target is returned.
func JointBandsFromResiduals(pointDiffs [][]float64, residualRows [][]float64,
	differs []*stats.Differencer, samples int, lowerQ, upperQ float64, rng *rand.Rand) []*Band {

	nTargets := len(pointDiffs)
	bands := make([]*Band, nTargets)
	if nTargets == 0 {
		return bands
	}
	steps := len(pointDiffs[0])
	if len(residualRows) == 0 || steps == 0 {
		for j := 0; j < nTargets; j++ {
			point := differs[j].InvertPath(pointDiffs[j])
			lower := make([]float64, len(point))
			upper := make([]float64, len(point))
			copy(lower, point)
			copy(upper, point)
			bands[j] = &Band{Point: point, Lower: lower, Upper: upper}
		}
		return bands
	}

	points := make([][]float64, nTargets)
	replicates := make([][][]float64, nTargets)
	for j := 0; j < nTargets; j++ {
		points[j] = differs[j].InvertPath(pointDiffs[j])
		replicates[j] = make([][]float64, steps)
		for i := range replicates[j] {
			replicates[j][i] = make([]float64, samples)
		}
	}

	perturbed := make([]float64, steps)
	for b := 0; b < samples; b++ {
		// One shared sequence of row draws per replicate keeps the
		// cross-target residual correlation intact.
		draws := make([]int, steps)
		for i := range draws {
			draws[i] = rng.Intn(len(residualRows))
		}
		for j := 0; j < nTargets; j++ {
			for i, p := range pointDiffs[j] {
				perturbed[i] = p + residualRows[draws[i]][j]
			}
			inverted := differs[j].InvertPath(perturbed)
			for i, v := range inverted {
				replicates[j][i][b] = v
			}
		}
	}

	for j := 0; j < nTargets; j++ {
		band := &Band{
			Point: points[j],
			Lower: make([]float64, steps),
			Upper: make([]float64, steps),
		}
		for i := range replicates[j] {
			sort.Float64s(replicates[j][i])
			band.Lower[i] = stat.Quantile(lowerQ/100, stat.LinInterp, replicates[j][i], nil)
			band.Upper[i] = stat.Quantile(upperQ/100, stat.LinInterp, replicates[j][i], nil)
			if band.Lower[i] > band.Point[i] {
				band.Lower[i] = band.Point[i]
			}
			if band.Upper[i] < band.Point[i] {
				band.Upper[i] = band.Point[i]
			}
		}
		bands[j] = band
	}
	return bands
}
