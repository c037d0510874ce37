package model

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// GradientBoost is a least-squares gradient-boosted ensemble of depth-1
// regression trees (stumps). It stands in for heavier tree-ensemble
// libraries: the recursive forecaster only ever calls Fit and PredictOne.
type GradientBoost struct {
	Rounds       int     // number of boosting rounds (default: 100)
	LearningRate float64 // shrinkage applied to each stump (default: 0.1)
	MinLeaf      int     // minimum samples per leaf (default: 3)

	base   float64
	stumps []stump
	nFeat  int
	fitted bool
}

type stump struct {
	feature   int
	threshold float64
	left      float64
	right     float64
}

// NewGradientBoost creates a boosted-stumps regressor with the given number
// of rounds; rounds <= 0 selects the default.
func NewGradientBoost(rounds int) *GradientBoost {
	if rounds <= 0 {
		rounds = 100
	}
	return &GradientBoost{
		Rounds:       rounds,
		LearningRate: 0.1,
		MinLeaf:      3,
	}
}

// Fit builds the ensemble by repeatedly fitting the best single split to the
// current residuals.
func (g *GradientBoost) Fit(x *mat.Dense, y []float64) error {
	n, k := x.Dims()
	if n == 0 || n != len(y) {
		return ErrNoTrainingData
	}
	if g.LearningRate <= 0 {
		g.LearningRate = 0.1
	}
	if g.MinLeaf < 1 {
		g.MinLeaf = 1
	}

	g.base = 0
	for _, v := range y {
		g.base += v
	}
	g.base /= float64(n)

	residuals := make([]float64, n)
	for i, v := range y {
		residuals[i] = v - g.base
	}

	// Pre-sort sample indices per feature once.
	order := make([][]int, k)
	for j := 0; j < k; j++ {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		col := j
		sort.Slice(idx, func(a, b int) bool {
			return x.At(idx[a], col) < x.At(idx[b], col)
		})
		order[j] = idx
	}

	g.stumps = g.stumps[:0]
	for round := 0; round < g.Rounds; round++ {
		best, ok := g.bestSplit(x, residuals, order)
		if !ok {
			break
		}
		best.left *= g.LearningRate
		best.right *= g.LearningRate
		g.stumps = append(g.stumps, best)

		for i := 0; i < n; i++ {
			if x.At(i, best.feature) <= best.threshold {
				residuals[i] -= best.left
			} else {
				residuals[i] -= best.right
			}
		}
	}

	g.nFeat = k
	g.fitted = true
	return nil
}

// bestSplit scans all features for the split minimizing squared error
// against the current residuals.
func (g *GradientBoost) bestSplit(x *mat.Dense, residuals []float64, order [][]int) (stump, bool) {
	n := len(residuals)
	total := 0.0
	for _, r := range residuals {
		total += r
	}

	best := stump{}
	bestGain := 1e-12
	found := false

	for j := range order {
		leftSum := 0.0
		for pos := 0; pos < n-1; pos++ {
			i := order[j][pos]
			leftSum += residuals[i]
			nl := pos + 1
			nr := n - nl
			if nl < g.MinLeaf || nr < g.MinLeaf {
				continue
			}
			cur := x.At(i, j)
			next := x.At(order[j][pos+1], j)
			if cur == next {
				continue // cannot split between equal values
			}
			rightSum := total - leftSum
			gain := leftSum*leftSum/float64(nl) + rightSum*rightSum/float64(nr)
			if gain > bestGain {
				bestGain = gain
				best = stump{
					feature:   j,
					threshold: (cur + next) / 2,
					left:      leftSum / float64(nl),
					right:     rightSum / float64(nr),
				}
				found = true
			}
		}
	}
	if !found || math.IsNaN(best.threshold) {
		return stump{}, false
	}
	return best, true
}

// PredictOne sums the ensemble's contributions for one feature row.
func (g *GradientBoost) PredictOne(features []float64) (float64, error) {
	if !g.fitted {
		return 0, ErrNotFitted
	}
	if len(features) != g.nFeat {
		return 0, ErrBadDimensions
	}
	pred := g.base
	for _, s := range g.stumps {
		if features[s.feature] <= s.threshold {
			pred += s.left
		} else {
			pred += s.right
		}
	}
	return pred, nil
}
