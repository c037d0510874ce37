package timeseries

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Series represents one entity's annual observations.
type Series struct {
	Name      string
	StartYear int
	Values    []float64
}

// New creates a series from values, starting at the given year.
func New(name string, startYear int, values []float64) *Series {
	v := make([]float64, len(values))
	copy(v, values)
	return &Series{
		Name:      name,
		StartYear: startYear,
		Values:    v,
	}
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.Values)
}

// Year returns the calendar year of observation i.
func (s *Series) Year(i int) int {
	return s.StartYear + i
}

// EndYear returns the calendar year of the last observation.
func (s *Series) EndYear() int {
	return s.StartYear + len(s.Values) - 1
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Std calculates the sample standard deviation of the series.
func (s *Series) Std() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	return stat.StdDev(s.Values, nil)
}

// Min returns the minimum value in the series.
func (s *Series) Min() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Min(s.Values)
}

// Max returns the maximum value in the series.
func (s *Series) Max() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Max(s.Values)
}

// Last returns the final value of the series.
func (s *Series) Last() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return s.Values[len(s.Values)-1]
}

// Slice returns a copy of the series from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Name: s.Name, StartYear: s.StartYear + start}
	}
	values := make([]float64, end-start)
	copy(values, s.Values[start:end])
	return &Series{
		Name:      s.Name,
		StartYear: s.StartYear + start,
		Values:    values,
	}
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	return s.Slice(0, len(s.Values))
}

// Log returns the series with the natural logarithm applied. Non-positive
// values map to NaN.
func (s *Series) Log() *Series {
	values := make([]float64, len(s.Values))
	for i, v := range s.Values {
		if v > 0 {
			values[i] = math.Log(v)
		} else {
			values[i] = math.NaN()
		}
	}
	return &Series{
		Name:      s.Name,
		StartYear: s.StartYear,
		Values:    values,
	}
}

// Split partitions the series at floor(trainSplit*T) into a contiguous
// training prefix and test suffix.
func (s *Series) Split(trainSplit float64) (train, test *Series, err error) {
	if trainSplit <= 0 || trainSplit >= 1 {
		return nil, nil, fmt.Errorf("%w: train split %v not in (0,1)", ErrInvalidSplit, trainSplit)
	}
	cut := int(math.Floor(trainSplit * float64(len(s.Values))))
	if cut < 1 || cut >= len(s.Values) {
		return nil, nil, fmt.Errorf("%w: split %v leaves an empty partition for length %d",
			ErrInvalidSplit, trainSplit, len(s.Values))
	}
	return s.Slice(0, cut), s.Slice(cut, len(s.Values)), nil
}
