// Package stats converts running first/second-moment accumulators over pixel
// intensities into mean and standard deviation.
package stats

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyAccumulator is returned when normalising an accumulator that has
// seen no values.
var ErrEmptyAccumulator = errors.New("accumulator has zero count")

// Accumulator is a running summary of a pixel-intensity distribution.
type Accumulator struct {
	Count uint64  `json:"count"`
	Sum   float64 `json:"sum"`
	Sum2  float64 `json:"sum_2"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Empty returns an accumulator ready for Add. Min and Max start at the
// infinities so the first value replaces both.
func Empty() Accumulator {
	return Accumulator{Min: math.Inf(1), Max: math.Inf(-1)}
}

// Add folds a single value into the accumulator.
func (a *Accumulator) Add(v float64) {
	a.Count++
	a.Sum += v
	a.Sum2 += v * v
	if v < a.Min {
		a.Min = v
	}
	if v > a.Max {
		a.Max = v
	}
}

// Merge folds another accumulator into a. Merging an empty accumulator is a no-op.
func (a *Accumulator) Merge(o Accumulator) {
	if o.Count == 0 {
		return
	}
	if a.Count == 0 {
		*a = o
		return
	}
	a.Count += o.Count
	a.Sum += o.Sum
	a.Sum2 += o.Sum2
	a.Min = math.Min(a.Min, o.Min)
	a.Max = math.Max(a.Max, o.Max)
}

// NormalizedStats is an Accumulator with the derived mean and population
// standard deviation.
type NormalizedStats struct {
	Accumulator
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Normalize derives mean and standard deviation from acc. Min and Max pass
// through unchanged. A variance that rounds below zero is clamped to zero so
// StdDev is never NaN.
func Normalize(acc Accumulator) (NormalizedStats, error) {
	if acc.Count == 0 {
		return NormalizedStats{}, fmt.Errorf("normalize: %w", ErrEmptyAccumulator)
	}
	n := float64(acc.Count)
	mean := acc.Sum / n
	variance := acc.Sum2/n - mean*mean
	return NormalizedStats{
		Accumulator: acc,
		Mean:        mean,
		StdDev:      math.Sqrt(math.Max(variance, 0)),
	}, nil
}
