// Package stats computes summary statistics, equal-width histograms and
// pairwise correlation over numeric column values.
package stats

import (
	"fmt"
	"math"
	"slices"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Summary holds descriptive statistics of a numeric column
type Summary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Count  int     `json:"count"`
}

// Summarize computes min, max, mean and the lower median.
// For even-length input the median is sorted[n/2], not the average of the two middle values.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, stats.ErrEmptyInput
	}

	data := stats.Float64Data(values)
	lo, err := data.Min()
	if err != nil {
		return Summary{}, err
	}
	hi, err := data.Max()
	if err != nil {
		return Summary{}, err
	}
	mean, err := data.Mean()
	if err != nil {
		return Summary{}, err
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return Summary{
		Min:    lo,
		Max:    hi,
		Mean:   mean,
		Median: sorted[len(sorted)/2],
		Count:  len(values),
	}, nil
}

// HistogramResult is the bin labels and per-bin counts of a histogram
type HistogramResult struct {
	Bins   []string `json:"bins"`
	Counts []int    `json:"counts"`
}

// Len returns the number of bins
func (h HistogramResult) Len() int {
	return len(h.Bins)
}

// MaxBins caps the bin count of a histogram
const MaxBins = 1000

// Histogram buckets values into binCount equal-width bins spanning [min, max].
// Bins are half-open [start, end) except the last, which is closed.
// binCount is clamped to MaxBins; NaN and infinite values are skipped.
func Histogram(values []float64, binCount int) HistogramResult {
	binCount = min(binCount, MaxBins)
	values = finite(values)
	if binCount <= 0 || len(values) == 0 {
		return HistogramResult{Bins: []string{}, Counts: []int{}}
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	width := (hi - lo) / float64(binCount)

	result := HistogramResult{
		Bins:   make([]string, binCount),
		Counts: make([]int, binCount),
	}
	for i := 0; i < binCount; i++ {
		start := lo + float64(i)*width
		end := lo + float64(i+1)*width
		last := i == binCount-1
		if last {
			end = hi
		}
		result.Bins[i] = fmt.Sprintf("%.1f-%.1f", start, end)

		for _, v := range values {
			if v >= start && (v < end || (last && v <= end)) {
				result.Counts[i]++
			}
		}
	}

	return result
}

func finite(values []float64) []float64 {
	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			kept = append(kept, v)
		}
	}
	return kept
}

// Correlation returns the Pearson correlation of paired values.
// ok is false for fewer than two pairs or when either side has no variance.
func Correlation(xs, ys []float64) (r float64, ok bool) {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0, false
	}
	r = stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// CorrelationPValue is the two-sided p-value of a Pearson r over n pairs,
// from the Student's t distribution with n-2 degrees of freedom.
func CorrelationPValue(r float64, n int) float64 {
	if n < 3 {
		return 1
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * (1 - dist.CDF(math.Abs(t)))
}
