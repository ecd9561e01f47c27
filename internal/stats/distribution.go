package stats

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Shape describes the spread and shape of a numeric column beyond its summary
type Shape struct {
	StdDev     float64 `json:"std_dev"`
	Q1         float64 `json:"q1"`
	Q3         float64 `json:"q3"`
	Skewness   float64 `json:"skewness"`
	Kurtosis   float64 `json:"kurtosis"`
	Outliers   int     `json:"outliers"`
	IsNormal   bool    `json:"is_normal"`
	NormalityP float64 `json:"normality_p"`
}

// Describe computes the distribution shape of values
func Describe(values []float64) (Shape, error) {
	data := stats.Float64Data(values)
	if data.Len() == 0 {
		return Shape{}, stats.ErrEmptyInput
	}

	mean, err := data.Mean()
	if err != nil {
		return Shape{}, err
	}
	stdDev, err := data.StandardDeviation()
	if err != nil {
		return Shape{}, err
	}
	q1, err := data.Percentile(25)
	if err != nil {
		return Shape{}, err
	}
	q3, err := data.Percentile(75)
	if err != nil {
		return Shape{}, err
	}

	shape := Shape{
		StdDev:   stdDev,
		Q1:       q1,
		Q3:       q3,
		Outliers: countOutliers(values, q1, q3),
	}
	if stdDev > 0 {
		shape.Skewness = skewness(values, mean, stdDev)
		shape.Kurtosis = kurtosis(values, mean, stdDev)
	}
	shape.IsNormal, shape.NormalityP = normality(len(values), shape.Skewness, shape.Kurtosis, stdDev)

	return shape, nil
}

// skewness is the adjusted Fisher-Pearson coefficient
func skewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 {
		return 0
	}
	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sum += d * d * d
	}
	return sum / n * math.Sqrt(n*(n-1)) / (n - 2)
}

// kurtosis returns total (not excess) kurtosis
func kurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 {
		return 0
	}
	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sum += d * d * d * d
	}
	excess := sum/n - 3
	excess = excess*(n-1)/((n-2)*(n-3)) + 6/(n+1)
	return excess + 3
}

// normality is a rough skewness/kurtosis test against a chi-squared tail
func normality(n int, skew, kurt, stdDev float64) (bool, float64) {
	if n < 4 || stdDev == 0 {
		return false, 1
	}
	statistic := math.Abs(skew) + math.Abs(kurt-3)/2
	p := 1 - distuv.ChiSquared{K: 2}.CDF(statistic*statistic)
	return p > 0.05, p
}

// countOutliers uses the 1.5 IQR rule
func countOutliers(data []float64, q1, q3 float64) int {
	iqr := q3 - q1
	lower, upper := q1-1.5*iqr, q3+1.5*iqr
	count := 0
	for _, x := range data {
		if x < lower || x > upper {
			count++
		}
	}
	return count
}
