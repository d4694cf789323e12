// Package stats holds the descriptive statistics shared by the forecasting
// and demand components. Standard deviations use the sample (n-1) convention
// throughout.
package stats

import (
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean, or 0 for an empty slice
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// SampleStdDev returns the n-1 standard deviation, or 0 with fewer than two values
func SampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// Sum adds up xs
func Sum(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return floats.Sum(xs)
}

// Tail returns the last n values (all of them when fewer exist)
func Tail(xs []float64, n int) []float64 {
	if n >= len(xs) {
		return xs
	}
	if n <= 0 {
		return nil
	}
	return xs[len(xs)-n:]
}

// Head returns the first n values (all of them when fewer exist)
func Head(xs []float64, n int) []float64 {
	if n >= len(xs) {
		return xs
	}
	if n <= 0 {
		return nil
	}
	return xs[:n]
}

// Round2 rounds half away from zero to two decimal places
func Round2(x float64) float64 {
	return RoundTo(x, 2)
}

// RoundTo rounds half away from zero to the given number of decimal places.
// Non-finite input is returned unchanged.
func RoundTo(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// AllFinite reports whether no value is NaN or infinite
func AllFinite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// MAPE is the mean absolute percentage error, in percent, over the points
// whose actual value is non-zero. It is 0 when every actual is zero.
func MAPE(actual, predicted []float64) float64 {
	n := len(actual)
	if len(predicted) < n {
		n = len(predicted)
	}
	var sum float64
	var count int
	for i := 0; i < n; i++ {
		if actual[i] == 0 {
			continue
		}
		sum += math.Abs((actual[i] - predicted[i]) / actual[i])
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count) * 100
}
