// Package metrics computes forecast accuracy scores over paired actual and
// predicted sequences. Every function is pure: same inputs, same outputs, no
// state. Degenerate denominators report NaN rather than erroring so callers
// can surface them as null instead of failing a whole backtest.
package metrics

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrResLenMismatch = errors.New("predicted and actual have different lengths")
	ErrNoValues       = errors.New("no values to score")
)

// epsilon guards the sMAPE denominator when both actual and predicted are 0.
const epsilon = 1e-9

// MAE returns the mean absolute error.
func MAE(actual, predicted []float64) (float64, error) {
	if err := checkPair(actual, predicted); err != nil {
		return 0, err
	}

	mae := 0.0
	for i := 0; i < len(actual); i++ {
		mae += math.Abs(actual[i] - predicted[i])
	}
	mae /= float64(len(actual))
	return mae, nil
}

// SMAPE returns the symmetric mean absolute percentage error on the 0 to 200
// scale, clamped to that range.
func SMAPE(actual, predicted []float64) (float64, error) {
	if err := checkPair(actual, predicted); err != nil {
		return 0, err
	}

	smape := 0.0
	for i := 0; i < len(actual); i++ {
		denom := math.Abs(actual[i]) + math.Abs(predicted[i]) + epsilon
		smape += 200.0 * math.Abs(actual[i]-predicted[i]) / denom
	}
	smape /= float64(len(actual))
	return math.Min(math.Max(smape, 0.0), 200.0), nil
}

// WAPE returns the weighted absolute percentage error. When the actuals sum
// to zero in absolute value the metric is undefined and NaN is returned.
func WAPE(actual, predicted []float64) (float64, error) {
	if err := checkPair(actual, predicted); err != nil {
		return 0, err
	}

	var absErr, absActual float64
	for i := 0; i < len(actual); i++ {
		absErr += math.Abs(actual[i] - predicted[i])
		absActual += math.Abs(actual[i])
	}
	if absActual == 0 {
		return math.NaN(), nil
	}
	return 100.0 * absErr / absActual, nil
}

// Bias returns mean(actual - predicted). A positive bias means the model
// under-forecast: demand came in above the prediction.
func Bias(actual, predicted []float64) (float64, error) {
	if err := checkPair(actual, predicted); err != nil {
		return 0, err
	}

	bias := 0.0
	for i := 0; i < len(actual); i++ {
		bias += actual[i] - predicted[i]
	}
	bias /= float64(len(actual))
	return bias, nil
}

// StabilityIndex returns the coefficient of variation of a metric across
// folds as a percentage, 100*std/mean. It measures consistency, not
// accuracy. Undefined (NaN) when the mean is zero or fewer than two folds
// are given.
func StabilityIndex(foldMetric []float64) float64 {
	if len(foldMetric) < 2 {
		return math.NaN()
	}
	mean := stat.Mean(foldMetric, nil)
	if mean == 0 {
		return math.NaN()
	}
	return 100.0 * stat.StdDev(foldMetric, nil) / mean
}

func checkPair(actual, predicted []float64) error {
	if len(actual) != len(predicted) {
		return ErrResLenMismatch
	}
	if len(actual) == 0 {
		return ErrNoValues
	}
	return nil
}
