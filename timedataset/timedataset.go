// Package timedataset holds the entity-keyed demand series every other
// package in this module consumes. A series is read-only once constructed;
// constructors and accessors hand back copies so no downstream computation
// can reach through and mutate caller data.
package timedataset

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoObservations     = errors.New("no observations in series")
	ErrNonMonotonic       = errors.New("series dates are not strictly increasing")
	ErrDatasetLenMismatch = errors.New("series dates have a different length than values")
	ErrSliceOutOfBounds   = errors.New("slice bounds outside series range")
)

// EntityKey identifies the grain a series is recorded at, one series per
// store and product combination.
type EntityKey struct {
	Store   string `json:"store"`
	Product string `json:"product"`
}

func (k EntityKey) String() string {
	return fmt.Sprintf("%s/%s", k.Store, k.Product)
}

// TimeSeries represents one entity's demand history storing a slice of
// strictly increasing dates and their observed values. Both must be of the
// same length.
type TimeSeries struct {
	Key EntityKey
	T   []time.Time
	Y   []float64
}

// New returns a TimeSeries after validating that dates and values align and
// that dates are strictly increasing and unique. The input slices are copied.
func New(key EntityKey, t []time.Time, y []float64) (*TimeSeries, error) {
	if len(y) == 0 {
		return nil, ErrNoObservations
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"dates have length of %d, but values have a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	var lastT time.Time
	for i := 0; i < len(t); i++ {
		currT := t[i]
		if currT.Before(lastT) || currT.Equal(lastT) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMonotonic)
		}
		lastT = currT
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(t))
	copy(tSeries, t)
	copy(ySeries, y)
	return &TimeSeries{
		Key: key,
		T:   tSeries,
		Y:   ySeries,
	}, nil
}

// Len returns the number of observations.
func (ts *TimeSeries) Len() int {
	return len(ts.T)
}

func (ts *TimeSeries) Copy() *TimeSeries {
	tSeries := make([]time.Time, len(ts.T))
	ySeries := make([]float64, len(ts.T))
	copy(tSeries, ts.T)
	copy(ySeries, ts.Y)
	return &TimeSeries{
		Key: ts.Key,
		T:   tSeries,
		Y:   ySeries,
	}
}

// Slice returns a copy of the series over the half-open index range [i, j).
// Fold train/test cuts go through here so they cannot alias the parent.
func (ts *TimeSeries) Slice(i, j int) (*TimeSeries, error) {
	if i < 0 || j > len(ts.T) || i >= j {
		return nil, fmt.Errorf("slice [%d, %d) of series with %d observations, %w",
			i, j, len(ts.T), ErrSliceOutOfBounds)
	}
	tSeries := make([]time.Time, j-i)
	ySeries := make([]float64, j-i)
	copy(tSeries, ts.T[i:j])
	copy(ySeries, ts.Y[i:j])
	return &TimeSeries{
		Key: ts.Key,
		T:   tSeries,
		Y:   ySeries,
	}, nil
}

// Truncate returns a copy of the series holding only observations dated at or
// before cutoff. Observations strictly after cutoff never appear in the
// returned series. A cutoff before the first observation yields nil.
func (ts *TimeSeries) Truncate(cutoff time.Time) *TimeSeries {
	n := 0
	for n < len(ts.T) && !ts.T[n].After(cutoff) {
		n++
	}
	if n == 0 {
		return nil
	}
	out, _ := ts.Slice(0, n)
	return out
}
