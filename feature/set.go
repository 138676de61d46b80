package feature

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrSetRowMismatch = errors.New("column length does not match set row count")
	ErrEmptySet       = errors.New("feature set has no columns")
)

// Set is an ordered collection of feature columns all sharing the same row
// count. Insertion order is preserved so matrix column ordering is stable
// across runs.
type Set struct {
	m      int
	set    map[string][]float64
	labels []Feature
}

// NewSet creates a set whose columns must all have m rows.
func NewSet(m int) *Set {
	return &Set{
		m:   m,
		set: make(map[string][]float64),
	}
}

func (s *Set) Rows() int {
	return s.m
}

// Set stores a column under the given feature label, replacing any column
// already stored under the same label. The data slice is copied.
func (s *Set) Set(f Feature, data []float64) error {
	if len(data) != s.m {
		return fmt.Errorf("column %s has %d rows, set has %d, %w",
			f.String(), len(data), s.m, ErrSetRowMismatch)
	}
	col := make([]float64, len(data))
	copy(col, data)
	if _, exists := s.set[f.String()]; !exists {
		s.labels = append(s.labels, f)
	}
	s.set[f.String()] = col
	return nil
}

// Get returns a copy of the column stored under the feature label.
func (s *Set) Get(f Feature) ([]float64, bool) {
	col, exists := s.set[f.String()]
	if !exists {
		return nil, false
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, true
}

// Labels returns the tracked features in insertion order.
func (s *Set) Labels() *Labels {
	labels := make([]Feature, len(s.labels))
	copy(labels, s.labels)
	return NewLabels(labels)
}

// Matrix returns the set as an m by n dense matrix where m is the number of
// rows and n the number of features, optionally prefixed with an intercept
// column of ones.
func (s *Set) Matrix(intercept bool) (*mat.Dense, error) {
	if len(s.labels) == 0 {
		return nil, ErrEmptySet
	}

	n := len(s.labels)
	if intercept {
		n += 1
	}

	obs := make([]float64, s.m*n)

	featNum := 0
	if intercept {
		for i := 0; i < s.m; i++ {
			obs[n*i] = 1.0
		}
		featNum += 1
	}

	for _, label := range s.labels {
		col := s.set[label.String()]
		for i := 0; i < len(col); i++ {
			obs[n*i+featNum] = col[i]
		}
		featNum += 1
	}
	return mat.NewDense(s.m, n, obs), nil
}
