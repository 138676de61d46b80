// Package feature defines the label vocabulary for model-ready feature
// columns. Every column in a feature table is identified by one of these
// label types, which carry just enough data to reproduce the column name and
// survive a JSON round trip.
package feature

import (
	"errors"
	"fmt"
)

var ErrUnknownAggType = errors.New("unknown rolling aggregation type")

type FeatureType int

const (
	FeatureTypeLag FeatureType = iota
	FeatureTypeRolling
	FeatureTypeCalendar
)

type Feature interface {
	String() string
	Get(string) (string, bool)
	Type() FeatureType
}

// AggType enumerates the rolling window aggregations.
type AggType string

const (
	AggMean AggType = "mean"
	AggStd  AggType = "std"
	AggMin  AggType = "min"
	AggMax  AggType = "max"
	AggSum  AggType = "sum"
)

func (a AggType) Valid() error {
	switch a {
	case AggMean, AggStd, AggMin, AggMax, AggSum:
		return nil
	}
	return fmt.Errorf("%q, %w", string(a), ErrUnknownAggType)
}
