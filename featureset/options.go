package featureset

import (
	"errors"
	"fmt"
	"math"

	"github.com/demandcast/demandcast/feature"
)

var (
	ErrInvalidLag          = errors.New("lag offset must be at least 1")
	ErrInvalidWindow       = errors.New("rolling window must be at least 1")
	ErrUnknownImputePolicy = errors.New("unknown imputation policy")
)

// Window specifies one rolling aggregation over the trailing Size
// observations, current row excluded.
type Window struct {
	Size int             `json:"size"`
	Agg  feature.AggType `json:"agg"`
}

// CalendarOptions toggles columns derived from the row date. Cyclical adds a
// sin/cos pair for each enabled periodic field alongside the raw value.
type CalendarOptions struct {
	DayOfWeek bool `json:"day_of_week"`
	Month     bool `json:"month"`
	Quarter   bool `json:"quarter"`
	Holiday   bool `json:"holiday"`
	Cyclical  bool `json:"cyclical"`
}

// ImputePolicy controls how unfilled cells are treated after all lag and
// rolling columns have been computed. Imputation never runs before feature
// computation; filling first would let imputed values flow into lags.
type ImputePolicy string

const (
	// ImputeNone leaves unfilled cells as NaN.
	ImputeNone ImputePolicy = "none"
	// ImputeZero replaces unfilled cells with zero, suited to count-like
	// columns such as unit sales.
	ImputeZero ImputePolicy = "zero"
	// ImputeForward carries the last defined value in the column forward,
	// suited to state-like columns such as price. Leading unfilled cells
	// stay unfilled.
	ImputeForward ImputePolicy = "forward"
)

func (p ImputePolicy) Valid() error {
	switch p {
	case ImputeNone, ImputeZero, ImputeForward:
		return nil
	}
	return fmt.Errorf("%q, %w", string(p), ErrUnknownImputePolicy)
}

// Config specifies the feature columns to derive from a series. Invalid lag
// offsets and window sizes are rejected here, before any computation can run.
type Config struct {
	Lags     []int           `json:"lags"`
	Windows  []Window        `json:"windows"`
	Calendar CalendarOptions `json:"calendar"`

	// Fill is written to cells whose history is too short to compute.
	// Defaults to NaN.
	Fill   float64      `json:"fill"`
	Impute ImputePolicy `json:"impute"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Lags: []int{1, 7},
		Windows: []Window{
			{Size: 7, Agg: feature.AggMean},
		},
		Calendar: CalendarOptions{
			DayOfWeek: true,
			Month:     true,
			Cyclical:  true,
		},
		Fill:   math.NaN(),
		Impute: ImputeNone,
	}
}

// Validate returns a usable config or the first construction error. A nil
// config yields the default.
func (c *Config) Validate() (*Config, error) {
	if c == nil {
		return NewDefaultConfig(), nil
	}
	for _, lag := range c.Lags {
		if lag < 1 {
			return nil, fmt.Errorf("lag offset %d, %w", lag, ErrInvalidLag)
		}
	}
	for _, w := range c.Windows {
		if w.Size < 1 {
			return nil, fmt.Errorf("window size %d, %w", w.Size, ErrInvalidWindow)
		}
		if err := w.Agg.Valid(); err != nil {
			return nil, err
		}
	}
	out := *c
	if out.Impute == "" {
		out.Impute = ImputeNone
	}
	if err := out.Impute.Valid(); err != nil {
		return nil, err
	}
	return &out, nil
}
