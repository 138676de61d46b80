package models

import (
	"fmt"
)

// ModelType tags a forecaster variant. The family is closed; adding a
// variant means adding a tag and its fit/predict arms, not a new subclass.
type ModelType string

const (
	ModelNaive         ModelType = "naive"
	ModelSeasonalNaive ModelType = "seasonal_naive"
	ModelMovingAverage ModelType = "moving_average"
	ModelRegressor     ModelType = "regressor"
)

const (
	DefaultSeasonLength = 7
	DefaultWindow       = 7
)

// Config selects a forecaster variant and its parameters. The same config,
// data, and seed always produce bit-identical predictions.
type Config struct {
	Type ModelType `json:"type"`

	// SeasonLength is the period of the seasonal naive variant in
	// observations, e.g. 7 for a weekly cycle over daily data.
	SeasonLength int `json:"season_length,omitempty"`

	// Window is the trailing observation count averaged by the moving
	// average variant.
	Window int `json:"window,omitempty"`

	// FitIntercept applies to the regressor variant only.
	FitIntercept bool `json:"fit_intercept,omitempty"`

	// Seed is recorded into the fitted state so a run can be reproduced.
	// The baseline family and ordinary least squares are deterministic on
	// their own; the seed exists for variants that need one.
	Seed uint64 `json:"seed,omitempty"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Type:         ModelNaive,
		SeasonLength: DefaultSeasonLength,
		Window:       DefaultWindow,
		FitIntercept: true,
	}
}

// Validate returns a usable config or the first construction error. A nil
// config yields the default.
func (c *Config) Validate() (*Config, error) {
	if c == nil {
		return NewDefaultConfig(), nil
	}
	switch c.Type {
	case ModelNaive, ModelSeasonalNaive, ModelMovingAverage, ModelRegressor:
	default:
		return nil, fmt.Errorf("%q, %w", string(c.Type), ErrUnknownModelType)
	}
	out := *c
	if out.SeasonLength < 1 {
		out.SeasonLength = DefaultSeasonLength
	}
	if out.Window < 1 {
		out.Window = DefaultWindow
	}
	return &out, nil
}
