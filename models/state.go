// Package models implements the closed family of forecaster variants behind
// a single fit/predict contract. A fitted model is a State value holding only
// the parameters needed to reproduce its predictions; fitting never mutates
// an existing state, it returns a new one.
package models

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// State is the tagged variant produced by Fit. Exactly the fields of the
// tagged type are populated, the rest stay at zero values. A State is
// immutable after fitting; treat its slices as read-only.
type State struct {
	Type ModelType `json:"type"`
	Seed uint64    `json:"seed,omitempty"`

	// naive
	LastValue float64 `json:"last_value,omitempty"`

	// seasonal naive
	SeasonLength int       `json:"season_length,omitempty"`
	LastSeason   []float64 `json:"last_season,omitempty"`

	// moving average
	Window     int     `json:"window,omitempty"`
	WindowMean float64 `json:"window_mean,omitempty"`

	// regressor
	Intercept float64   `json:"intercept,omitempty"`
	Coef      []float64 `json:"coef,omitempty"`
}

// IsFitted reports whether the state came out of a successful Fit.
func (s *State) IsFitted() bool {
	return s != nil && s.Type != ""
}

// Predict forecasts horizon steps past the end of the series the state was
// fitted on. The regressor variant requires a design matrix x with horizon
// rows; the baseline variants ignore x.
func (s *State) Predict(horizon int, x mat.Matrix) ([]float64, error) {
	if !s.IsFitted() {
		return nil, ErrModelNotFitted
	}
	if horizon < 1 {
		return nil, fmt.Errorf("horizon %d, %w", horizon, ErrInvalidHorizon)
	}

	switch s.Type {
	case ModelNaive:
		out := make([]float64, horizon)
		for h := 0; h < horizon; h++ {
			out[h] = s.LastValue
		}
		return out, nil
	case ModelSeasonalNaive:
		out := make([]float64, horizon)
		for h := 0; h < horizon; h++ {
			out[h] = s.LastSeason[h%s.SeasonLength]
		}
		return out, nil
	case ModelMovingAverage:
		out := make([]float64, horizon)
		for h := 0; h < horizon; h++ {
			out[h] = s.WindowMean
		}
		return out, nil
	case ModelRegressor:
		return s.predictRegressor(horizon, x)
	}
	return nil, fmt.Errorf("%q, %w", string(s.Type), ErrUnknownModelType)
}

func (s *State) predictRegressor(horizon int, x mat.Matrix) ([]float64, error) {
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	m, n := x.Dims()
	if m != horizon {
		return nil, fmt.Errorf("design matrix has %d rows for a %d step horizon, %w",
			m, horizon, ErrTargetLenMismatch)
	}
	if n != len(s.Coef) {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w",
			n, len(s.Coef), ErrFeatureLenMismatch)
	}

	out := make([]float64, horizon)
	for i := 0; i < m; i++ {
		yhat := s.Intercept
		for j := 0; j < n; j++ {
			yhat += s.Coef[j] * x.At(i, j)
		}
		out[i] = yhat
	}
	return out, nil
}
