package models

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Fit trains the configured variant on the ordered series y and returns a
// fresh immutable State. The optional design matrix x is required by the
// regressor variant and ignored by the baselines. Series too short for the
// variant fail with ErrInsufficientData naming the exact minimum.
func Fit(cfg *Config, y []float64, x mat.Matrix) (*State, error) {
	cfg, err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	switch cfg.Type {
	case ModelNaive:
		if len(y) < 1 {
			return nil, fmt.Errorf("naive requires at least 1 observation, got %d, %w",
				len(y), ErrInsufficientData)
		}
		return &State{
			Type:      ModelNaive,
			Seed:      cfg.Seed,
			LastValue: y[len(y)-1],
		}, nil
	case ModelSeasonalNaive:
		m := cfg.SeasonLength
		if len(y) < m {
			return nil, fmt.Errorf("seasonal naive with season length %d requires at least %d observations, got %d, %w",
				m, m, len(y), ErrInsufficientData)
		}
		season := make([]float64, m)
		copy(season, y[len(y)-m:])
		return &State{
			Type:         ModelSeasonalNaive,
			Seed:         cfg.Seed,
			SeasonLength: m,
			LastSeason:   season,
		}, nil
	case ModelMovingAverage:
		w := cfg.Window
		if len(y) < w {
			return nil, fmt.Errorf("moving average with window %d requires at least %d observations, got %d, %w",
				w, w, len(y), ErrInsufficientData)
		}
		return &State{
			Type:       ModelMovingAverage,
			Seed:       cfg.Seed,
			Window:     w,
			WindowMean: stat.Mean(y[len(y)-w:], nil),
		}, nil
	case ModelRegressor:
		return fitRegressor(cfg, y, x)
	}
	return nil, fmt.Errorf("%q, %w", string(cfg.Type), ErrUnknownModelType)
}

func fitRegressor(cfg *Config, y []float64, x mat.Matrix) (*State, error) {
	if x == nil {
		return nil, ErrNoTrainingMatrix
	}
	m, _ := x.Dims()
	if m < 1 || len(y) < 1 {
		return nil, fmt.Errorf("regressor requires at least 1 observation, got %d, %w",
			len(y), ErrInsufficientData)
	}
	if m != len(y) {
		return nil, fmt.Errorf("training data has %d rows and target has %d, %w",
			m, len(y), ErrTargetLenMismatch)
	}

	intercept, coef, err := olsFit(x, y, cfg.FitIntercept)
	if err != nil {
		return nil, err
	}
	return &State{
		Type:      ModelRegressor,
		Seed:      cfg.Seed,
		Intercept: intercept,
		Coef:      coef,
	}, nil
}
