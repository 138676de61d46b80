// Package demandcast evaluates per-entity retail demand forecasters without
// look-ahead bias. The backtest orchestrator drives the fold splitter over a
// series, fits the candidate variant per fold on the train slice only,
// forecasts the held-out horizon, and aggregates accuracy metrics, optionally
// against the naive baselines on identical fold boundaries.
package demandcast

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/demandcast/demandcast/featureset"
	"github.com/demandcast/demandcast/metrics"
	"github.com/demandcast/demandcast/models"
	"github.com/demandcast/demandcast/split"
	"github.com/demandcast/demandcast/timedataset"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoSeries = errors.New("no series to backtest")

	// ErrUnsafePredictFeatures rejects regressor backtests configured with
	// lag or rolling features. Those columns are functions of target values
	// inside the forecast horizon, which do not exist at prediction time;
	// only calendar features are defined over future dates.
	ErrUnsafePredictFeatures = errors.New("regressor backtests support calendar features only")
)

// Options tunes a backtest run beyond the split and model configs.
type Options struct {
	// IncludeBaselines evaluates Naive and SeasonalNaive on the same fold
	// boundaries as the candidate and reports relative improvement.
	IncludeBaselines bool

	// BaselineSeasonLength is the season used by the SeasonalNaive
	// baseline. Defaults to the model config's season length.
	BaselineSeasonLength int

	// Features configures the design matrix for the regressor variant.
	// Must contain calendar features only. Ignored by baseline variants.
	Features *featureset.Config

	Logger *slog.Logger
}

func NewDefaultOptions() *Options {
	return &Options{
		IncludeBaselines: true,
	}
}

// Backtest runs the full evaluation of modelCfg over series under the given
// fold plan. Configuration problems abort before any fold is materialized.
// A fold whose model lacks sufficient history, or whose design matrix is
// degenerate over the train window, is recorded and skipped, never failing
// the remaining folds. The caller's configs are never written to.
func Backtest(series *timedataset.TimeSeries, splitCfg *split.Config, modelCfg *models.Config, opt *Options) (*Result, error) {
	if series == nil || series.Len() == 0 {
		return nil, ErrNoSeries
	}
	if opt == nil {
		opt = NewDefaultOptions()
	} else {
		o := *opt
		opt = &o
	}

	if modelCfg != nil && modelCfg.SeasonLength < 1 {
		c := *modelCfg
		c.SeasonLength = inferSeasonLength(series.T)
		modelCfg = &c
	}
	modelCfg, err := modelCfg.Validate()
	if err != nil {
		return nil, err
	}
	if modelCfg.Type == models.ModelRegressor {
		if opt.Features, err = validatePredictFeatures(opt.Features); err != nil {
			return nil, err
		}
	}

	folds, err := split.Split(splitCfg, series.Len())
	if err != nil {
		return nil, err
	}

	foldResults, skipped, err := runFolds(series, folds, modelCfg, opt)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Folds:   foldResults,
		Summary: summarize(foldResults),
		Skipped: skipped,
	}

	if opt.IncludeBaselines {
		res.Baselines, err = runBaselines(series, folds, modelCfg, opt, res.Summary)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

func runFolds(series *timedataset.TimeSeries, folds []split.Fold, modelCfg *models.Config, opt *Options) ([]FoldResult, int, error) {
	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var skipped int
	results := make([]FoldResult, 0, len(folds))
	for _, f := range folds {
		train, err := series.Slice(f.TrainStart, f.TrainEnd)
		if err != nil {
			return nil, 0, err
		}
		test, err := series.Slice(f.TestStart, f.TestEnd)
		if err != nil {
			return nil, 0, err
		}

		var x, xPred mat.Matrix
		if modelCfg.Type == models.ModelRegressor {
			if x, xPred, err = designMatrices(train, test, opt.Features); err != nil {
				return nil, 0, err
			}
		}

		state, err := models.Fit(modelCfg, train.Y, x)
		if err != nil {
			if errors.Is(err, models.ErrInsufficientData) || errors.Is(err, models.ErrRankDeficient) {
				logger.Warn("skipping fold",
					"entity", series.Key.String(),
					"fold", f.Index,
					"reason", err.Error(),
				)
				skipped++
				results = append(results, FoldResult{Fold: f, Err: err.Error()})
				continue
			}
			return nil, 0, fmt.Errorf("unable to fit fold %d, %w", f.Index, err)
		}

		forecast, err := state.Predict(f.TestLen(), xPred)
		if err != nil {
			return nil, 0, fmt.Errorf("unable to predict fold %d, %w", f.Index, err)
		}

		fm, err := foldMetrics(test.Y, forecast)
		if err != nil {
			return nil, 0, fmt.Errorf("unable to score fold %d, %w", f.Index, err)
		}
		results = append(results, FoldResult{
			Fold:     f,
			Metrics:  fm,
			Actual:   test.Y,
			Forecast: forecast,
		})
	}
	return results, skipped, nil
}

func runBaselines(series *timedataset.TimeSeries, folds []split.Fold, modelCfg *models.Config, opt *Options, candidate *Summary) (map[string]BaselineComparison, error) {
	season := opt.BaselineSeasonLength
	if season < 1 {
		season = modelCfg.SeasonLength
	}

	baseCfgs := map[string]*models.Config{
		string(models.ModelNaive):         {Type: models.ModelNaive},
		string(models.ModelSeasonalNaive): {Type: models.ModelSeasonalNaive, SeasonLength: season},
	}

	out := make(map[string]BaselineComparison, len(baseCfgs))
	for name, cfg := range baseCfgs {
		baseOpt := &Options{Logger: opt.Logger}
		foldResults, skipped, err := runFolds(series, folds, cfg, baseOpt)
		if err != nil {
			return nil, fmt.Errorf("unable to evaluate %s baseline, %w", name, err)
		}
		baseSummary := summarize(foldResults)
		cmp := BaselineComparison{
			ImprovementPct: improvementPct(candidate, baseSummary),
			Skipped:        skipped,
		}
		if baseSummary != nil {
			cmp.Summary = *baseSummary
		}
		out[name] = cmp
	}
	return out, nil
}

func foldMetrics(actual, forecast []float64) (*FoldMetrics, error) {
	mae, err := metrics.MAE(actual, forecast)
	if err != nil {
		return nil, err
	}
	smape, err := metrics.SMAPE(actual, forecast)
	if err != nil {
		return nil, err
	}
	wape, err := metrics.WAPE(actual, forecast)
	if err != nil {
		return nil, err
	}
	bias, err := metrics.Bias(actual, forecast)
	if err != nil {
		return nil, err
	}

	fm := &FoldMetrics{
		MAE:   mae,
		SMAPE: smape,
		Bias:  bias,
	}
	if !math.IsNaN(wape) {
		fm.WAPE = &wape
	}
	return fm, nil
}

// inferSeasonLength derives a season, in observations, from the recording
// frequency of the series dates when the config leaves it unset. Daily
// demand repeats weekly, hourly demand daily, weekly demand yearly.
func inferSeasonLength(t []time.Time) int {
	freq, err := timedataset.TimeSlice(t).EstimateFreq()
	if err != nil {
		return models.DefaultSeasonLength
	}
	switch freq {
	case time.Hour:
		return 24
	case 7 * 24 * time.Hour:
		return 52
	}
	return models.DefaultSeasonLength
}

// validatePredictFeatures rejects feature configs whose columns would be
// undefined over the forecast horizon.
func validatePredictFeatures(cfg *featureset.Config) (*featureset.Config, error) {
	if cfg == nil {
		cfg = &featureset.Config{
			Calendar: featureset.CalendarOptions{
				DayOfWeek: true,
				Month:     true,
				Cyclical:  true,
			},
		}
	}
	if len(cfg.Lags) > 0 || len(cfg.Windows) > 0 {
		return nil, ErrUnsafePredictFeatures
	}
	return cfg.Validate()
}

// designMatrices builds the train and predict design matrices for the
// regressor variant. Calendar columns are functions of the date alone, so
// computing them over the test dates cannot read any target value.
func designMatrices(train, test *timedataset.TimeSeries, cfg *featureset.Config) (mat.Matrix, mat.Matrix, error) {
	trainTbl, err := featureset.Compute(train, cfg, train.T[len(train.T)-1])
	if err != nil {
		return nil, nil, err
	}
	x, err := trainTbl.Matrix(false)
	if err != nil {
		return nil, nil, err
	}

	testTbl, err := featureset.Compute(test, cfg, test.T[len(test.T)-1])
	if err != nil {
		return nil, nil, err
	}
	xPred, err := testTbl.Matrix(false)
	if err != nil {
		return nil, nil, err
	}
	return x, xPred, nil
}
