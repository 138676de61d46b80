package demandcast

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/demandcast/demandcast/feature"
	"github.com/demandcast/demandcast/featureset"
	"github.com/demandcast/demandcast/models"
	"github.com/demandcast/demandcast/split"
	"github.com/demandcast/demandcast/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genSeries(t *testing.T, n int, gen func(i int) float64) *timedataset.TimeSeries {
	t.Helper()
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		dates[i] = start.AddDate(0, 0, i)
		y[i] = gen(i)
	}
	series, err := timedataset.New(timedataset.EntityKey{Store: "s1", Product: "p1"}, dates, y)
	require.Nil(t, err)
	return series
}

func TestBacktestNaiveConstantSeries(t *testing.T) {
	series := genSeries(t, 30, func(i int) float64 { return 10.0 })
	splitCfg := &split.Config{Strategy: split.StrategyExpanding, NSplits: 3, MinTrainSize: 10, Horizon: 5}

	res, err := Backtest(series, splitCfg, &models.Config{Type: models.ModelNaive}, &Options{})
	require.Nil(t, err)
	require.Len(t, res.Folds, 3)
	require.NotNil(t, res.Summary)

	assert.Equal(t, 0, res.Skipped)
	for _, fr := range res.Folds {
		require.NotNil(t, fr.Metrics)
		assert.Equal(t, 0.0, fr.Metrics.MAE)
		assert.Equal(t, []float64{10, 10, 10, 10, 10}, fr.Forecast)
	}
	assert.Equal(t, 0.0, res.Summary.MAE.Mean)
	assert.Nil(t, res.Summary.Stability, "stability is undefined when the mean metric is 0")
}

func TestBacktestGapKeepsTrainCutoff(t *testing.T) {
	// with a gap the naive forecast must come from the train end, not from
	// the observations inside the gap
	series := genSeries(t, 40, func(i int) float64 { return float64(i) })
	splitCfg := &split.Config{Strategy: split.StrategyExpanding, NSplits: 2, MinTrainSize: 10, Gap: 3, Horizon: 5}

	res, err := Backtest(series, splitCfg, &models.Config{Type: models.ModelNaive}, &Options{})
	require.Nil(t, err)

	for _, fr := range res.Folds {
		require.NotNil(t, fr.Metrics)
		expected := float64(fr.Fold.TrainEnd - 1)
		for _, v := range fr.Forecast {
			assert.Equal(t, expected, v)
		}
	}
}

func TestBacktestSkipsInsufficientFolds(t *testing.T) {
	series := genSeries(t, 30, func(i int) float64 { return float64(i % 7) })
	splitCfg := &split.Config{Strategy: split.StrategyExpanding, NSplits: 4, MinTrainSize: 5, Horizon: 5}

	// first fold trains on 10 observations, short of a 12 step season
	modelCfg := &models.Config{Type: models.ModelSeasonalNaive, SeasonLength: 12}
	res, err := Backtest(series, splitCfg, modelCfg, &Options{})
	require.Nil(t, err)
	require.Len(t, res.Folds, 4)

	assert.Equal(t, 1, res.Skipped)
	assert.Nil(t, res.Folds[0].Metrics)
	assert.Contains(t, res.Folds[0].Err, "at least 12")
	for _, fr := range res.Folds[1:] {
		assert.NotNil(t, fr.Metrics)
	}
	require.NotNil(t, res.Summary, "aggregation must cover the remaining folds")
}

func TestBacktestBaselines(t *testing.T) {
	series := genSeries(t, 42, func(i int) float64 { return float64(i%7) + 1 })
	splitCfg := &split.Config{Strategy: split.StrategyExpanding, NSplits: 3, MinTrainSize: 14, Horizon: 7}
	modelCfg := &models.Config{Type: models.ModelSeasonalNaive, SeasonLength: 7}

	res, err := Backtest(series, splitCfg, modelCfg, &Options{IncludeBaselines: true})
	require.Nil(t, err)
	require.Len(t, res.Baselines, 2)

	naive, exists := res.Baselines[string(models.ModelNaive)]
	require.True(t, exists)
	_, exists = res.Baselines[string(models.ModelSeasonalNaive)]
	require.True(t, exists)

	// the candidate tracks the weekly cycle perfectly, naive cannot
	assert.Equal(t, 0.0, res.Summary.MAE.Mean)
	assert.Greater(t, naive.Summary.MAE.Mean, 0.0)
	assert.InDelta(t, 100.0, naive.ImprovementPct["mae"], 1e-9)
}

func TestBacktestSlidingBaselineParity(t *testing.T) {
	series := genSeries(t, 60, func(i int) float64 { return 5 + 2*float64(i%7) })
	splitCfg := &split.Config{Strategy: split.StrategySliding, NSplits: 3, MinTrainSize: 21, Horizon: 7}

	res, err := Backtest(series, splitCfg, &models.Config{Type: models.ModelMovingAverage, Window: 7}, &Options{
		IncludeBaselines:     true,
		BaselineSeasonLength: 7,
	})
	require.Nil(t, err)

	for name, base := range res.Baselines {
		assert.Equal(t, 0, base.Skipped, "baseline %s should fit every fold", name)
	}
}

func TestBacktestConfigErrors(t *testing.T) {
	series := genSeries(t, 20, func(i int) float64 { return float64(i) })

	testData := map[string]struct {
		splitCfg *split.Config
		modelCfg *models.Config
		opt      *Options
		err      error
		code     string
	}{
		"series too short": {
			&split.Config{Strategy: split.StrategyExpanding, NSplits: 5, MinTrainSize: 10, Horizon: 5},
			&models.Config{Type: models.ModelNaive},
			&Options{},
			split.ErrSeriesTooShort,
			CodeConfiguration,
		},
		"unknown model": {
			&split.Config{Strategy: split.StrategyExpanding, NSplits: 2, MinTrainSize: 5, Horizon: 3},
			&models.Config{Type: models.ModelType("prophet")},
			&Options{},
			models.ErrUnknownModelType,
			CodeUnknownModelType,
		},
		"unknown strategy": {
			&split.Config{Strategy: split.Strategy("jackknife"), NSplits: 2, MinTrainSize: 5, Horizon: 3},
			&models.Config{Type: models.ModelNaive},
			&Options{},
			split.ErrUnknownStrategy,
			CodeConfiguration,
		},
		"regressor with lag features": {
			&split.Config{Strategy: split.StrategyExpanding, NSplits: 2, MinTrainSize: 5, Horizon: 3},
			&models.Config{Type: models.ModelRegressor},
			&Options{Features: &featureset.Config{Lags: []int{1}}},
			ErrUnsafePredictFeatures,
			CodeConfiguration,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := Backtest(series, td.splitCfg, td.modelCfg, td.opt)
			require.Error(t, err)
			assert.ErrorIs(t, err, td.err)
			assert.Equal(t, td.code, Code(err))
		})
	}
}

func TestBacktestRegressor(t *testing.T) {
	series := genSeries(t, 60, func(i int) float64 { return 20 + 3*math.Sin(2*math.Pi*float64(i%7)/7) })
	splitCfg := &split.Config{Strategy: split.StrategyExpanding, NSplits: 2, MinTrainSize: 28, Horizon: 7}
	modelCfg := &models.Config{Type: models.ModelRegressor, FitIntercept: true}

	// day-of-week features only; a month column is constant over a train
	// window inside one month and would make the design matrix singular
	opt := &Options{
		Features: &featureset.Config{
			Calendar: featureset.CalendarOptions{DayOfWeek: true, Cyclical: true},
		},
	}
	res, err := Backtest(series, splitCfg, modelCfg, opt)
	require.Nil(t, err)
	require.NotNil(t, res.Summary)

	// day-of-week sin/cos features explain the weekly wave almost exactly
	assert.Less(t, res.Summary.MAE.Mean, 0.5)
}

func TestBacktestRegressorShortTrainWindowSkipped(t *testing.T) {
	// 3 train rows cannot identify the 7 default coefficients; every fold
	// is skipped rather than failing the run
	series := genSeries(t, 12, func(i int) float64 { return float64(i) })
	splitCfg := &split.Config{Strategy: split.StrategySliding, NSplits: 2, MinTrainSize: 3, Horizon: 2}
	modelCfg := &models.Config{Type: models.ModelRegressor, FitIntercept: true}

	res, err := Backtest(series, splitCfg, modelCfg, &Options{})
	require.Nil(t, err)
	require.Len(t, res.Folds, 2)

	assert.Equal(t, 2, res.Skipped)
	for _, fr := range res.Folds {
		assert.Nil(t, fr.Metrics)
		assert.Contains(t, fr.Err, "at least")
	}
	assert.Nil(t, res.Summary)
}

func TestBacktestRegressorCollinearFeaturesSkipped(t *testing.T) {
	// every train window sits inside January, so the month columns of the
	// default feature config are constant and the design matrix is singular
	series := genSeries(t, 30, func(i int) float64 { return 10 + float64(i%7) })
	splitCfg := &split.Config{Strategy: split.StrategyExpanding, NSplits: 2, MinTrainSize: 14, Horizon: 5}
	modelCfg := &models.Config{Type: models.ModelRegressor, FitIntercept: true}

	res, err := Backtest(series, splitCfg, modelCfg, &Options{})
	require.Nil(t, err)
	require.Len(t, res.Folds, 2)

	assert.Equal(t, 2, res.Skipped)
	for _, fr := range res.Folds {
		assert.Nil(t, fr.Metrics)
		assert.Contains(t, fr.Err, "collinear")
	}
	assert.Nil(t, res.Summary, "degenerate folds must not aggregate")
}

func TestBacktestInfersHourlySeason(t *testing.T) {
	// hourly recording frequency implies a 24 step season when the config
	// leaves the season length unset
	start := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	n := 120
	dates := make([]time.Time, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		dates[i] = start.Add(time.Duration(i) * time.Hour)
		y[i] = float64(i % 24)
	}
	series, err := timedataset.New(timedataset.EntityKey{Store: "s1", Product: "p1"}, dates, y)
	require.Nil(t, err)

	splitCfg := &split.Config{Strategy: split.StrategyExpanding, NSplits: 2, MinTrainSize: 48, Horizon: 24}
	res, err := Backtest(series, splitCfg, &models.Config{Type: models.ModelSeasonalNaive}, &Options{})
	require.Nil(t, err)
	require.NotNil(t, res.Summary)

	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, 0.0, res.Summary.MAE.Mean)
}

func TestBacktestDoesNotMutateOptions(t *testing.T) {
	series := genSeries(t, 60, func(i int) float64 { return 20 + 3*math.Sin(2*math.Pi*float64(i%7)/7) })
	splitCfg := &split.Config{Strategy: split.StrategyExpanding, NSplits: 2, MinTrainSize: 28, Horizon: 7}

	feats := &featureset.Config{
		Calendar: featureset.CalendarOptions{DayOfWeek: true, Cyclical: true},
	}
	opt := &Options{Features: feats}
	_, err := Backtest(series, splitCfg, &models.Config{Type: models.ModelRegressor, FitIntercept: true}, opt)
	require.Nil(t, err)

	assert.Same(t, feats, opt.Features)
	assert.Equal(t, featureset.ImputePolicy(""), feats.Impute, "normalization must happen on a copy")
}

func TestBacktestDeterminism(t *testing.T) {
	gen := func(i int) float64 { return 10 + float64((i*7919)%13) }
	splitCfg := &split.Config{Strategy: split.StrategyExpanding, NSplits: 3, MinTrainSize: 14, Horizon: 7}
	modelCfg := &models.Config{Type: models.ModelMovingAverage, Window: 7, Seed: 42}

	a, err := Backtest(genSeries(t, 60, gen), splitCfg, modelCfg, &Options{IncludeBaselines: true})
	require.Nil(t, err)
	b, err := Backtest(genSeries(t, 60, gen), splitCfg, modelCfg, &Options{IncludeBaselines: true})
	require.Nil(t, err)

	assert.Equal(t, a, b)
}

func TestResultTablePrint(t *testing.T) {
	series := genSeries(t, 30, func(i int) float64 { return float64(i % 5) })
	splitCfg := &split.Config{Strategy: split.StrategyExpanding, NSplits: 3, MinTrainSize: 10, Horizon: 5}

	res, err := Backtest(series, splitCfg, &models.Config{Type: models.ModelNaive}, &Options{IncludeBaselines: true})
	require.Nil(t, err)

	var buf bytes.Buffer
	require.Nil(t, res.TablePrint(&buf))
	assert.Contains(t, buf.String(), "mae")
	assert.Contains(t, buf.String(), "fold")
}

func TestCode(t *testing.T) {
	assert.Equal(t, "", Code(nil))
	assert.Equal(t, CodeLeakageInvariant, Code(split.ErrLeakageInvariant))
	assert.Equal(t, CodeInsufficientData, Code(models.ErrInsufficientData))
	assert.Equal(t, CodeInsufficientData, Code(models.ErrRankDeficient))
	assert.Equal(t, CodeModelNotFitted, Code(models.ErrModelNotFitted))
	assert.Equal(t, CodeConfiguration, Code(feature.ErrUnknownAggType))
	assert.Equal(t, CodeInvalidSeries, Code(ErrNoSeries))
	assert.Equal(t, CodeInternal, Code(assert.AnError))
}
