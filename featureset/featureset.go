// Package featureset turns a raw demand series into model-ready feature
// columns under strict temporal-causality rules. Rows beyond the cutoff are
// dropped before any computation runs, lag and rolling columns only ever read
// strictly earlier observations, and every series in a batch is computed in
// isolation so one entity's history cannot leak into another's columns.
package featureset

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/demandcast/demandcast/feature"
	"github.com/demandcast/demandcast/timedataset"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrNoSeries                   = errors.New("no series to compute features from")
	ErrNoObservationsBeforeCutoff = errors.New("series has no observations at or before cutoff")
	ErrDuplicateEntity            = errors.New("duplicate entity key in batch")
)

// Compute derives the configured feature columns from one entity's series.
// Observations dated after cutoff are removed before any lag, rolling, or
// calendar column is computed, so no feature can ever be a function of data
// beyond the cutoff. Insufficient history yields filled cells, not an error.
func Compute(series *timedataset.TimeSeries, cfg *Config, cutoff time.Time) (*Table, error) {
	cfg, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	if series == nil {
		return nil, ErrNoSeries
	}

	truncated := series.Truncate(cutoff)
	if truncated == nil {
		return nil, fmt.Errorf("entity %s cutoff %s, %w",
			series.Key, cutoff.Format(time.DateOnly), ErrNoObservationsBeforeCutoff)
	}

	n := truncated.Len()
	set := feature.NewSet(n)

	for _, lag := range cfg.Lags {
		if err := set.Set(feature.NewLag(lag), lagColumn(truncated.Y, lag, cfg.Fill)); err != nil {
			return nil, err
		}
	}
	for _, w := range cfg.Windows {
		col, err := rollingColumn(truncated.Y, w, cfg.Fill)
		if err != nil {
			return nil, err
		}
		if err := set.Set(feature.NewRolling(w.Size, w.Agg), col); err != nil {
			return nil, err
		}
	}
	if err := calendarColumns(set, truncated.T, cfg.Calendar); err != nil {
		return nil, err
	}

	imputeSet(set, cfg.Impute)

	return &Table{
		Key:      truncated.Key,
		T:        truncated.T,
		Target:   truncated.Y,
		Features: set,
	}, nil
}

// ComputeBatch computes feature tables for a batch of entities. Each series
// is computed independently from its own history only; batch membership has
// no effect on any entity's columns. An entity with nothing at or before the
// cutoff fails the whole batch rather than being silently dropped.
func ComputeBatch(series []*timedataset.TimeSeries, cfg *Config, cutoff time.Time) (map[timedataset.EntityKey]*Table, error) {
	out := make(map[timedataset.EntityKey]*Table, len(series))
	for _, s := range series {
		if s == nil {
			return nil, ErrNoSeries
		}
		if _, exists := out[s.Key]; exists {
			return nil, fmt.Errorf("entity %s, %w", s.Key, ErrDuplicateEntity)
		}
		tbl, err := Compute(s, cfg, cutoff)
		if err != nil {
			return nil, err
		}
		out[s.Key] = tbl
	}
	return out, nil
}

// lagColumn returns col[t] = y[t-k] for t >= k and fill below that.
func lagColumn(y []float64, k int, fill float64) []float64 {
	col := make([]float64, len(y))
	for t := 0; t < len(y); t++ {
		if t < k {
			col[t] = fill
			continue
		}
		col[t] = y[t-k]
	}
	return col
}

// rollingColumn aggregates y[t-w .. t-1] for each row. The window is shifted
// one step back so the current observation never contributes to its own row.
func rollingColumn(y []float64, w Window, fill float64) ([]float64, error) {
	col := make([]float64, len(y))
	for t := 0; t < len(y); t++ {
		if t < w.Size {
			col[t] = fill
			continue
		}
		window := y[t-w.Size : t]
		val, err := aggregate(window, w.Agg)
		if err != nil {
			return nil, err
		}
		col[t] = val
	}
	return col, nil
}

func aggregate(window []float64, agg feature.AggType) (float64, error) {
	switch agg {
	case feature.AggMean:
		return stat.Mean(window, nil), nil
	case feature.AggStd:
		if len(window) < 2 {
			return 0.0, nil
		}
		return stat.StdDev(window, nil), nil
	case feature.AggMin:
		return floats.Min(window), nil
	case feature.AggMax:
		return floats.Max(window), nil
	case feature.AggSum:
		return floats.Sum(window), nil
	}
	return 0, fmt.Errorf("%q, %w", string(agg), feature.ErrUnknownAggType)
}

func calendarColumns(set *feature.Set, t []time.Time, opt CalendarOptions) error {
	if opt.DayOfWeek {
		col := make([]float64, len(t))
		for i, dt := range t {
			col[i] = float64(dt.Weekday())
		}
		if err := setPeriodic(set, feature.CalendarDayOfWeek, col, 7.0, opt.Cyclical); err != nil {
			return err
		}
	}
	if opt.Month {
		col := make([]float64, len(t))
		for i, dt := range t {
			col[i] = float64(dt.Month())
		}
		if err := setPeriodic(set, feature.CalendarMonth, col, 12.0, opt.Cyclical); err != nil {
			return err
		}
	}
	if opt.Quarter {
		col := make([]float64, len(t))
		for i, dt := range t {
			col[i] = float64((int(dt.Month())-1)/3 + 1)
		}
		if err := setPeriodic(set, feature.CalendarQuarter, col, 4.0, opt.Cyclical); err != nil {
			return err
		}
	}
	if opt.Holiday {
		hcal := holidayCalendar()
		col := make([]float64, len(t))
		for i, dt := range t {
			if actual, observed, _ := hcal.IsHoliday(dt); actual || observed {
				col[i] = 1.0
			}
		}
		if err := set.Set(feature.NewCalendar(feature.CalendarHoliday, feature.CalendarCompRaw), col); err != nil {
			return err
		}
	}
	return nil
}

// setPeriodic stores the raw periodic field and, when cyclical encoding is
// on, its sin/cos pair mapping the field f with period P to
// (sin(2*pi*f/P), cos(2*pi*f/P)).
func setPeriodic(set *feature.Set, field feature.CalendarField, col []float64, period float64, cyclical bool) error {
	if err := set.Set(feature.NewCalendar(field, feature.CalendarCompRaw), col); err != nil {
		return err
	}
	if !cyclical {
		return nil
	}

	sinCol := make([]float64, len(col))
	cosCol := make([]float64, len(col))
	for i, f := range col {
		sinCol[i] = math.Sin(2.0 * math.Pi * f / period)
		cosCol[i] = math.Cos(2.0 * math.Pi * f / period)
	}
	if err := set.Set(feature.NewCalendar(field, feature.CalendarCompSin), sinCol); err != nil {
		return err
	}
	return set.Set(feature.NewCalendar(field, feature.CalendarCompCos), cosCol)
}

func holidayCalendar() *cal.Calendar {
	c := &cal.Calendar{}
	c.AddHoliday(us.Holidays...)
	return c
}

// imputeSet rewrites unfilled cells after all columns are computed. Running
// after feature computation keeps imputation leakage-safe: a forward-filled
// cell can only ever carry an earlier row's value and no lag or window reads
// the column again.
func imputeSet(set *feature.Set, policy ImputePolicy) {
	if policy == ImputeNone {
		return
	}
	for _, label := range set.Labels().Labels() {
		col, _ := set.Get(label)
		switch policy {
		case ImputeZero:
			for i, v := range col {
				if math.IsNaN(v) {
					col[i] = 0.0
				}
			}
		case ImputeForward:
			last := math.NaN()
			for i, v := range col {
				if math.IsNaN(v) {
					col[i] = last
					continue
				}
				last = v
			}
		}
		// row count unchanged
		_ = set.Set(label, col)
	}
}
