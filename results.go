package demandcast

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/demandcast/demandcast/metrics"
	"github.com/demandcast/demandcast/split"
	"gonum.org/v1/gonum/stat"
)

// FoldMetrics holds the accuracy scores for one fold. WAPE is nil when the
// fold's actuals sum to zero in absolute value.
type FoldMetrics struct {
	MAE   float64  `json:"mae"`
	SMAPE float64  `json:"smape"`
	WAPE  *float64 `json:"wape"`
	Bias  float64  `json:"bias"`
}

// FoldResult reports one fold's outcome. A fold whose model could not be
// fitted carries the failure reason in Err and empty metrics; it is counted
// but excluded from aggregation.
type FoldResult struct {
	Fold     split.Fold   `json:"fold"`
	Metrics  *FoldMetrics `json:"metrics,omitempty"`
	Actual   []float64    `json:"actual,omitempty"`
	Forecast []float64    `json:"forecast,omitempty"`
	Err      string       `json:"error,omitempty"`
}

// MetricSummary is the mean and standard deviation of one metric across the
// folds that produced it.
type MetricSummary struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// Summary aggregates fold metrics. Stability is the coefficient of variation
// of MAE across folds; nil when undefined.
type Summary struct {
	MAE       MetricSummary  `json:"mae"`
	SMAPE     MetricSummary  `json:"smape"`
	WAPE      *MetricSummary `json:"wape,omitempty"`
	Bias      MetricSummary  `json:"bias"`
	Stability *float64       `json:"stability,omitempty"`
}

// BaselineComparison reports one baseline's aggregate MAE and the candidate's
// relative improvement over it per metric, in percent. Positive improvement
// means the candidate beat the baseline.
type BaselineComparison struct {
	Summary        Summary            `json:"summary"`
	ImprovementPct map[string]float64 `json:"improvement_pct"`
	Skipped        int                `json:"skipped"`
}

// Result is the full outcome of one backtest run.
type Result struct {
	Folds     []FoldResult                  `json:"folds"`
	Summary   *Summary                      `json:"summary,omitempty"`
	Skipped   int                           `json:"skipped"`
	Baselines map[string]BaselineComparison `json:"baselines,omitempty"`
}

// summarize aggregates the metrics of completed folds. Returns nil when no
// fold completed.
func summarize(folds []FoldResult) *Summary {
	var maes, smapes, wapes, biases []float64
	for _, fr := range folds {
		if fr.Metrics == nil {
			continue
		}
		maes = append(maes, fr.Metrics.MAE)
		smapes = append(smapes, fr.Metrics.SMAPE)
		biases = append(biases, fr.Metrics.Bias)
		if fr.Metrics.WAPE != nil {
			wapes = append(wapes, *fr.Metrics.WAPE)
		}
	}
	if len(maes) == 0 {
		return nil
	}

	s := &Summary{
		MAE:   summarizeMetric(maes),
		SMAPE: summarizeMetric(smapes),
		Bias:  summarizeMetric(biases),
	}
	if len(wapes) > 0 {
		ws := summarizeMetric(wapes)
		s.WAPE = &ws
	}
	if si := metrics.StabilityIndex(maes); !math.IsNaN(si) {
		s.Stability = &si
	}
	return s
}

func summarizeMetric(vals []float64) MetricSummary {
	ms := MetricSummary{Mean: stat.Mean(vals, nil)}
	if len(vals) > 1 {
		ms.Std = stat.StdDev(vals, nil)
	}
	return ms
}

// improvementPct computes (baseline - candidate) / baseline * 100 per
// metric, skipping metrics whose baseline mean is zero or unavailable.
func improvementPct(candidate, baseline *Summary) map[string]float64 {
	out := make(map[string]float64)
	if candidate == nil || baseline == nil {
		return out
	}
	if baseline.MAE.Mean != 0 {
		out["mae"] = (baseline.MAE.Mean - candidate.MAE.Mean) / baseline.MAE.Mean * 100.0
	}
	if baseline.SMAPE.Mean != 0 {
		out["smape"] = (baseline.SMAPE.Mean - candidate.SMAPE.Mean) / baseline.SMAPE.Mean * 100.0
	}
	if baseline.WAPE != nil && candidate.WAPE != nil && baseline.WAPE.Mean != 0 {
		out["wape"] = (baseline.WAPE.Mean - candidate.WAPE.Mean) / baseline.WAPE.Mean * 100.0
	}
	return out
}

// TablePrint writes a human readable summary of the backtest.
func (r *Result) TablePrint(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)

	fmt.Fprintf(tw, "fold\ttrain\ttest\tmae\tsmape\twape\tbias\n")
	for _, fr := range r.Folds {
		if fr.Metrics == nil {
			fmt.Fprintf(tw, "%d\t[%d,%d)\t[%d,%d)\tskipped: %s\n",
				fr.Fold.Index,
				fr.Fold.TrainStart, fr.Fold.TrainEnd,
				fr.Fold.TestStart, fr.Fold.TestEnd,
				fr.Err)
			continue
		}
		wape := "null"
		if fr.Metrics.WAPE != nil {
			wape = fmt.Sprintf("%.3f", *fr.Metrics.WAPE)
		}
		fmt.Fprintf(tw, "%d\t[%d,%d)\t[%d,%d)\t%.3f\t%.3f\t%s\t%.3f\n",
			fr.Fold.Index,
			fr.Fold.TrainStart, fr.Fold.TrainEnd,
			fr.Fold.TestStart, fr.Fold.TestEnd,
			fr.Metrics.MAE, fr.Metrics.SMAPE, wape, fr.Metrics.Bias)
	}

	if r.Summary != nil {
		fmt.Fprintf(tw, "\nmae\t%.3f +/- %.3f\n", r.Summary.MAE.Mean, r.Summary.MAE.Std)
		fmt.Fprintf(tw, "smape\t%.3f +/- %.3f\n", r.Summary.SMAPE.Mean, r.Summary.SMAPE.Std)
		if r.Summary.WAPE != nil {
			fmt.Fprintf(tw, "wape\t%.3f +/- %.3f\n", r.Summary.WAPE.Mean, r.Summary.WAPE.Std)
		}
		fmt.Fprintf(tw, "bias\t%.3f +/- %.3f\n", r.Summary.Bias.Mean, r.Summary.Bias.Std)
		if r.Summary.Stability != nil {
			fmt.Fprintf(tw, "stability\t%.3f\n", *r.Summary.Stability)
		}
	}
	if r.Skipped > 0 {
		fmt.Fprintf(tw, "skipped folds\t%d\n", r.Skipped)
	}

	for name, base := range r.Baselines {
		fmt.Fprintf(tw, "\nvs %s:\n", name)
		for metric, pct := range base.ImprovementPct {
			fmt.Fprintf(tw, "%s\t%+.2f%%\n", metric, pct)
		}
	}
	return tw.Flush()
}
