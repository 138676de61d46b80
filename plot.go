package demandcast

import (
	"io"
	"math"
	"os"
	"time"

	"github.com/demandcast/demandcast/timedataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineTSeries generates an echart multi-line chart for some arbitrary
// time/value combination. Each series in y must have the same length as the
// input time slice; NaN cells are skipped.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	lineData := make([][]opts.LineData, len(y))
	for i := 0; i < len(y); i++ {
		lineData[i] = make([]opts.LineData, 0, len(y[i]))
		for j := 0; j < len(y[i]); j++ {
			if math.IsNaN(y[i][j]) {
				lineData[i] = append(lineData[i], opts.LineData{})
				continue
			}
			lineData[i] = append(lineData[i], opts.LineData{Value: y[i][j]})
		}
	}

	line = line.SetXAxis(t)
	for i, series := range seriesName {
		line = line.AddSeries(series, lineData[i])
	}
	return line
}

// LineBacktest generates an echart line chart overlaying the observed demand
// with every completed fold's forecast over its test window.
func LineBacktest(series *timedataset.TimeSeries, res *Result) *charts.Line {
	forecast := make([]float64, series.Len())
	for i := range forecast {
		forecast[i] = math.NaN()
	}
	for _, fr := range res.Folds {
		if fr.Metrics == nil {
			continue
		}
		for i, v := range fr.Forecast {
			forecast[fr.Fold.TestStart+i] = v
		}
	}

	return LineTSeries(
		"Backtest "+series.Key.String(),
		[]string{"Actual", "Forecast"},
		series.T,
		[][]float64{series.Y, forecast},
	)
}

// PlotBacktest renders the backtest chart to an html file at path.
func PlotBacktest(series *timedataset.TimeSeries, res *Result, path string) error {
	page := components.NewPage()
	page.AddCharts(LineBacktest(series, res))

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return page.Render(io.MultiWriter(file))
}
