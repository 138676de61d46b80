package featureset

import (
	"math"
	"time"

	"github.com/demandcast/demandcast/feature"
	"github.com/demandcast/demandcast/timedataset"
	"gonum.org/v1/gonum/mat"
)

// Table is the model-ready output of the builder: dates, the target column,
// and one column per configured feature, all row-aligned.
type Table struct {
	Key      timedataset.EntityKey
	T        []time.Time
	Target   []float64
	Features *feature.Set
}

func (tbl *Table) Len() int {
	return len(tbl.T)
}

// Matrix returns the feature columns as a design matrix for regression.
func (tbl *Table) Matrix(intercept bool) (*mat.Dense, error) {
	return tbl.Features.Matrix(intercept)
}

// Complete returns a copy of the table keeping only rows where every feature
// cell is defined. Early rows of a fresh series typically drop out here until
// enough history accrues for the longest lag or window.
func (tbl *Table) Complete() *Table {
	labels := tbl.Features.Labels().Labels()
	cols := make([][]float64, len(labels))
	for i, label := range labels {
		cols[i], _ = tbl.Features.Get(label)
	}

	var keep []int
	for row := 0; row < len(tbl.T); row++ {
		defined := true
		for _, col := range cols {
			if math.IsNaN(col[row]) {
				defined = false
				break
			}
		}
		if defined {
			keep = append(keep, row)
		}
	}

	out := &Table{
		Key:      tbl.Key,
		T:        make([]time.Time, len(keep)),
		Target:   make([]float64, len(keep)),
		Features: feature.NewSet(len(keep)),
	}
	for i, row := range keep {
		out.T[i] = tbl.T[row]
		out.Target[i] = tbl.Target[row]
	}
	for i, label := range labels {
		col := make([]float64, len(keep))
		for j, row := range keep {
			col[j] = cols[i][row]
		}
		// row count matches by construction
		_ = out.Features.Set(label, col)
	}
	return out
}
