package timedataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genDays(start time.Time, n int) []time.Time {
	t := make([]time.Time, n)
	for i := 0; i < n; i++ {
		t[i] = start.AddDate(0, 0, i)
	}
	return t
}

func TestNew(t *testing.T) {
	start := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	key := EntityKey{Store: "s1", Product: "p1"}

	testData := map[string]struct {
		t   []time.Time
		y   []float64
		err error
	}{
		"valid": {
			genDays(start, 3),
			[]float64{1, 2, 3},
			nil,
		},
		"empty": {
			nil,
			nil,
			ErrNoObservations,
		},
		"length mismatch": {
			genDays(start, 3),
			[]float64{1, 2},
			ErrDatasetLenMismatch,
		},
		"duplicate date": {
			[]time.Time{start, start, start.AddDate(0, 0, 1)},
			[]float64{1, 2, 3},
			ErrNonMonotonic,
		},
		"decreasing date": {
			[]time.Time{start.AddDate(0, 0, 1), start, start.AddDate(0, 0, 2)},
			[]float64{1, 2, 3},
			ErrNonMonotonic,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			ts, err := New(key, td.t, td.y)
			if td.err != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, key, ts.Key)
			assert.Equal(t, len(td.y), ts.Len())
		})
	}
}

func TestNewCopiesInput(t *testing.T) {
	start := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	y := []float64{1, 2, 3}
	ts, err := New(EntityKey{"s1", "p1"}, genDays(start, 3), y)
	require.Nil(t, err)

	y[0] = 99
	assert.Equal(t, 1.0, ts.Y[0])
}

func TestSlice(t *testing.T) {
	start := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	ts, err := New(EntityKey{"s1", "p1"}, genDays(start, 5), []float64{1, 2, 3, 4, 5})
	require.Nil(t, err)

	testData := map[string]struct {
		i, j     int
		err      error
		expected []float64
	}{
		"middle":      {1, 4, nil, []float64{2, 3, 4}},
		"full":        {0, 5, nil, []float64{1, 2, 3, 4, 5}},
		"empty range": {2, 2, ErrSliceOutOfBounds, nil},
		"past end":    {3, 6, ErrSliceOutOfBounds, nil},
		"negative":    {-1, 2, ErrSliceOutOfBounds, nil},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			sub, err := ts.Slice(td.i, td.j)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, sub.Y)

			sub.Y[0] = 99
			assert.Equal(t, 1.0, ts.Y[0])
		})
	}
}

func TestTruncate(t *testing.T) {
	start := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	ts, err := New(EntityKey{"s1", "p1"}, genDays(start, 5), []float64{1, 2, 3, 4, 5})
	require.Nil(t, err)

	testData := map[string]struct {
		cutoff   time.Time
		expected []float64
	}{
		"mid series":        {start.AddDate(0, 0, 2), []float64{1, 2, 3}},
		"exactly on last":   {start.AddDate(0, 0, 4), []float64{1, 2, 3, 4, 5}},
		"beyond last":       {start.AddDate(0, 0, 30), []float64{1, 2, 3, 4, 5}},
		"before first":      {start.AddDate(0, 0, -1), nil},
		"exactly on first":  {start, []float64{1}},
		"between two dates": {start.AddDate(0, 0, 2).Add(12 * time.Hour), []float64{1, 2, 3}},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			sub := ts.Truncate(td.cutoff)
			if td.expected == nil {
				assert.Nil(t, sub)
				return
			}
			require.NotNil(t, sub)
			assert.Equal(t, td.expected, sub.Y)
			for _, dt := range sub.T {
				assert.False(t, dt.After(td.cutoff))
			}
		})
	}
}
