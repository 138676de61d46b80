package timedataset

import (
	"math"
	"math/rand/v2"
	"time"
)

// GenerateT returns n dates at the given interval ending just before the time
// reported by nowFunc, truncated to the minute so repeated calls within a
// minute line up.
func GenerateT(n int, interval time.Duration, nowFunc func() time.Time) []time.Time {
	t := make([]time.Time, 0, n)
	ct := time.Unix(nowFunc().Unix()/60*60, 0).Add(-time.Duration(n) * interval)
	for i := 0; i < n; i++ {
		t = append(t, ct.Add(interval*time.Duration(i)))
	}
	return t
}

type Series []float64

func (s Series) Add(src Series) Series {
	for i := range s {
		s[i] += src[i]
	}
	return s
}

// GenerateConstY returns a flat demand level, the base load of most
// simulated store/product histories.
func GenerateConstY(n int, val float64) Series {
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		y[i] = val
	}
	return Series(y)
}

// GenerateWeeklyY overlays a weekly demand cycle on top of zero, peaking on
// the same weekday each week.
func GenerateWeeklyY(t []time.Time, amp float64) Series {
	n := len(t)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		dow := float64(t[i].Weekday())
		y[i] = amp * math.Sin(2.0*math.Pi*dow/7.0)
	}
	return Series(y)
}

// GenerateTrendY returns a linear demand drift of slope units per step.
func GenerateTrendY(n int, slope float64) Series {
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		y[i] = slope * float64(i)
	}
	return Series(y)
}

// GenerateNoise returns seeded gaussian noise so simulated histories are
// reproducible run over run.
func GenerateNoise(n int, scale float64, seed uint64) Series {
	rnd := rand.New(rand.NewPCG(seed, seed))
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		y[i] = rnd.NormFloat64() * scale
	}
	return Series(y)
}
