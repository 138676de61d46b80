package timedataset

import (
	"errors"
	"time"
)

var ErrCannotInferFreq = errors.New("cannot infer frequency from fewer than 2 dates")

type TimeSlice []time.Time

func (t TimeSlice) StartTime() time.Time {
	var startTime time.Time
	if len(t) < 1 {
		return startTime
	}
	return t[0]
}

func (t TimeSlice) EndTime() time.Time {
	var lastTime time.Time
	if len(t) < 1 {
		return lastTime
	}
	return t[len(t)-1]
}

// EstimateFreq returns the most common delta between consecutive dates,
// preferring the smallest delta on ties. Gap-aware series report their base
// recording frequency rather than the gap width.
func (t TimeSlice) EstimateFreq() (time.Duration, error) {
	if len(t) < 2 {
		return 0, ErrCannotInferFreq
	}

	frequencies := make(map[time.Duration]int)
	for i := 1; i < len(t); i++ {
		delta := t[i].Sub(t[i-1])
		frequencies[delta] += 1
	}

	var best time.Duration
	var bestCnt int
	for delta, cnt := range frequencies {
		if cnt > bestCnt || (cnt == bestCnt && delta < best) {
			bestCnt = cnt
			best = delta
		}
	}
	return best, nil
}
