// Package split partitions a series index range into ordered train/test
// folds for backtesting. Folds are built so the newest fold's test window
// ends at the series end and every fold keeps a configured gap of unused
// observations between train end and test start, simulating the latency
// between data availability and forecast consumption.
package split

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownStrategy  = errors.New("unknown split strategy")
	ErrInvalidConfig    = errors.New("invalid split configuration")
	ErrSeriesTooShort   = errors.New("series too short for requested fold plan")
	ErrLeakageInvariant = errors.New("fold violates leakage invariant")
)

type Strategy string

const (
	// StrategyExpanding fixes the train window start at the series start
	// and grows its end fold over fold.
	StrategyExpanding Strategy = "expanding"
	// StrategySliding keeps the train window at MinTrainSize observations
	// and advances both its edges fold over fold.
	StrategySliding Strategy = "sliding"
)

type Config struct {
	Strategy     Strategy `json:"strategy"`
	NSplits      int      `json:"n_splits"`
	MinTrainSize int      `json:"min_train_size"`
	Gap          int      `json:"gap"`
	Horizon      int      `json:"horizon"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Strategy:     StrategyExpanding,
		NSplits:      3,
		MinTrainSize: 28,
		Gap:          0,
		Horizon:      7,
	}
}

// Validate checks the config against a series of n observations before any
// fold is materialized. A plan that cannot fit reports exactly how many
// observations are missing.
func (c *Config) Validate(n int) (*Config, error) {
	if c == nil {
		c = NewDefaultConfig()
	}
	switch c.Strategy {
	case StrategyExpanding, StrategySliding:
	default:
		return nil, fmt.Errorf("%q, %w", string(c.Strategy), ErrUnknownStrategy)
	}
	if c.NSplits < 1 {
		return nil, fmt.Errorf("n_splits %d must be at least 1, %w", c.NSplits, ErrInvalidConfig)
	}
	if c.MinTrainSize < 1 {
		return nil, fmt.Errorf("min_train_size %d must be at least 1, %w", c.MinTrainSize, ErrInvalidConfig)
	}
	if c.Horizon < 1 {
		return nil, fmt.Errorf("horizon %d must be at least 1, %w", c.Horizon, ErrInvalidConfig)
	}
	if c.Gap < 0 {
		return nil, fmt.Errorf("gap %d must not be negative, %w", c.Gap, ErrInvalidConfig)
	}

	need := c.MinTrainSize + c.Gap + c.NSplits*c.Horizon
	if need > n {
		return nil, fmt.Errorf(
			"%d folds of horizon %d with min train %d and gap %d need %d observations, series has %d, short by %d, %w",
			c.NSplits, c.Horizon, c.MinTrainSize, c.Gap, need, n, need-n, ErrSeriesTooShort)
	}
	return c, nil
}

// Fold is one train/test partition over half-open index ranges
// [TrainStart, TrainEnd) and [TestStart, TestEnd). The gap and horizon that
// produced it ride along for auditability.
type Fold struct {
	Index      int `json:"index"`
	TrainStart int `json:"train_start"`
	TrainEnd   int `json:"train_end"`
	TestStart  int `json:"test_start"`
	TestEnd    int `json:"test_end"`
	Gap        int `json:"gap"`
	Horizon    int `json:"horizon"`
}

func (f Fold) TrainLen() int {
	return f.TrainEnd - f.TrainStart
}

func (f Fold) TestLen() int {
	return f.TestEnd - f.TestStart
}

// Split produces the ordered fold plan over a series of n observations. The
// result is a plain slice, restartable and finite by construction. Every
// returned fold has already passed the leakage assertion.
func Split(cfg *Config, n int) ([]Fold, error) {
	cfg, err := cfg.Validate(n)
	if err != nil {
		return nil, err
	}

	k := cfg.NSplits
	folds := make([]Fold, 0, k)
	for i := 0; i < k; i++ {
		testEnd := n - (k-1-i)*cfg.Horizon
		testStart := testEnd - cfg.Horizon
		trainEnd := testStart - cfg.Gap
		trainStart := 0
		if cfg.Strategy == StrategySliding {
			trainStart = trainEnd - cfg.MinTrainSize
		}
		folds = append(folds, Fold{
			Index:      i,
			TrainStart: trainStart,
			TrainEnd:   trainEnd,
			TestStart:  testStart,
			TestEnd:    testEnd,
			Gap:        cfg.Gap,
			Horizon:    cfg.Horizon,
		})
	}

	if err := checkLeakage(folds); err != nil {
		return nil, err
	}
	return folds, nil
}

// checkLeakage asserts the fold-boundary invariant after generation: the
// last train index plus the gap sits strictly before the first test index
// and the test window is exactly one horizon long. A failure here is a bug
// in the splitter, not a recoverable condition.
func checkLeakage(folds []Fold) error {
	for _, f := range folds {
		maxTrain := f.TrainEnd - 1
		minTest := f.TestStart
		if maxTrain+f.Gap >= minTest {
			return fmt.Errorf(
				"fold %d max train index %d with gap %d reaches test start %d, %w",
				f.Index, maxTrain, f.Gap, minTest, ErrLeakageInvariant)
		}
		if f.TestLen() != f.Horizon {
			return fmt.Errorf("fold %d test window has %d observations, horizon is %d, %w",
				f.Index, f.TestLen(), f.Horizon, ErrLeakageInvariant)
		}
		if f.TrainStart < 0 || f.TrainStart >= f.TrainEnd {
			return fmt.Errorf("fold %d train range [%d, %d) is empty or negative, %w",
				f.Index, f.TrainStart, f.TrainEnd, ErrLeakageInvariant)
		}
	}
	return nil
}
