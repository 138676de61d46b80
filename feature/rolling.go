package feature

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Rolling aggregates the Window target values strictly before the current
// row. The current observation is never part of its own window.
type Rolling struct {
	Window int     `json:"window"`
	Agg    AggType `json:"agg"`
}

func NewRolling(window int, agg AggType) *Rolling {
	return &Rolling{window, agg}
}

func (r Rolling) String() string {
	return fmt.Sprintf("roll_%s_%02d", r.Agg, r.Window)
}

func (r Rolling) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "window":
		return strconv.Itoa(r.Window), true
	case "agg":
		return string(r.Agg), true
	}
	return "", false
}

func (r Rolling) Type() FeatureType {
	return FeatureTypeRolling
}

func (r Rolling) Decode() map[string]string {
	res := make(map[string]string)
	res["window"] = strconv.Itoa(r.Window)
	res["agg"] = string(r.Agg)
	return res
}

func (r *Rolling) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Window string  `json:"window"`
		Agg    AggType `json:"agg"`
	}
	err := json.Unmarshal(data, &labelStr)
	if err != nil {
		return err
	}
	r.Agg = labelStr.Agg
	r.Window, err = strconv.Atoi(labelStr.Window)
	if err != nil {
		return err
	}
	return nil
}
