package feature

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Lag references the target value observed Offset steps before the current
// row. Offset must be at least 1; offsets of zero or below would read the
// current or a future observation.
type Lag struct {
	Offset int `json:"offset"`
}

func NewLag(offset int) *Lag {
	return &Lag{offset}
}

func (l Lag) String() string {
	return fmt.Sprintf("lag_%02d", l.Offset)
}

func (l Lag) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "offset":
		return strconv.Itoa(l.Offset), true
	}
	return "", false
}

func (l Lag) Type() FeatureType {
	return FeatureTypeLag
}

func (l Lag) Decode() map[string]string {
	res := make(map[string]string)
	res["offset"] = strconv.Itoa(l.Offset)
	return res
}

func (l *Lag) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Offset string `json:"offset"`
	}
	err := json.Unmarshal(data, &labelStr)
	if err != nil {
		return err
	}
	l.Offset, err = strconv.Atoi(labelStr.Offset)
	if err != nil {
		return err
	}
	return nil
}
