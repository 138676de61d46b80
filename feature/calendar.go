package feature

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

type CalendarField string

const (
	CalendarDayOfWeek CalendarField = "day_of_week"
	CalendarMonth     CalendarField = "month"
	CalendarQuarter   CalendarField = "quarter"
	CalendarHoliday   CalendarField = "holiday"
)

// CalendarComp distinguishes the raw periodic field from its cyclical
// sin/cos encoding.
type CalendarComp string

const (
	CalendarCompRaw CalendarComp = "raw"
	CalendarCompSin CalendarComp = "sin"
	CalendarCompCos CalendarComp = "cos"
)

// Calendar derives a column from the row date alone. Calendar columns are
// known for any date, past or future, so they are always safe to use at
// prediction time.
type Calendar struct {
	Field CalendarField `json:"field"`
	Comp  CalendarComp  `json:"component"`
}

func NewCalendar(field CalendarField, comp CalendarComp) *Calendar {
	return &Calendar{field, comp}
}

func (c Calendar) String() string {
	if c.Comp == CalendarCompRaw {
		return fmt.Sprintf("cal_%s", c.Field)
	}
	return fmt.Sprintf("cal_%s_%s", c.Field, c.Comp)
}

func (c Calendar) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "field":
		return string(c.Field), true
	case "component":
		return string(c.Comp), true
	}
	return "", false
}

func (c Calendar) Type() FeatureType {
	return FeatureTypeCalendar
}

func (c Calendar) Decode() map[string]string {
	res := make(map[string]string)
	res["field"] = string(c.Field)
	res["component"] = string(c.Comp)
	return res
}

func (c *Calendar) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Field CalendarField `json:"field"`
		Comp  CalendarComp  `json:"component"`
	}
	err := json.Unmarshal(data, &labelStr)
	if err != nil {
		return err
	}
	c.Field = labelStr.Field
	c.Comp = labelStr.Comp
	return nil
}
