package plan

import (
	"errors"
	"fmt"
	"strings"
)

// CarbType is the carbohydrate category assigned to a day.
type CarbType int

const (
	CarbHigh CarbType = iota + 1
	CarbMedium
	CarbLow
)

// AllCarbTypes lists the categories in display order.
var AllCarbTypes = [...]CarbType{CarbHigh, CarbMedium, CarbLow}

var ErrUnknownCarbType = errors.New("unknown carb type")

func (t CarbType) Valid() bool {
	return t >= CarbHigh && t <= CarbLow
}

// Code returns the stable wire identifier ("high", "medium", "low").
func (t CarbType) Code() string {
	switch t {
	case CarbHigh:
		return "high"
	case CarbMedium:
		return "medium"
	case CarbLow:
		return "low"
	default:
		return ""
	}
}

func (t CarbType) String() string {
	if code := t.Code(); code != "" {
		return code
	}
	return fmt.Sprintf("CarbType(%d)", int(t))
}

// ParseCarbType accepts wire codes and the Chinese display labels used by
// older persisted data and model output.
func ParseCarbType(s string) (CarbType, error) {
	v := strings.TrimSpace(s)
	switch strings.ToLower(v) {
	case "high":
		return CarbHigh, nil
	case "medium":
		return CarbMedium, nil
	case "low":
		return CarbLow, nil
	}
	for _, t := range AllCarbTypes {
		if v == Label(t) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCarbType, s)
}

func (t CarbType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCarbType, int(t))
	}
	return []byte(t.Code()), nil
}

func (t *CarbType) UnmarshalText(b []byte) error {
	parsed, err := ParseCarbType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Macros are daily targets in grams and kcal.
type Macros struct {
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Calories float64 `json:"calories"`
}

// DailyPlan is one day of the weekly schedule.
type DailyPlan struct {
	DayLabel      string   `json:"day_label"`
	CarbType      CarbType `json:"carb_type"`
	TrainingFocus string   `json:"training_focus"`
	Macros        Macros   `json:"macros"`
	Meals         []string `json:"meals"`
	Tips          string   `json:"tips"`
}

func (d DailyPlan) clone() DailyPlan {
	out := d
	if d.Meals != nil {
		out.Meals = append([]string(nil), d.Meals...)
	}
	return out
}

// WeeklySchedule is seven DailyPlan entries ordered Monday to Sunday.
type WeeklySchedule []DailyPlan

const DaysPerWeek = 7

// Weekdays are the fixed day labels, Monday first.
var Weekdays = [DaysPerWeek]string{"星期一", "星期二", "星期三", "星期四", "星期五", "星期六", "星期日"}

var (
	ErrScheduleLength   = errors.New("weekly schedule must contain exactly 7 days")
	ErrUnknownDayLabel  = errors.New("unknown day label")
	ErrDuplicateDay     = errors.New("duplicate day label")
	ErrDayOrder         = errors.New("weekly schedule must be ordered Monday to Sunday")
	ErrInvalidDayFields = errors.New("invalid day fields")
)

// WeekdayIndex returns the Monday-based index of a day label.
func WeekdayIndex(label string) (int, bool) {
	label = strings.TrimSpace(label)
	for i, d := range Weekdays {
		if d == label {
			return i, true
		}
	}
	return -1, false
}

// exactWeekdayIndex is WeekdayIndex without trimming.
func exactWeekdayIndex(label string) (int, bool) {
	idx, ok := WeekdayIndex(label)
	if !ok || Weekdays[idx] != label {
		return -1, false
	}
	return idx, true
}

// Validate checks that entry i is Weekdays[i] and the per-day fields.
func (s WeeklySchedule) Validate() error {
	if len(s) != DaysPerWeek {
		return fmt.Errorf("%w: got %d", ErrScheduleLength, len(s))
	}
	var seen [DaysPerWeek]bool
	for i, day := range s {
		idx, ok := exactWeekdayIndex(day.DayLabel)
		if !ok {
			return fmt.Errorf("%w: day[%d]=%q", ErrUnknownDayLabel, i, day.DayLabel)
		}
		if seen[idx] {
			return fmt.Errorf("%w: %q", ErrDuplicateDay, day.DayLabel)
		}
		seen[idx] = true
		if idx != i {
			return fmt.Errorf("%w: day[%d]=%q", ErrDayOrder, i, day.DayLabel)
		}
		if !day.CarbType.Valid() {
			return fmt.Errorf("%w: day[%d] carb type", ErrInvalidDayFields, i)
		}
		m := day.Macros
		if m.Protein < 0 || m.Carbs < 0 || m.Fat < 0 || m.Calories < 0 {
			return fmt.Errorf("%w: day[%d] negative macros", ErrInvalidDayFields, i)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (s WeeklySchedule) Clone() WeeklySchedule {
	if s == nil {
		return nil
	}
	out := make(WeeklySchedule, len(s))
	for i, d := range s {
		out[i] = d.clone()
	}
	return out
}

// FullPlan is the result of one generation call.
type FullPlan struct {
	WeeklySchedule WeeklySchedule `json:"weekly_schedule"`
	Summary        string         `json:"summary"`
	Advice         string         `json:"advice"`
}

func (p FullPlan) Clone() FullPlan {
	p.WeeklySchedule = p.WeeklySchedule.Clone()
	return p
}
