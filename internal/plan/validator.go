package plan

import (
	"fmt"
	"strings"
)

// Deficit is a carb type scheduled fewer times than recommended.
type Deficit struct {
	CarbType CarbType `json:"carb_type"`
	Missing  int      `json:"missing"`
}

// Validation is the read-only diagnostic of a schedule.
type Validation struct {
	Counts Counts `json:"counts"`
	// Recommended is nil for legacy profiles.
	Recommended *Counts   `json:"recommended,omitempty"`
	Deficits    []Deficit `json:"deficits"`
	// Absent lists carb types with zero days (legacy check only).
	Absent   []CarbType `json:"absent,omitempty"`
	Warnings []string   `json:"warnings"`
}

// Validate compares the schedule tally with the recommended distribution.
// Only shortfalls are reported; a surplus is never a warning on its own.
// Without a recommendation only completely missing categories are reported.
func Validate(s WeeklySchedule, recommended *Counts) Validation {
	v := Validation{
		Counts:   Tally(s),
		Deficits: []Deficit{},
		Warnings: []string{},
	}

	if recommended != nil {
		rec := *recommended
		v.Recommended = &rec
		for _, ct := range AllCarbTypes {
			current, want := v.Counts.Get(ct), rec.Get(ct)
			if current < want {
				d := Deficit{CarbType: ct, Missing: want - current}
				v.Deficits = append(v.Deficits, d)
				v.Warnings = append(v.Warnings, DeficitWarning(d))
			}
		}
		return v
	}

	for _, ct := range AllCarbTypes {
		if v.Counts.Get(ct) == 0 {
			v.Absent = append(v.Absent, ct)
		}
	}
	if len(v.Absent) > 0 {
		v.Warnings = append(v.Warnings, AbsentWarning(v.Absent))
	}
	return v
}

func DeficitWarning(d Deficit) string {
	return fmt.Sprintf("您的%s比科学推荐方案少了 %d 天。", Label(d.CarbType), d.Missing)
}

func AbsentWarning(types []CarbType) string {
	names := make([]string, len(types))
	for i, ct := range types {
		names[i] = Label(ct)
	}
	return fmt.Sprintf("检测到您的日程中完全缺失 %s。", strings.Join(names, "、"))
}
