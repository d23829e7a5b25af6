package plan

import (
	"errors"
	"fmt"
	"strings"
)

// PreferenceAuto leaves the day's category to the generator.
const PreferenceAuto = "auto"

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

const (
	ActivitySedentary = "sedentary"
	ActivityLight     = "light"
	ActivityModerate  = "moderate"
	ActivityHigh      = "high"
	ActivityAthlete   = "athlete"
)

// UserStats is the input to plan generation.
type UserStats struct {
	Age                 int     `json:"age"`
	Gender              string  `json:"gender"`
	HeightCm            float64 `json:"height_cm"`
	WeightKg            float64 `json:"weight_kg"`
	BodyFatPct          float64 `json:"body_fat_pct"`
	ActivityLevel       string  `json:"activity_level"`
	TrainingDaysPerWeek int     `json:"training_days_per_week"`
	TargetBodyFatPct    float64 `json:"target_body_fat_pct"`
	TargetWeeks         int     `json:"target_weeks"`
	// WeeklyPreferences maps a weekday label to a carb type code or "auto".
	WeeklyPreferences map[string]string `json:"weekly_preferences,omitempty"`
}

var ErrInvalidStats = errors.New("invalid user stats")

func (u UserStats) Validate() error {
	if u.Age <= 0 || u.Age > 120 {
		return fmt.Errorf("%w: age must be 1-120", ErrInvalidStats)
	}
	if u.Gender != GenderMale && u.Gender != GenderFemale {
		return fmt.Errorf("%w: gender must be male or female", ErrInvalidStats)
	}
	if u.HeightCm <= 0 || u.WeightKg <= 0 {
		return fmt.Errorf("%w: height and weight must be positive", ErrInvalidStats)
	}
	if u.BodyFatPct <= 0 || u.BodyFatPct >= 100 || u.TargetBodyFatPct <= 0 || u.TargetBodyFatPct >= 100 {
		return fmt.Errorf("%w: body fat percentages must be within 0-100", ErrInvalidStats)
	}
	switch u.ActivityLevel {
	case ActivitySedentary, ActivityLight, ActivityModerate, ActivityHigh, ActivityAthlete:
	default:
		return fmt.Errorf("%w: unknown activity level %q", ErrInvalidStats, u.ActivityLevel)
	}
	if u.TrainingDaysPerWeek < 0 || u.TrainingDaysPerWeek > DaysPerWeek {
		return fmt.Errorf("%w: training days must be 0-7", ErrInvalidStats)
	}
	if u.TargetWeeks <= 0 {
		return fmt.Errorf("%w: target weeks must be positive", ErrInvalidStats)
	}
	for day, pref := range u.WeeklyPreferences {
		if _, ok := exactWeekdayIndex(day); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownDayLabel, day)
		}
		if strings.EqualFold(pref, PreferenceAuto) || pref == LabelAuto {
			continue
		}
		if _, err := ParseCarbType(pref); err != nil {
			return fmt.Errorf("%w: preference for %s: %v", ErrInvalidStats, day, err)
		}
	}
	return nil
}

// ForcedDays returns the non-auto preferences in weekday order.
func (u UserStats) ForcedDays() []DayPreference {
	out := make([]DayPreference, 0, len(u.WeeklyPreferences))
	for _, day := range Weekdays {
		pref, ok := u.WeeklyPreferences[day]
		if !ok {
			continue
		}
		t, err := ParseCarbType(pref)
		if err != nil {
			continue
		}
		out = append(out, DayPreference{DayLabel: day, CarbType: t})
	}
	return out
}

type DayPreference struct {
	DayLabel string
	CarbType CarbType
}
