package profiles

import (
	"errors"
	"fmt"
	"time"

	"github.com/fdg312/carb-coach/internal/plan"
)

// Profile bundles one generated plan with its owner's stats and progress logs.
type Profile struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UserStats plan.UserStats  `json:"user_stats"`
	Plan      plan.FullPlan   `json:"plan"`
	Templates *plan.Templates `json:"templates,omitempty"`
	// RecommendedCounts is nil for profiles saved before it was recorded.
	RecommendedCounts *plan.Counts `json:"recommended_counts,omitempty"`
	Logs              []DailyLog   `json:"logs"`
	CreatedAt         time.Time    `json:"created_at"`
}

func (p Profile) clone() Profile {
	out := p
	out.Plan = p.Plan.Clone()
	if p.Templates != nil {
		t := p.Templates.Clone()
		out.Templates = &t
	}
	if p.RecommendedCounts != nil {
		c := *p.RecommendedCounts
		out.RecommendedCounts = &c
	}
	if p.UserStats.WeeklyPreferences != nil {
		prefs := make(map[string]string, len(p.UserStats.WeeklyPreferences))
		for k, v := range p.UserStats.WeeklyPreferences {
			prefs[k] = v
		}
		out.UserStats.WeeklyPreferences = prefs
	}
	out.Logs = make([]DailyLog, len(p.Logs))
	for i, l := range p.Logs {
		out.Logs[i] = l.clone()
	}
	return out
}

// DailyLog is one progress entry. Logs keep insertion order.
type DailyLog struct {
	Date          string   `json:"date"` // YYYY-MM-DD
	Weight        float64  `json:"weight"`
	BodyFat       *float64 `json:"body_fat,omitempty"`
	Waist         *float64 `json:"waist,omitempty"`
	Hips          *float64 `json:"hips,omitempty"`
	EnergyLevel   int      `json:"energy_level"` // 1-10
	CompletedPlan bool     `json:"completed_plan"`
}

var ErrInvalidLog = errors.New("invalid daily log")

func (l DailyLog) Validate() error {
	if l.Date != "" {
		if _, err := time.Parse(dateLayout, l.Date); err != nil {
			return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidLog)
		}
	}
	if l.Weight <= 0 {
		return fmt.Errorf("%w: weight must be positive", ErrInvalidLog)
	}
	if l.EnergyLevel < 1 || l.EnergyLevel > 10 {
		return fmt.Errorf("%w: energy level must be 1-10", ErrInvalidLog)
	}
	for _, v := range []*float64{l.BodyFat, l.Waist, l.Hips} {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%w: measurements must be positive", ErrInvalidLog)
		}
	}
	return nil
}

func (l DailyLog) clone() DailyLog {
	out := l
	out.BodyFat = copyFloat(l.BodyFat)
	out.Waist = copyFloat(l.Waist)
	out.Hips = copyFloat(l.Hips)
	return out
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

const dateLayout = "2006-01-02"

// ProfileSummaryDTO: элемент списка GET /v1/profiles
type ProfileSummaryDTO struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	CreatedAt        time.Time `json:"created_at"`
	IsActive         bool      `json:"is_active"`
	TargetBodyFatPct float64   `json:"target_body_fat_pct"`
	TargetWeeks      int       `json:"target_weeks"`
	LogCount         int       `json:"log_count"`
}

// ProfilesResponse: ответ для GET /v1/profiles
type ProfilesResponse struct {
	Profiles        []ProfileSummaryDTO `json:"profiles"`
	ActiveProfileID *string             `json:"active_profile_id"`
}

// CreateProfileRequest: запрос для POST /v1/profiles
type CreateProfileRequest struct {
	Name  string         `json:"name"`
	Stats plan.UserStats `json:"stats"`
}

// UpdateProfileRequest: запрос для PATCH /v1/profiles/{id}
type UpdateProfileRequest struct {
	Name string `json:"name"`
}

type UpdateScheduleRequest struct {
	WeeklySchedule plan.WeeklySchedule `json:"weekly_schedule"`
}

type ChangeDayTypeRequest struct {
	CarbType plan.CarbType `json:"carb_type"`
}

// PlanResponse: ответ для GET /v1/profiles/{id}/plan
type PlanResponse struct {
	Plan           plan.FullPlan   `json:"plan"`
	AvailableTypes []plan.CarbType `json:"available_types"`
	Validation     plan.Validation `json:"validation"`
	IsActive       bool            `json:"is_active"`
}

type LogsResponse struct {
	Logs []DailyLog `json:"logs"`
}

// ErrorResponse: формат ошибки
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
