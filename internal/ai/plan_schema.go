package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fdg312/carb-coach/internal/plan"
)

// wirePlan is the JSON shape requested from the models.
type wirePlan struct {
	WeeklySchedule []wireDay `json:"weeklySchedule"`
	Summary        string    `json:"summary"`
	Advice         string    `json:"advice"`
}

type wireDay struct {
	DayName       string `json:"dayName"`
	CarbType      string `json:"carbType"`
	TrainingFocus string `json:"trainingFocus"`
	Macros        struct {
		Protein  float64 `json:"protein"`
		Carbs    float64 `json:"carbs"`
		Fat      float64 `json:"fat"`
		Calories float64 `json:"calories"`
	} `json:"macros"`
	Meals []string `json:"meals"`
	Tips  string   `json:"tips"`
}

// decodePlan parses model output into a FullPlan. Days are reordered
// Monday first; anything that is not seven distinct weekdays with a known
// carb type is rejected with ErrInvalidPlan.
func decodePlan(text string) (plan.FullPlan, error) {
	text = stripCodeFence(text)
	if text == "" {
		return plan.FullPlan{}, ErrEmptyResponse
	}

	var raw wirePlan
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return plan.FullPlan{}, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	if len(raw.WeeklySchedule) != plan.DaysPerWeek {
		return plan.FullPlan{}, fmt.Errorf("%w: %d days", ErrInvalidPlan, len(raw.WeeklySchedule))
	}

	schedule := make(plan.WeeklySchedule, plan.DaysPerWeek)
	filled := make([]bool, plan.DaysPerWeek)
	for _, d := range raw.WeeklySchedule {
		idx, ok := plan.WeekdayIndex(d.DayName)
		if !ok {
			return plan.FullPlan{}, fmt.Errorf("%w: %v %q", ErrInvalidPlan, plan.ErrUnknownDayLabel, d.DayName)
		}
		if filled[idx] {
			return plan.FullPlan{}, fmt.Errorf("%w: %v %q", ErrInvalidPlan, plan.ErrDuplicateDay, d.DayName)
		}
		ct, err := plan.ParseCarbType(d.CarbType)
		if err != nil {
			return plan.FullPlan{}, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
		}
		meals := d.Meals
		if meals == nil {
			meals = []string{}
		}
		schedule[idx] = plan.DailyPlan{
			DayLabel:      plan.Weekdays[idx],
			CarbType:      ct,
			TrainingFocus: strings.TrimSpace(d.TrainingFocus),
			Macros: plan.Macros{
				Protein:  d.Macros.Protein,
				Carbs:    d.Macros.Carbs,
				Fat:      d.Macros.Fat,
				Calories: d.Macros.Calories,
			},
			Meals: meals,
			Tips:  strings.TrimSpace(d.Tips),
		}
		filled[idx] = true
	}

	if err := schedule.Validate(); err != nil {
		return plan.FullPlan{}, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}

	return plan.FullPlan{
		WeeklySchedule: schedule,
		Summary:        strings.TrimSpace(raw.Summary),
		Advice:         strings.TrimSpace(raw.Advice),
	}, nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// geminiPlanSchema mirrors wirePlan as a Gemini responseSchema.
func geminiPlanSchema() map[string]any {
	number := func(desc string) map[string]any {
		return map[string]any{"type": "NUMBER", "description": desc}
	}
	str := func(desc string) map[string]any {
		return map[string]any{"type": "STRING", "description": desc}
	}

	day := map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"dayName": str("星期几 (例如：星期一)"),
			"carbType": map[string]any{
				"type":        "STRING",
				"enum":        []string{"high", "medium", "low"},
				"description": "碳水循环类型",
			},
			"trainingFocus": str("训练重点 (中文描述)"),
			"macros": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"protein":  number("蛋白质 (克)"),
					"carbs":    number("碳水化合物 (克)"),
					"fat":      number("脂肪 (克)"),
					"calories": number("总热量 (千卡)"),
				},
				"required": []string{"protein", "carbs", "fat", "calories"},
			},
			"meals": map[string]any{
				"type":        "ARRAY",
				"items":       map[string]any{"type": "STRING"},
				"description": "3-4个简单的中文食谱建议",
			},
			"tips": str("当日的具体中文建议"),
		},
		"required": []string{"dayName", "carbType", "trainingFocus", "macros", "meals", "tips"},
	}

	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"weeklySchedule": map[string]any{"type": "ARRAY", "items": day},
			"summary":        str("策略总结 (中文)"),
			"advice":         str("总体建议 (中文)"),
		},
		"required": []string{"weeklySchedule", "summary", "advice"},
	}
}
