package ai

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/fdg312/carb-coach/internal/plan"
)

// MockProvider returns a deterministic plan and canned replies (AI_MODE=mock).
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Default week, Monday first: heavy days early in the week, rest on Sunday.
var mockWeek = [plan.DaysPerWeek]struct {
	carb  plan.CarbType
	focus string
}{
	{plan.CarbHigh, "腿部力量训练"},
	{plan.CarbMedium, "胸肩推类训练"},
	{plan.CarbLow, "低强度有氧"},
	{plan.CarbHigh, "背部力量训练"},
	{plan.CarbMedium, "手臂与核心"},
	{plan.CarbLow, "HIIT 间歇训练"},
	{plan.CarbLow, "休息与拉伸"},
}

var mockMeals = map[plan.CarbType][]string{
	plan.CarbHigh:   {"燕麦粥配香蕉和鸡蛋", "米饭、清蒸鱼和西兰花", "红薯、鸡胸肉和青菜", "酸奶配全麦面包"},
	plan.CarbMedium: {"全麦面包、鸡蛋和牛奶", "糙米饭、牛肉和时蔬", "荞麦面配虾仁"},
	plan.CarbLow:    {"鸡蛋蔬菜卷", "牛排配大份沙拉", "清炒豆腐和菠菜", "一把坚果"},
}

// Per kg body weight: carbs and fat by category; protein is fixed.
var mockRatios = map[plan.CarbType]struct{ carbs, fat float64 }{
	plan.CarbHigh:   {4.0, 0.6},
	plan.CarbMedium: {2.5, 0.8},
	plan.CarbLow:    {1.0, 1.1},
}

const mockProteinPerKg = 2.0

func (p *MockProvider) GeneratePlan(ctx context.Context, stats plan.UserStats) (plan.FullPlan, error) {
	if err := ctx.Err(); err != nil {
		return plan.FullPlan{}, err
	}

	forced := make(map[string]plan.CarbType)
	for _, d := range stats.ForcedDays() {
		forced[d.DayLabel] = d.CarbType
	}

	weight := stats.WeightKg
	if weight <= 0 {
		weight = 70
	}

	schedule := make(plan.WeeklySchedule, plan.DaysPerWeek)
	for i, label := range plan.Weekdays {
		ct := mockWeek[i].carb
		if f, ok := forced[label]; ok {
			ct = f
		}
		ratio := mockRatios[ct]
		protein := math.Round(weight * mockProteinPerKg)
		carbs := math.Round(weight * ratio.carbs)
		fat := math.Round(weight * ratio.fat)

		schedule[i] = plan.DailyPlan{
			DayLabel:      label,
			CarbType:      ct,
			TrainingFocus: mockWeek[i].focus,
			Macros: plan.Macros{
				Protein:  protein,
				Carbs:    carbs,
				Fat:      fat,
				Calories: protein*4 + carbs*4 + fat*9,
			},
			Meals: append([]string(nil), mockMeals[ct]...),
			Tips:  fmt.Sprintf("%s：按计划进食，训练前后补充水分。", plan.Label(ct)),
		}
	}

	return plan.FullPlan{
		WeeklySchedule: schedule,
		Summary: fmt.Sprintf("演示计划：每周 %d 个训练日，目标在 %d 周内将体脂从 %g%% 降至 %g%%。",
			stats.TrainingDaysPerWeek, stats.TargetWeeks, stats.BodyFatPct, stats.TargetBodyFatPct),
		Advice: "这是演示模式生成的计划，仅供参考，不构成医疗建议。",
	}, nil
}

func (p *MockProvider) Reply(ctx context.Context, req ReplyRequest) (ReplyResponse, error) {
	_ = ctx

	lastUserMessage := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			lastUserMessage = strings.TrimSpace(req.Messages[i].Content)
			break
		}
	}

	text := fmt.Sprintf("（演示模式）收到你的问题：「%s」。", lastUserMessage)
	if req.PlanContext != "" {
		text += "我已经看过你当前的计划，建议按高碳日训练、低碳日恢复的节奏坚持执行。"
	} else {
		text += "先生成一个计划，我就能给出更具体的建议。"
	}
	return ReplyResponse{AssistantText: text}, nil
}
