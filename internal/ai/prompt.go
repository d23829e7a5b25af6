package ai

import (
	"fmt"
	"strings"

	"github.com/fdg312/carb-coach/internal/plan"
)

const planSystemPrompt = "你是一名世界级的运动营养专家，擅长为减脂人群设计碳循环（Carb Cycling）饮食与训练计划。只返回 JSON。"

func buildPlanPrompt(stats plan.UserStats) string {
	var b strings.Builder

	b.WriteString("请根据以下用户数据设计一个科学的碳循环计划。\n\n用户数据：\n")
	fmt.Fprintf(&b, "- 年龄: %d\n", stats.Age)
	fmt.Fprintf(&b, "- 性别: %s\n", plan.GenderLabel(stats.Gender))
	fmt.Fprintf(&b, "- 身高: %gcm\n", stats.HeightCm)
	fmt.Fprintf(&b, "- 体重: %gkg\n", stats.WeightKg)
	fmt.Fprintf(&b, "- 体脂率: %g%%\n", stats.BodyFatPct)
	fmt.Fprintf(&b, "- 目标体脂率: %g%%\n", stats.TargetBodyFatPct)
	fmt.Fprintf(&b, "- 达成周期: %d周\n", stats.TargetWeeks)
	fmt.Fprintf(&b, "- 活跃度: %s\n", plan.ActivityLabel(stats.ActivityLevel))
	fmt.Fprintf(&b, "- 每周训练天数: %d天\n\n", stats.TrainingDaysPerWeek)

	b.WriteString("日程偏好设置：\n")
	forced := stats.ForcedDays()
	if len(forced) == 0 {
		b.WriteString("用户未指定特定日程，请根据训练科学自动安排。\n\n")
	} else {
		b.WriteString("用户强制制定了以下日程安排，你必须严格遵守，不可更改：\n")
		for _, d := range forced {
			fmt.Fprintf(&b, "- %s: 强制设为 %s (%s)\n", d.DayLabel, plan.Label(d.CarbType), d.CarbType.Code())
		}
		b.WriteString("其余日子请根据你的专业判断安排。\n\n")
	}

	b.WriteString(`核心逻辑要求：
1. 高碳日 (high) 安排在最高强度的训练日（如腿部、背部大肌群力量训练）。
2. 低碳日 (low) 安排在休息日或低强度有氧日。
3. 中碳日 (medium) 安排在中等强度训练日。
4. 蛋白质摄入充足（每公斤体重 1.6g-2.2g）。
5. 制造合理的热量缺口以达到减脂目标。

格式与语言要求：
1. 所有文本内容使用简体中文（数字和计量单位除外），食谱符合中国人的饮食习惯。
2. JSON 键名保持英文：weeklySchedule, dayName, carbType, trainingFocus, macros(protein, carbs, fat, calories), meals, tips, summary, advice。
3. weeklySchedule 必须恰好 7 项，dayName 依次为 "星期一" 到 "星期日"，每天一次。
4. carbType 只能是 "high"、"medium" 或 "low"。
5. meals 为 3-4 个简单的食谱建议。
`)
	return b.String()
}

// chatSystemPrompt is the coach persona; the plan JSON is appended when known.
func chatSystemPrompt(planContext string) string {
	prompt := `You are "Coach Carbon", an encouraging, professional and scientific fitness coach.
Answer questions specifically about carb cycling, nutrition and training adjustments.
Keep answers concise (under 150 words) unless a complex explanation is needed. Be motivating!
Always reply in Chinese (Simplified).`

	if strings.TrimSpace(planContext) != "" {
		prompt += "\n\nHERE IS THE USER'S CURRENT PLAN CONTEXT. USE THIS TO GIVE SPECIFIC ADVICE:\n" + planContext
	}
	return prompt
}
