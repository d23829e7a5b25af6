package plan

// Display strings. Kept apart from the category logic so the UI language can
// change without touching the tags persisted in profiles.

const LabelAuto = "自动"

var carbLabels = map[CarbType]string{
	CarbHigh:   "高碳日",
	CarbMedium: "中碳日",
	CarbLow:    "低碳日",
}

var carbLabelsEN = map[CarbType]string{
	CarbHigh:   "High carb",
	CarbMedium: "Medium carb",
	CarbLow:    "Low carb",
}

var weekdaysEN = [DaysPerWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var activityLabels = map[string]string{
	ActivitySedentary: "久坐 (无运动)",
	ActivityLight:     "轻度活跃 (每周1-3次)",
	ActivityModerate:  "中度活跃 (每周3-5次)",
	ActivityHigh:      "高度活跃 (每周6-7次)",
	ActivityAthlete:   "专业/高强度 (每日双练)",
}

// Label is the Chinese display name of a carb type.
func Label(t CarbType) string {
	return carbLabels[t]
}

// LabelEN is the English display name, used where CJK glyphs are unavailable.
func LabelEN(t CarbType) string {
	return carbLabelsEN[t]
}

// WeekdayEN returns a short English weekday for a Chinese day label.
func WeekdayEN(label string) string {
	if i, ok := WeekdayIndex(label); ok {
		return weekdaysEN[i]
	}
	return label
}

func ActivityLabel(level string) string {
	if l, ok := activityLabels[level]; ok {
		return l
	}
	return level
}

func GenderLabel(g string) string {
	if g == GenderFemale {
		return "女"
	}
	return "男"
}
