package plan

// ChangeDayType returns a copy of the schedule where the day at index takes
// the content of the ct template. The day keeps its label. ok is false, and
// the input is returned untouched, when the index is out of range or there is
// no template for ct.
func ChangeDayType(s WeeklySchedule, index int, ct CarbType, templates Templates) (WeeklySchedule, bool) {
	if index < 0 || index >= len(s) {
		return s, false
	}
	tmpl, ok := templates.Get(ct)
	if !ok {
		return s, false
	}

	out := s.Clone()
	tmpl.DayLabel = s[index].DayLabel
	tmpl.CarbType = ct
	out[index] = tmpl
	return out, true
}

// EffectiveTemplates returns the stored templates, or for profiles saved
// before templates were recorded, the first occurrence of each type in the
// current schedule.
func EffectiveTemplates(stored *Templates, current WeeklySchedule) Templates {
	if stored != nil && !stored.Empty() {
		return stored.Clone()
	}
	t, _ := ExtractTemplates(FullPlan{WeeklySchedule: current})
	return t
}
