package plan

// Templates holds the canonical day content per carb type. A nil slot means
// the category never appeared in the generated schedule.
type Templates struct {
	High   *DailyPlan `json:"high,omitempty"`
	Medium *DailyPlan `json:"medium,omitempty"`
	Low    *DailyPlan `json:"low,omitempty"`
}

func (t *Templates) slot(ct CarbType) **DailyPlan {
	switch ct {
	case CarbHigh:
		return &t.High
	case CarbMedium:
		return &t.Medium
	case CarbLow:
		return &t.Low
	default:
		return nil
	}
}

// Get returns a copy of the template for ct.
func (t Templates) Get(ct CarbType) (DailyPlan, bool) {
	p := t.slot(ct)
	if p == nil || *p == nil {
		return DailyPlan{}, false
	}
	return (*p).clone(), true
}

func (t *Templates) set(ct CarbType, day DailyPlan) {
	if p := t.slot(ct); p != nil {
		d := day.clone()
		*p = &d
	}
}

// Available lists the carb types that have a template, in display order.
func (t Templates) Available() []CarbType {
	out := make([]CarbType, 0, len(AllCarbTypes))
	for _, ct := range AllCarbTypes {
		if _, ok := t.Get(ct); ok {
			out = append(out, ct)
		}
	}
	return out
}

func (t Templates) Empty() bool {
	return t.High == nil && t.Medium == nil && t.Low == nil
}

func (t Templates) Clone() Templates {
	var out Templates
	for _, ct := range AllCarbTypes {
		if d, ok := t.Get(ct); ok {
			out.set(ct, d)
		}
	}
	return out
}

// Counts is a day tally per carb type.
type Counts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

func (c Counts) Get(ct CarbType) int {
	switch ct {
	case CarbHigh:
		return c.High
	case CarbMedium:
		return c.Medium
	case CarbLow:
		return c.Low
	default:
		return 0
	}
}

func (c *Counts) add(ct CarbType) {
	switch ct {
	case CarbHigh:
		c.High++
	case CarbMedium:
		c.Medium++
	case CarbLow:
		c.Low++
	}
}

func (c Counts) Total() int {
	return c.High + c.Medium + c.Low
}

// Tally counts the days of each carb type in the schedule.
func Tally(s WeeklySchedule) Counts {
	var c Counts
	for _, day := range s {
		c.add(day.CarbType)
	}
	return c
}

// ExtractTemplates records the first day seen for each carb type and counts
// every day, giving the recommended distribution of a freshly generated plan.
func ExtractTemplates(p FullPlan) (Templates, Counts) {
	var (
		templates Templates
		counts    Counts
	)
	for _, day := range p.WeeklySchedule {
		if _, ok := templates.Get(day.CarbType); !ok {
			templates.set(day.CarbType, day)
		}
		counts.add(day.CarbType)
	}
	return templates, counts
}
