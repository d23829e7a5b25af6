package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/fdg312/carb-coach/internal/plan"
	"github.com/fdg312/carb-coach/internal/profiles"
	"github.com/guptarohit/asciigraph"
	"github.com/jung-kurt/gofpdf"
)

const (
	recentLogsLimit = 14
	unicodeFontName = "ReportSans"
	coreFontName    = "Arial"
)

type Logger interface {
	Printf(format string, v ...any)
}

// Generator renders PDF/CSV/TXT reports for a profile
type Generator struct {
	fontPath string
	log      Logger
}

// NewGenerator creates a report generator. fontPath is an optional UTF-8 TTF;
// without it the PDF uses a core font and English labels only.
func NewGenerator(fontPath string, logger Logger) *Generator {
	return &Generator{fontPath: strings.TrimSpace(fontPath), log: logger}
}

// Generate renders the profile in the given format
func (g *Generator) Generate(p profiles.Profile, format string) ([]byte, error) {
	switch format {
	case FormatPDF:
		return g.generatePDF(p)
	case FormatCSV:
		return g.generateCSV(p.Logs)
	case FormatTXT:
		return g.generateTXT(p)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, format)
	}
}

// generateCSV writes one row per log in insertion order
func (g *Generator) generateCSV(logs []profiles.DailyLog) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"date", "weight_kg", "body_fat_pct", "waist_cm", "hips_cm", "energy_level", "completed_plan"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, l := range logs {
		row := []string{
			l.Date,
			formatFloat(l.Weight),
			optionalFloat(l.BodyFat),
			optionalFloat(l.Waist),
			optionalFloat(l.Hips),
			strconv.Itoa(l.EnergyLevel),
			strconv.FormatBool(l.CompletedPlan),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) generateTXT(p profiles.Profile) ([]byte, error) {
	var b strings.Builder
	s := Summarize(p.Logs)

	fmt.Fprintf(&b, "%s\n", p.Name)
	fmt.Fprintf(&b, "%s %d岁 %.0fcm %.1fkg 体脂 %.1f%% -> %.1f%% / %d 周\n\n",
		plan.GenderLabel(p.UserStats.Gender), p.UserStats.Age, p.UserStats.HeightCm,
		p.UserStats.WeightKg, p.UserStats.BodyFatPct, p.UserStats.TargetBodyFatPct, p.UserStats.TargetWeeks)

	for _, day := range p.Plan.WeeklySchedule {
		fmt.Fprintf(&b, "%s  %s  P%.0f C%.0f F%.0f  %.0f kcal  %s\n",
			day.DayLabel, plan.Label(day.CarbType),
			day.Macros.Protein, day.Macros.Carbs, day.Macros.Fat, day.Macros.Calories, day.TrainingFocus)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Logs: %d\n", s.LogCount)
	fmt.Fprintf(&b, "Weight change: %s\n", formatDelta(s.WeightDelta, "kg"))
	fmt.Fprintf(&b, "Average energy: %s\n", optionalFloat(s.AvgEnergy))
	fmt.Fprintf(&b, "Plan completion: %s\n\n", formatPercent(s.CompletionRate))

	weights := make([]float64, 0, len(p.Logs))
	for _, l := range p.Logs {
		weights = append(weights, l.Weight)
	}
	if len(weights) >= 2 {
		b.WriteString(asciigraph.Plot(weights,
			asciigraph.Height(8),
			asciigraph.Width(50),
			asciigraph.Precision(1),
			asciigraph.Caption("Weight (kg)"),
		))
		b.WriteString("\n")
	} else {
		b.WriteString("Not enough logs for a weight trend.\n")
	}

	return []byte(b.String()), nil
}

func (g *Generator) generatePDF(p profiles.Profile) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")

	fontName := coreFontName
	if g.fontPath != "" {
		if _, err := os.Stat(g.fontPath); err != nil {
			g.logf("WARN reports: font_unavailable path=%s err=%q", g.fontPath, err.Error())
		} else {
			pdf.AddUTF8Font(unicodeFontName, "", g.fontPath)
			fontName = unicodeFontName
		}
	}
	text := func(s string) string {
		if fontName == unicodeFontName {
			return s
		}
		return asciiOnly(s)
	}

	pdf.AddPage()

	pdf.SetFont(fontName, "", 16)
	pdf.Cell(0, 10, "Carb Cycling Report")
	pdf.Ln(10)

	pdf.SetFont(fontName, "", 11)
	pdf.Cell(0, 7, text(fmt.Sprintf("Profile: %s", p.Name)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Created: %s", p.CreatedAt.Format("2006-01-02")))
	pdf.Ln(6)
	st := p.UserStats
	pdf.Cell(0, 7, fmt.Sprintf("%s, %d y, %.0f cm, %.1f kg, body fat %.1f%% -> %.1f%% in %d weeks",
		st.Gender, st.Age, st.HeightCm, st.WeightKg, st.BodyFatPct, st.TargetBodyFatPct, st.TargetWeeks))
	pdf.Ln(12)

	pdf.SetFont(fontName, "", 14)
	pdf.Cell(0, 8, "Weekly plan")
	pdf.Ln(8)
	g.drawPlanTable(pdf, fontName, p.Plan.WeeklySchedule)
	pdf.Ln(8)

	s := Summarize(p.Logs)
	pdf.SetFont(fontName, "", 14)
	pdf.Cell(0, 8, "Progress")
	pdf.Ln(8)
	pdf.SetFont(fontName, "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Logs: %d", s.LogCount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Weight change: %s", formatDelta(s.WeightDelta, "kg")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Average energy: %s", optionalFloat(s.AvgEnergy)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Plan completion: %s", formatPercent(s.CompletionRate)))
	pdf.Ln(10)

	if len(p.Logs) > 0 {
		pdf.SetFont(fontName, "", 14)
		pdf.Cell(0, 8, "Recent logs")
		pdf.Ln(8)
		g.drawLogsTable(pdf, fontName, p.Logs)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) drawPlanTable(pdf *gofpdf.Fpdf, fontName string, schedule plan.WeeklySchedule) {
	widths := []float64{18, 30, 25, 25, 25, 30}
	header := []string{"Day", "Type", "Protein g", "Carbs g", "Fat g", "Calories"}

	pdf.SetFont(fontName, "", 9)
	for i, h := range header {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	for _, day := range schedule {
		row := []string{
			plan.WeekdayEN(day.DayLabel),
			plan.LabelEN(day.CarbType),
			fmt.Sprintf("%.0f", day.Macros.Protein),
			fmt.Sprintf("%.0f", day.Macros.Carbs),
			fmt.Sprintf("%.0f", day.Macros.Fat),
			fmt.Sprintf("%.0f", day.Macros.Calories),
		}
		for i, v := range row {
			pdf.CellFormat(widths[i], 6, v, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// drawLogsTable draws the most recent logs
func (g *Generator) drawLogsTable(pdf *gofpdf.Fpdf, fontName string, logs []profiles.DailyLog) {
	if len(logs) > recentLogsLimit {
		logs = logs[len(logs)-recentLogsLimit:]
	}

	widths := []float64{28, 24, 24, 24, 24, 20, 18}
	header := []string{"Date", "Weight", "Body fat", "Waist", "Hips", "Energy", "Done"}

	pdf.SetFont(fontName, "", 8)
	for i, h := range header {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	for _, l := range logs {
		done := "no"
		if l.CompletedPlan {
			done = "yes"
		}
		row := []string{
			l.Date,
			formatFloat(l.Weight),
			dashIfEmpty(optionalFloat(l.BodyFat)),
			dashIfEmpty(optionalFloat(l.Waist)),
			dashIfEmpty(optionalFloat(l.Hips)),
			strconv.Itoa(l.EnergyLevel),
			done,
		}
		for i, v := range row {
			pdf.CellFormat(widths[i], 6, v, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// Summarize calculates progress statistics in log order
func Summarize(logs []profiles.DailyLog) Summary {
	s := Summary{LogCount: len(logs)}
	if len(logs) == 0 {
		return s
	}

	first, last := logs[0].Weight, logs[len(logs)-1].Weight
	delta := last - first
	s.FirstWeight, s.LastWeight, s.WeightDelta = &first, &last, &delta

	var energy int
	for _, l := range logs {
		energy += l.EnergyLevel
		if l.CompletedPlan {
			s.CompletedDays++
		}
	}
	avg := float64(energy) / float64(len(logs))
	rate := float64(s.CompletedDays) / float64(len(logs))
	s.AvgEnergy, s.CompletionRate = &avg, &rate
	return s
}

func (g *Generator) logf(format string, v ...any) {
	if g.log != nil {
		g.log.Printf(format, v...)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func optionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatDelta(v *float64, unit string) string {
	if v == nil {
		return "no data"
	}
	return fmt.Sprintf("%+.1f %s", *v, unit)
}

func formatPercent(v *float64) string {
	if v == nil {
		return "no data"
	}
	return fmt.Sprintf("%.0f%%", *v*100)
}

func dashIfEmpty(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

// asciiOnly replaces glyphs the core PDF fonts cannot draw.
func asciiOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return '?'
		}
		return r
	}, s)
}
