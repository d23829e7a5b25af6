package reports

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fdg312/carb-coach/internal/plan"
	"github.com/fdg312/carb-coach/internal/profiles"
)

type mockProfileSource map[string]profiles.Profile

func (m mockProfileSource) Get(id string) (profiles.Profile, bool) {
	p, ok := m[id]
	return p, ok
}

func floatPtr(v float64) *float64 { return &v }

func testProfile(logs ...profiles.DailyLog) profiles.Profile {
	types := []plan.CarbType{plan.CarbHigh, plan.CarbMedium, plan.CarbLow, plan.CarbHigh, plan.CarbMedium, plan.CarbLow, plan.CarbLow}
	schedule := make(plan.WeeklySchedule, len(types))
	for i, ct := range types {
		schedule[i] = plan.DailyPlan{
			DayLabel:      plan.Weekdays[i],
			CarbType:      ct,
			TrainingFocus: "腿部训练",
			Macros:        plan.Macros{Protein: 160, Carbs: 80 * float64(4-ct), Fat: 60, Calories: 2100},
			Meals:         []string{"燕麦"},
		}
	}
	return profiles.Profile{
		ID:   "0b7c2f64-9d1e-4a57-8a2e-5f3c1d9e7a10",
		Name: "我的碳循环计划",
		UserStats: plan.UserStats{
			Age: 31, Gender: plan.GenderFemale, HeightCm: 165, WeightKg: 62, BodyFatPct: 27,
			ActivityLevel: plan.ActivityLight, TrainingDaysPerWeek: 3, TargetBodyFatPct: 22, TargetWeeks: 12,
		},
		Plan:      plan.FullPlan{WeeklySchedule: schedule, Summary: "s", Advice: "a"},
		Logs:      logs,
		CreatedAt: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
	}
}

var sampleLogs = []profiles.DailyLog{
	{Date: "2026-02-02", Weight: 80, EnergyLevel: 7, CompletedPlan: true, BodyFat: floatPtr(24.5)},
	{Date: "2026-02-03", Weight: 79.5, EnergyLevel: 8, CompletedPlan: true},
	{Date: "2026-02-04", Weight: 78.8, EnergyLevel: 6, Waist: floatPtr(81)},
}

func setupTestService(t *testing.T, fontPath string) (*Service, *bytes.Buffer, string) {
	t.Helper()
	p := testProfile(sampleLogs...)
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	svc := NewService(mockProfileSource{p.ID: p}, NewGenerator(fontPath, logger), logger)
	return svc, &buf, p.ID
}

func download(h *Handlers, id, format string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/profiles/{id}/report", h.HandleDownload)
	req := httptest.NewRequest(http.MethodGet, "/v1/profiles/"+id+"/report?format="+format, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleLogs)
	if s.LogCount != 3 || s.CompletedDays != 2 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if got := formatDelta(s.WeightDelta, "kg"); got != "-1.2 kg" {
		t.Errorf("expected -1.2 kg, got %s", got)
	}
	if got := optionalFloat(s.AvgEnergy); got != "7.0" {
		t.Errorf("expected average energy 7.0, got %s", got)
	}
	if got := formatPercent(s.CompletionRate); got != "67%" {
		t.Errorf("expected 67%%, got %s", got)
	}

	empty := Summarize(nil)
	if empty.WeightDelta != nil || empty.AvgEnergy != nil || formatPercent(empty.CompletionRate) != "no data" {
		t.Errorf("expected no data for empty logs, got %+v", empty)
	}
}

func TestHandleDownload_CSV(t *testing.T) {
	service, _, id := setupTestService(t, "")
	w := download(NewHandlers(service), id, FormatCSV)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected csv content type, got %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, ".csv") {
		t.Errorf("expected csv filename, got %s", cd)
	}

	rows, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "date" || rows[1][0] != "2026-02-02" || rows[3][0] != "2026-02-04" {
		t.Errorf("rows not in log order: %v", rows)
	}
	if rows[1][2] != "24.5" || rows[2][2] != "" || rows[3][3] != "81.0" {
		t.Errorf("unexpected optional measurements: %v", rows[1:])
	}
	if rows[1][6] != "true" {
		t.Errorf("expected completed_plan true, got %s", rows[1][6])
	}
}

func TestHandleDownload_PDF(t *testing.T) {
	service, _, id := setupTestService(t, "")
	w := download(NewHandlers(service), id, "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %s", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Error("expected PDF payload")
	}
}

func TestGeneratePDF_MissingFontFallsBack(t *testing.T) {
	service, logs, id := setupTestService(t, t.TempDir()+"/missing.ttf")

	report, err := service.Build(t.Context(), id, FormatPDF)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !bytes.HasPrefix(report.Data, []byte("%PDF")) {
		t.Error("expected PDF payload")
	}
	if !strings.Contains(logs.String(), "WARN reports: font_unavailable") {
		t.Errorf("expected font warning, got %q", logs.String())
	}
}

func TestGenerateTXT(t *testing.T) {
	gen := NewGenerator("", nil)

	data, err := gen.Generate(testProfile(sampleLogs...), FormatTXT)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	out := string(data)
	for _, want := range []string{"我的碳循环计划", "星期一  高碳日", "Weight change: -1.2 kg", "Weight (kg)"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in report:\n%s", want, out)
		}
	}

	data, _ = gen.Generate(testProfile(sampleLogs[0]), FormatTXT)
	if !strings.Contains(string(data), "Not enough logs for a weight trend.") {
		t.Errorf("expected no chart for a single log:\n%s", data)
	}
}

func TestHandleDownload_Errors(t *testing.T) {
	service, _, id := setupTestService(t, "")
	h := NewHandlers(service)

	tests := []struct {
		name   string
		id     string
		format string
		status int
		code   string
	}{
		{"invalid format", id, "docx", http.StatusBadRequest, "invalid_format"},
		{"profile not found", "nope", FormatCSV, http.StatusNotFound, "profile_not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := download(h, tt.id, tt.format)
			if w.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, w.Code)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Error.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, resp.Error.Code)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, _ := ParseFormat(" CSV "); f != FormatCSV {
		t.Errorf("expected csv, got %s", f)
	}
	if f, _ := ParseFormat(""); f != FormatPDF {
		t.Errorf("expected pdf default, got %s", f)
	}
	if _, err := ParseFormat("xlsx"); err == nil {
		t.Error("expected error for xlsx")
	}
}
