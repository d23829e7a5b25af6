package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fdg312/carb-coach/internal/plan"
)

func newTestMux(store *Store) *http.ServeMux {
	h := NewHandler(store)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/profiles", h.HandleList)
	mux.HandleFunc("POST /v1/profiles", h.HandleCreate)
	mux.HandleFunc("GET /v1/profiles/active", h.HandleGetActive)
	mux.HandleFunc("DELETE /v1/profiles/active", h.HandleClearActive)
	mux.HandleFunc("GET /v1/profiles/{id}", h.HandleGet)
	mux.HandleFunc("PATCH /v1/profiles/{id}", h.HandleUpdate)
	mux.HandleFunc("DELETE /v1/profiles/{id}", h.HandleDelete)
	mux.HandleFunc("POST /v1/profiles/{id}/activate", h.HandleActivate)
	mux.HandleFunc("GET /v1/profiles/{id}/plan", h.HandleGetPlan)
	mux.HandleFunc("PUT /v1/profiles/{id}/plan/schedule", h.HandleUpdateSchedule)
	mux.HandleFunc("PUT /v1/profiles/{id}/plan/days/{index}", h.HandleChangeDay)
	mux.HandleFunc("GET /v1/profiles/{id}/logs", h.HandleListLogs)
	mux.HandleFunc("POST /v1/profiles/{id}/logs", h.HandleAppendLog)
	return mux
}

func do(t *testing.T, mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rr.Body.String(), err)
	}
	return resp.Error.Code
}

const createBody = `{
	"name": "Summer cut",
	"stats": {
		"age": 30, "gender": "male", "height_cm": 178, "weight_kg": 80, "body_fat_pct": 22,
		"activity_level": "moderate", "training_days_per_week": 4,
		"target_body_fat_pct": 15, "target_weeks": 10,
		"weekly_preferences": {"星期五": "high", "星期日": "auto"}
	}
}`

func TestHandleCreate(t *testing.T) {
	s, _ := newTestStore(t, newRecordingKV())
	mux := newTestMux(s)

	rr := do(t, mux, http.MethodPost, "/v1/profiles", createBody)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var p Profile
	if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ID != "p1" || p.Name != "Summer cut" || len(p.Plan.WeeklySchedule) != plan.DaysPerWeek {
		t.Fatalf("unexpected profile: %+v", p)
	}

	rr = do(t, mux, http.MethodGet, "/v1/profiles", "")
	var list ProfilesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Profiles) != 1 || !list.Profiles[0].IsActive || list.ActiveProfileID == nil || *list.ActiveProfileID != "p1" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestHandleCreateErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		gen    PlanGenerator
		status int
		code   string
	}{
		{"bad json", `{`, &stubGenerator{types: defaultWeek}, http.StatusBadRequest, "invalid_json"},
		{"bad stats", `{"stats":{"age":0}}`, &stubGenerator{types: defaultWeek}, http.StatusBadRequest, "invalid_stats"},
		{"gateway down", createBody, &stubGenerator{err: errors.New("timeout")}, http.StatusBadGateway, "generation_failed"},
		{"unknown day label", `{"stats":{"age":30,"gender":"female","height_cm":165,"weight_kg":60,"body_fat_pct":28,
			"activity_level":"light","training_days_per_week":3,"target_body_fat_pct":22,"target_weeks":8,
			"weekly_preferences":{"Funday":"high"}}}`, &stubGenerator{types: defaultWeek}, http.StatusBadRequest, "invalid_stats"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t, newRecordingKV())
			s.gen = tt.gen
			rr := do(t, newTestMux(s), http.MethodPost, "/v1/profiles", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			if code := errorCode(t, rr); code != tt.code {
				t.Fatalf("expected code %s, got %s", tt.code, code)
			}
		})
	}
}

func TestHandleGetPlanIncludesValidation(t *testing.T) {
	s, _ := newTestStore(t, newRecordingKV())
	mustCreate(t, s, "a")
	if _, err := s.ChangeDayType(context.Background(), "p1", 0, plan.CarbLow); err != nil {
		t.Fatalf("change: %v", err)
	}

	rr := do(t, newTestMux(s), http.MethodGet, "/v1/profiles/p1/plan", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp PlanResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.IsActive {
		t.Fatal("expected active plan")
	}
	if len(resp.AvailableTypes) != 3 {
		t.Fatalf("expected all three types available, got %v", resp.AvailableTypes)
	}
	want := "您的高碳日比科学推荐方案少了 1 天。"
	if len(resp.Validation.Warnings) != 1 || resp.Validation.Warnings[0] != want {
		t.Fatalf("expected %q, got %v", want, resp.Validation.Warnings)
	}
}

func TestHandleChangeDay(t *testing.T) {
	s, _ := newTestStore(t, newRecordingKV())
	mustCreate(t, s, "a")
	mustCreate(t, s, "b") // active
	mux := newTestMux(s)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"applies to active", "/v1/profiles/p2/plan/days/6", `{"carb_type":"high"}`, http.StatusOK, ""},
		{"accepts label", "/v1/profiles/p2/plan/days/5", `{"carb_type":"低碳日"}`, http.StatusOK, ""},
		{"index out of range", "/v1/profiles/p2/plan/days/7", `{"carb_type":"high"}`, http.StatusBadRequest, "invalid_index"},
		{"index not a number", "/v1/profiles/p2/plan/days/mon", `{"carb_type":"high"}`, http.StatusBadRequest, "invalid_index"},
		{"unknown type", "/v1/profiles/p2/plan/days/1", `{"carb_type":"extreme"}`, http.StatusBadRequest, "invalid_carb_type"},
		{"inactive profile", "/v1/profiles/p1/plan/days/1", `{"carb_type":"low"}`, http.StatusConflict, "profile_not_active"},
		{"unknown profile", "/v1/profiles/zzz/plan/days/1", `{"carb_type":"low"}`, http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, mux, http.MethodPut, tt.path, tt.body)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			if tt.code != "" {
				if code := errorCode(t, rr); code != tt.code {
					t.Fatalf("expected code %s, got %s", tt.code, code)
				}
			}
		})
	}

	p, _ := s.Get("p2")
	if p.Plan.WeeklySchedule[6].CarbType != plan.CarbHigh || p.Plan.WeeklySchedule[6].DayLabel != "星期日" {
		t.Fatalf("unexpected Sunday: %+v", p.Plan.WeeklySchedule[6])
	}
}

func TestHandleChangeDayTemplateMissing(t *testing.T) {
	s, _ := newTestStore(t, newRecordingKV())
	s.gen = &stubGenerator{types: []plan.CarbType{
		plan.CarbLow, plan.CarbMedium, plan.CarbLow, plan.CarbMedium, plan.CarbLow, plan.CarbLow, plan.CarbLow,
	}}
	mustCreate(t, s, "no high")

	rr := do(t, newTestMux(s), http.MethodPut, "/v1/profiles/p1/plan/days/0", `{"carb_type":"high"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	if code := errorCode(t, rr); code != "template_missing" {
		t.Fatalf("expected template_missing, got %s", code)
	}
}

func TestHandleUpdateSchedule(t *testing.T) {
	s, _ := newTestStore(t, newRecordingKV())
	mustCreate(t, s, "a")
	mux := newTestMux(s)

	body, _ := json.Marshal(UpdateScheduleRequest{WeeklySchedule: planOf(defaultWeek...).WeeklySchedule[:5]})
	rr := do(t, mux, http.MethodPut, "/v1/profiles/p1/plan/schedule", string(body))
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "invalid_schedule" {
		t.Fatalf("expected invalid_schedule, got %d: %s", rr.Code, rr.Body.String())
	}

	week := planOf(defaultWeek...).WeeklySchedule
	sundayFirst := append(plan.WeeklySchedule{week[6]}, week[:6]...)
	body, _ = json.Marshal(UpdateScheduleRequest{WeeklySchedule: sundayFirst})
	rr = do(t, mux, http.MethodPut, "/v1/profiles/p1/plan/schedule", string(body))
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "invalid_schedule" {
		t.Fatalf("expected invalid_schedule for Sunday-first week, got %d: %s", rr.Code, rr.Body.String())
	}

	lows := make([]plan.CarbType, plan.DaysPerWeek)
	for i := range lows {
		lows[i] = plan.CarbLow
	}
	body, _ = json.Marshal(UpdateScheduleRequest{WeeklySchedule: planOf(lows...).WeeklySchedule})
	rr = do(t, mux, http.MethodPut, "/v1/profiles/p1/plan/schedule", string(body))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp PlanResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Validation.Deficits) != 2 {
		t.Fatalf("expected high and medium deficits, got %+v", resp.Validation.Deficits)
	}
}

func TestHandleProfileLifecycle(t *testing.T) {
	s, _ := newTestStore(t, newRecordingKV())
	mustCreate(t, s, "a")
	mustCreate(t, s, "b")
	mux := newTestMux(s)

	if rr := do(t, mux, http.MethodPost, "/v1/profiles/p1/activate", ""); rr.Code != http.StatusOK {
		t.Fatalf("activate: %d", rr.Code)
	}
	if rr := do(t, mux, http.MethodPost, "/v1/profiles/nope/activate", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("activate unknown: %d", rr.Code)
	}

	rr := do(t, mux, http.MethodPatch, "/v1/profiles/p1", `{"name":"  "}`)
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "empty_name" {
		t.Fatalf("expected empty_name, got %d", rr.Code)
	}
	if rr := do(t, mux, http.MethodPatch, "/v1/profiles/p1", `{"name":"bulk"}`); rr.Code != http.StatusOK {
		t.Fatalf("rename: %d", rr.Code)
	}

	if rr := do(t, mux, http.MethodDelete, "/v1/profiles/p1", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rr.Code)
	}
	if rr := do(t, mux, http.MethodDelete, "/v1/profiles/p1", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("delete twice: %d", rr.Code)
	}

	rr = do(t, mux, http.MethodGet, "/v1/profiles/active", "")
	var active Profile
	_ = json.Unmarshal(rr.Body.Bytes(), &active)
	if rr.Code != http.StatusOK || active.ID != "p2" {
		t.Fatalf("expected p2 active after delete, got %d %q", rr.Code, active.ID)
	}

	if rr := do(t, mux, http.MethodDelete, "/v1/profiles/active", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("clear active: %d", rr.Code)
	}
	rr = do(t, mux, http.MethodGet, "/v1/profiles/active", "")
	if rr.Code != http.StatusNotFound || errorCode(t, rr) != "no_active_profile" {
		t.Fatalf("expected no_active_profile, got %d", rr.Code)
	}
}

func TestHandleLogs(t *testing.T) {
	s, _ := newTestStore(t, newRecordingKV())
	mustCreate(t, s, "a")
	mux := newTestMux(s)

	rr := do(t, mux, http.MethodPost, "/v1/profiles/p1/logs", `{"date":"2026-03-01","weight":80.5,"energy_level":7,"completed_plan":true}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	rr = do(t, mux, http.MethodPost, "/v1/profiles/p1/logs", `{"date":"01.03.2026","weight":80,"energy_level":7}`)
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "invalid_log" {
		t.Fatalf("expected invalid_log, got %d", rr.Code)
	}
	rr = do(t, mux, http.MethodPost, "/v1/profiles/zzz/logs", `{"weight":80,"energy_level":7}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	rr = do(t, mux, http.MethodGet, "/v1/profiles/p1/logs", "")
	var resp LogsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Logs) != 1 || resp.Logs[0].Weight != 80.5 || !resp.Logs[0].CompletedPlan {
		t.Fatalf("unexpected logs: %+v", resp.Logs)
	}
}
