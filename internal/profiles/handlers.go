package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/fdg312/carb-coach/internal/plan"
)

// Handler содержит HTTP обработчики для профилей
type Handler struct {
	store *Store
}

// NewHandler создаёт новый handler
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// HandleList обрабатывает GET /v1/profiles
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	activeID := h.store.ActiveID()
	profiles := h.store.List()

	resp := ProfilesResponse{Profiles: make([]ProfileSummaryDTO, 0, len(profiles))}
	for _, p := range profiles {
		resp.Profiles = append(resp.Profiles, ProfileSummaryDTO{
			ID:               p.ID,
			Name:             p.Name,
			CreatedAt:        p.CreatedAt,
			IsActive:         p.ID == activeID,
			TargetBodyFatPct: p.UserStats.TargetBodyFatPct,
			TargetWeeks:      p.UserStats.TargetWeeks,
			LogCount:         len(p.Logs),
		})
	}
	if activeID != "" {
		resp.ActiveProfileID = &activeID
	}

	h.sendJSON(w, http.StatusOK, resp)
}

// HandleCreate обрабатывает POST /v1/profiles
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	// A client that goes away does not abort the generation; the profile is
	// still stored when the plan arrives.
	ctx := context.WithoutCancel(r.Context())

	profile, err := h.store.Create(ctx, req.Name, req.Stats)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sendJSON(w, http.StatusCreated, profile)
}

// HandleGetActive обрабатывает GET /v1/profiles/active
func (h *Handler) HandleGetActive(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.store.Active()
	if !ok {
		h.sendError(w, http.StatusNotFound, "no_active_profile", "No active profile")
		return
	}
	h.sendJSON(w, http.StatusOK, profile)
}

// HandleClearActive обрабатывает DELETE /v1/profiles/active
func (h *Handler) HandleClearActive(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearActive(r.Context()); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGet обрабатывает GET /v1/profiles/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.store.Get(r.PathValue("id"))
	if !ok {
		h.sendError(w, http.StatusNotFound, "not_found", "Profile not found")
		return
	}
	h.sendJSON(w, http.StatusOK, profile)
}

// HandleUpdate обрабатывает PATCH /v1/profiles/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	profile, err := h.store.Rename(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, profile)
}

// HandleDelete обрабатывает DELETE /v1/profiles/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.store.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	if !deleted {
		h.sendError(w, http.StatusNotFound, "not_found", "Profile not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleActivate обрабатывает POST /v1/profiles/{id}/activate
func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.SwitchActive(r.Context(), id); err != nil {
		h.handleError(w, err)
		return
	}

	profile, _ := h.store.Get(id)
	h.sendJSON(w, http.StatusOK, profile)
}

// HandleGetPlan обрабатывает GET /v1/profiles/{id}/plan
func (h *Handler) HandleGetPlan(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.store.Get(r.PathValue("id"))
	if !ok {
		h.sendError(w, http.StatusNotFound, "not_found", "Profile not found")
		return
	}

	templates := plan.EffectiveTemplates(profile.Templates, profile.Plan.WeeklySchedule)
	h.sendJSON(w, http.StatusOK, PlanResponse{
		Plan:           profile.Plan,
		AvailableTypes: templates.Available(),
		Validation:     plan.Validate(profile.Plan.WeeklySchedule, profile.RecommendedCounts),
		IsActive:       profile.ID == h.store.ActiveID(),
	})
}

// HandleUpdateSchedule обрабатывает PUT /v1/profiles/{id}/plan/schedule
func (h *Handler) HandleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req UpdateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	id := r.PathValue("id")
	applied, err := h.store.UpdateSchedule(r.Context(), id, req.WeeklySchedule)
	if err != nil {
		h.handleError(w, err)
		return
	}
	if !applied {
		h.notAppliedError(w, id)
		return
	}

	h.writePlan(w, id)
}

// HandleChangeDay обрабатывает PUT /v1/profiles/{id}/plan/days/{index}
func (h *Handler) HandleChangeDay(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 || index >= plan.DaysPerWeek {
		h.sendError(w, http.StatusBadRequest, "invalid_index", "Day index must be 0-6")
		return
	}

	var req ChangeDayTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.CarbType.Valid() {
		h.sendError(w, http.StatusBadRequest, "invalid_carb_type", "carb_type must be high, medium or low")
		return
	}

	id := r.PathValue("id")
	applied, err := h.store.ChangeDayType(r.Context(), id, index, req.CarbType)
	if err != nil {
		h.handleError(w, err)
		return
	}
	if !applied {
		if _, ok := h.store.Get(id); ok && h.store.ActiveID() == id {
			h.sendError(w, http.StatusConflict, "template_missing", "No template for "+req.CarbType.Code())
			return
		}
		h.notAppliedError(w, id)
		return
	}

	h.writePlan(w, id)
}

// HandleListLogs обрабатывает GET /v1/profiles/{id}/logs
func (h *Handler) HandleListLogs(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.store.Get(r.PathValue("id"))
	if !ok {
		h.sendError(w, http.StatusNotFound, "not_found", "Profile not found")
		return
	}
	h.sendJSON(w, http.StatusOK, LogsResponse{Logs: profile.Logs})
}

// HandleAppendLog обрабатывает POST /v1/profiles/{id}/logs
func (h *Handler) HandleAppendLog(w http.ResponseWriter, r *http.Request) {
	var entry DailyLog
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	id := r.PathValue("id")
	applied, err := h.store.AppendLog(r.Context(), id, entry)
	if err != nil {
		h.handleError(w, err)
		return
	}
	if !applied {
		h.sendError(w, http.StatusNotFound, "not_found", "Profile not found")
		return
	}

	profile, _ := h.store.Get(id)
	h.sendJSON(w, http.StatusCreated, LogsResponse{Logs: profile.Logs})
}

func (h *Handler) writePlan(w http.ResponseWriter, id string) {
	profile, _ := h.store.Get(id)
	h.sendJSON(w, http.StatusOK, PlanResponse{
		Plan:           profile.Plan,
		AvailableTypes: plan.EffectiveTemplates(profile.Templates, profile.Plan.WeeklySchedule).Available(),
		Validation:     plan.Validate(profile.Plan.WeeklySchedule, profile.RecommendedCounts),
		IsActive:       true,
	})
}

func (h *Handler) notAppliedError(w http.ResponseWriter, id string) {
	if _, ok := h.store.Get(id); !ok {
		h.sendError(w, http.StatusNotFound, "not_found", "Profile not found")
		return
	}
	h.sendError(w, http.StatusConflict, "profile_not_active", "Only the active profile can be edited")
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		h.sendError(w, http.StatusNotFound, "not_found", "Profile not found")
	case errors.Is(err, ErrEmptyName):
		h.sendError(w, http.StatusBadRequest, "empty_name", "Name cannot be empty")
	case errors.Is(err, ErrInvalidSchedule):
		h.sendError(w, http.StatusBadRequest, "invalid_schedule", err.Error())
	case errors.Is(err, plan.ErrInvalidStats), errors.Is(err, plan.ErrUnknownDayLabel):
		h.sendError(w, http.StatusBadRequest, "invalid_stats", err.Error())
	case errors.Is(err, ErrInvalidLog):
		h.sendError(w, http.StatusBadRequest, "invalid_log", err.Error())
	case errors.Is(err, ErrGenerationInProgress):
		h.sendError(w, http.StatusConflict, "generation_in_progress", "A plan is already being generated")
	case errors.Is(err, ErrGenerationFailed):
		h.sendError(w, http.StatusBadGateway, "generation_failed", "生成计划失败，请检查API Key配置或网络连接。")
	case errors.Is(err, ErrPersistFailed):
		h.sendError(w, http.StatusInternalServerError, "persist_failed", "Failed to save profiles")
	default:
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// sendJSON отправляет JSON ответ
func (h *Handler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// sendError отправляет ошибку в формате ErrorResponse
func (h *Handler) sendError(w http.ResponseWriter, status int, code, message string) {
	h.sendJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: strings.TrimSpace(message),
		},
	})
}
