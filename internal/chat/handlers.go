package chat

import (
	"encoding/json"
	"net/http"
	"strings"
)

// PlanContextSource resolves the plan JSON for a profile id, or for the
// active profile when id is empty.
type PlanContextSource interface {
	PlanContext(profileID string) (string, bool)
}

type Handler struct {
	service *Service
	plans   PlanContextSource
}

func NewHandler(service *Service, plans PlanContextSource) *Handler {
	return &Handler{service: service, plans: plans}
}

func (h *Handler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}

	planContext, _ := h.planContext(req.ProfileID)
	reply := h.service.Send(r.Context(), message, req.History, planContext)

	writeJSON(w, http.StatusOK, SendMessageResponse{Reply: reply})
}

func (h *Handler) HandleGreeting(w http.ResponseWriter, r *http.Request) {
	_, hasPlan := h.planContext(strings.TrimSpace(r.URL.Query().Get("profile_id")))
	writeJSON(w, http.StatusOK, GreetingResponse{Greeting: Greeting(hasPlan)})
}

func (h *Handler) planContext(profileID string) (string, bool) {
	if h.plans == nil {
		return "", false
	}
	return h.plans.PlanContext(strings.TrimSpace(profileID))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
