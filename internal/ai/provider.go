package ai

import (
	"context"
	"errors"

	"github.com/fdg312/carb-coach/internal/plan"
)

// Provider is the AI gateway: plan generation and coach chat.
type Provider interface {
	GeneratePlan(ctx context.Context, stats plan.UserStats) (plan.FullPlan, error)
	Reply(ctx context.Context, req ReplyRequest) (ReplyResponse, error)
}

const (
	RoleUser  = "user"
	RoleModel = "model"
)

var (
	ErrInvalidPlan   = errors.New("provider returned an invalid plan")
	ErrEmptyResponse = errors.New("provider returned an empty response")
)

type ChatMessage struct {
	Role    string `json:"role"` // user | model
	Content string `json:"content"`
}

type ReplyRequest struct {
	// Messages ends with the current user message.
	Messages []ChatMessage
	// PlanContext is the JSON of the user's plan, or empty.
	PlanContext string
}

type ReplyResponse struct {
	AssistantText string
}
