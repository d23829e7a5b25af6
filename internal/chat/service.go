package chat

import (
	"context"
	"strings"

	"github.com/fdg312/carb-coach/internal/ai"
)

const (
	FallbackConnectionFailed = "连接教练失败，请检查网络设置。"
	FallbackEmptyReply       = "抱歉，我现在有点走神，请再问一次。"

	greetingWithPlan    = "你好！我是你的专属碳循环助教。关于你的饮食计划或训练安排，有什么可以帮你的吗？"
	greetingWithoutPlan = "你好！我是智能碳循环助教。我可以帮你解答关于碳循环饮食和训练的疑问，或者协助你制定计划。"

	DefaultHistoryLimit = 10
)

type Logger interface {
	Printf(format string, v ...any)
}

// Service relays coach conversations to the AI provider. It never fails:
// provider errors become a fallback text shown as the coach's reply.
type Service struct {
	provider     ai.Provider
	historyLimit int
	logger       Logger
}

func NewService(provider ai.Provider, historyLimit int, logger Logger) *Service {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Service{
		provider:     provider,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// Send forwards the most recent history entries plus message and returns the
// coach reply.
func (s *Service) Send(ctx context.Context, message string, history []Message, planContext string) string {
	recent := history
	if len(recent) > s.historyLimit {
		recent = recent[len(recent)-s.historyLimit:]
	}

	messages := make([]ai.ChatMessage, 0, len(recent)+1)
	for _, m := range recent {
		messages = append(messages, ai.ChatMessage{Role: normalizeRole(m.Role), Content: m.Text})
	}
	messages = append(messages, ai.ChatMessage{Role: ai.RoleUser, Content: message})

	resp, err := s.provider.Reply(ctx, ai.ReplyRequest{
		Messages:    messages,
		PlanContext: planContext,
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("WARN chat: provider_failed=%q", err.Error())
		}
		return FallbackConnectionFailed
	}

	text := strings.TrimSpace(resp.AssistantText)
	if text == "" {
		return FallbackEmptyReply
	}
	return text
}

// Greeting is the first coach message of a session.
func Greeting(hasPlan bool) string {
	if hasPlan {
		return greetingWithPlan
	}
	return greetingWithoutPlan
}

func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case ai.RoleModel, "assistant":
		return ai.RoleModel
	default:
		return ai.RoleUser
	}
}
