package ai

import (
	"strings"

	"github.com/fdg312/carb-coach/internal/config"
)

func NewProvider(cfg *config.Config) Provider {
	mode := strings.ToLower(strings.TrimSpace(cfg.AIMode))
	if mode == "" {
		mode = config.AIModeMock
	}

	switch mode {
	case config.AIModeOpenAI:
		return NewOpenAIProvider(cfg)
	case config.AIModeGemini:
		return NewGeminiProvider(cfg)
	default:
		return NewMockProvider()
	}
}
