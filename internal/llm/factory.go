package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/studyagent/internal/store"
)

// NewProvider creates a Provider from configuration.
// The base provider is wrapped as: caller → breaker → retry → logging → base.
// events may be nil, in which case requests are only logged.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logger.Debug("llm provider ready",
		zap.String("provider", cfg.Provider),
		zap.String("model", base.ModelID()))

	var p Provider = WithLogging(base, cfg.Provider, events, logger)
	if cfg.Retry.MaxAttempts > 0 {
		p = WithRetry(p, cfg.Retry)
	}
	if cfg.Breaker.Enabled {
		p = WithBreaker(p, cfg.Breaker, cfg.Timeout, logger)
	}
	return p, nil
}
