package llm

import (
	"context"
	"fmt"

	"github.com/mirrorsensei/sensei/internal/logging"
	"github.com/mirrorsensei/sensei/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with event
// logging. Failed calls are never retried.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *logging.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
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
		base = NewEchoProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base, cfg.Provider, eventRepo, log), nil
}
