package llm

import (
	"context"
	"errors"
	"fmt"

	"negosim/config"
)

// Role tags a chat message with its author kind.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry in a model request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a single completion request: the ordered message sequence plus
// sampling parameters.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Invoker maps an ordered message sequence to one generated text completion.
// Exactly one concrete adapter is selected at startup via configuration;
// callers never inspect the transport behind it.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (string, error)
}

// InvokerFunc adapts a plain function to the Invoker interface.
type InvokerFunc func(ctx context.Context, req Request) (string, error)

func (f InvokerFunc) Invoke(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// New constructs the transport adapter named by the configuration. A missing
// credential is reported here, before any run starts.
func New(ctx context.Context, cfg config.LLMConfig) (Invoker, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, errors.New("openai provider selected but no API key configured (set llm.api_key or OPENAI_API_KEY)")
		}
		return NewOpenAIClient(cfg), nil
	case config.ProviderGemini:
		if cfg.APIKey == "" {
			return nil, errors.New("gemini provider selected but no API key configured (set llm.api_key or GEMINI_API_KEY)")
		}
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}
}
