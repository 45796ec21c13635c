// Package llm talks to the hosted chat-completion providers and turns their
// free-form replies into the structured Reply the chat handler persists.
package llm

import (
	"context"
	"fmt"

	"github.com/ASHISH26940/manim-chat-api/pkg/config"
)

// Completer issues a single completion: one system instruction and one user
// turn, no replayed history.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Close() error
}

// NewFromConfig builds the completer selected by LLM_PROVIDER.
func NewFromConfig(cfg *config.Config) (Completer, error) {
	switch cfg.LLMProvider {
	case "openai":
		return NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), nil
	case "gemini":
		return NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}
}
