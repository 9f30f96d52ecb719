package llm

import (
	"context"
	"fmt"
)

// Provider interface for multiple generative-text backends
type Provider interface {
	GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error)
	GetProviderName() string
}

// ProviderType for factory
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderGemini ProviderType = "gemini"
	ProviderClaude ProviderType = "claude"
)

// ProviderConfig for create provider
type ProviderConfig struct {
	Type ProviderType

	// API Keys
	OpenAIKey string
	GeminiKey string
	ClaudeKey string

	// Model configs
	Model       string
	Temperature float32
	MaxTokens   int
}

// NewProvider factory for a single backend
func NewProvider(cfg *ProviderConfig) (Provider, error) {
	switch cfg.Type {
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required")
		}
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	case ProviderGemini:
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required")
		}
		return NewGeminiProvider(cfg.GeminiKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	case ProviderClaude:
		if cfg.ClaudeKey == "" {
			return nil, fmt.Errorf("CLAUDE_API_KEY is required")
		}
		return NewClaudeProvider(cfg.ClaudeKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider type: %s", cfg.Type)
	}
}
