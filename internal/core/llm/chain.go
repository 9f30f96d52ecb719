package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/simplecrm/simplecrm-be/internal/shared/utils"
)

// DefaultCallTimeout bounds one backend attempt so a stalled call cannot hang
// a connection.
const DefaultCallTimeout = 15 * time.Second

// Chain tries an ordered list of backends until one answers. The order is
// fixed at construction and every call starts again from the first backend;
// no health state is carried between calls, since a backend that just failed
// may already be back.
type Chain struct {
	backends    []Provider
	callTimeout time.Duration
}

// NewChain builds a fallback chain over the given backends.
func NewChain(backends []Provider, callTimeout time.Duration) (*Chain, error) {
	if len(backends) == 0 {
		return nil, fmt.Errorf("at least one LLM backend is required")
	}
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &Chain{backends: backends, callTimeout: callTimeout}, nil
}

// ChainFromConfig assembles providers for every backend named in order that
// has a key configured. Unconfigured backends are skipped with a warning.
func ChainFromConfig(order []string, openAIKey, geminiKey, claudeKey, model string) (*Chain, error) {
	var backends []Provider
	for _, name := range order {
		cfg := &ProviderConfig{
			Type:      ProviderType(name),
			OpenAIKey: openAIKey,
			GeminiKey: geminiKey,
			ClaudeKey: claudeKey,
			Model:     model,
		}
		p, err := NewProvider(cfg)
		if err != nil {
			utils.LogWarn("skipping LLM backend", map[string]interface{}{
				"backend": name, "reason": err.Error(),
			})
			continue
		}
		backends = append(backends, p)
	}
	return NewChain(backends, 0)
}

// GenerateResponse walks the chain in order and returns the first answer.
// The error is only returned once every backend has failed for this call.
func (c *Chain) GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	var lastErr error
	for _, backend := range c.backends {
		attemptCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		reply, err := backend.GenerateResponse(attemptCtx, systemPrompt, userMessage)
		cancel()
		if err == nil {
			return reply, nil
		}
		lastErr = err
		utils.LogWarn("LLM backend failed, falling back", map[string]interface{}{
			"backend": backend.GetProviderName(), "error": err.Error(),
		})
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("all LLM backends exhausted: %w", lastErr)
}

// GetProviderName names the preferred backend.
func (c *Chain) GetProviderName() string {
	return c.backends[0].GetProviderName()
}
