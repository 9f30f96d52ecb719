package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_RequiresAKey(t *testing.T) {
	_, err := NewProvider(&ProviderConfig{Type: ProviderOpenAI})
	assert.Error(t, err)
	_, err = NewProvider(&ProviderConfig{Type: ProviderGemini})
	assert.Error(t, err)
	_, err = NewProvider(&ProviderConfig{Type: ProviderClaude})
	assert.Error(t, err)
	_, err = NewProvider(&ProviderConfig{Type: "groq"})
	assert.Error(t, err)
}

func TestNewProvider_Factory(t *testing.T) {
	p, err := NewProvider(&ProviderConfig{Type: ProviderOpenAI, OpenAIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "OpenAI", p.GetProviderName())

	p, err = NewProvider(&ProviderConfig{Type: ProviderClaude, ClaudeKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "Anthropic Claude", p.GetProviderName())
}

func TestProviderDefaults_ShareOneCompletionBudget(t *testing.T) {
	// All backends fall back to the same generation ceiling, so a fallback
	// hop never silently shrinks the reply.
	o := NewOpenAIProvider("k", "", 0, 0)
	g := NewGeminiProvider("k", "", 0, 0)
	c := NewClaudeProvider("k", "", 0, 0)

	assert.Equal(t, 1024, o.maxTokens)
	assert.Equal(t, o.maxTokens, g.maxTokens)
	assert.Equal(t, o.maxTokens, c.maxTokens)
}
