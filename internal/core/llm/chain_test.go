package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name  string
	reply string
	err   error
	calls int
}

func (f *fakeProvider) GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeProvider) GetProviderName() string { return f.name }

func TestChain_FirstBackendAnswers(t *testing.T) {
	first := &fakeProvider{name: "a", reply: "hello"}
	second := &fakeProvider{name: "b", reply: "unused"}
	chain, err := NewChain([]Provider{first, second}, time.Second)
	require.NoError(t, err)

	reply, err := chain.GenerateResponse(context.Background(), "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)
	assert.Zero(t, second.calls, "fallback must not run when the preferred backend answers")
}

func TestChain_FallsThroughInOrder(t *testing.T) {
	first := &fakeProvider{name: "a", err: errors.New("timeout")}
	second := &fakeProvider{name: "b", err: errors.New("quota")}
	third := &fakeProvider{name: "c", reply: "rescued"}
	chain, err := NewChain([]Provider{first, second, third}, time.Second)
	require.NoError(t, err)

	reply, err := chain.GenerateResponse(context.Background(), "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "rescued", reply)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestChain_EveryCallStartsFromPreferredBackend(t *testing.T) {
	// Backend health changes; a failure on one call must not demote the
	// backend for the next.
	first := &fakeProvider{name: "a", err: errors.New("down")}
	second := &fakeProvider{name: "b", reply: "ok"}
	chain, err := NewChain([]Provider{first, second}, time.Second)
	require.NoError(t, err)

	_, err = chain.GenerateResponse(context.Background(), "", "one")
	require.NoError(t, err)
	_, err = chain.GenerateResponse(context.Background(), "", "two")
	require.NoError(t, err)

	assert.Equal(t, 2, first.calls, "the preferred backend is retried on every call")
}

func TestChain_AllBackendsExhausted(t *testing.T) {
	chain, err := NewChain([]Provider{
		&fakeProvider{name: "a", err: errors.New("down")},
		&fakeProvider{name: "b", err: errors.New("also down")},
	}, time.Second)
	require.NoError(t, err)

	_, err = chain.GenerateResponse(context.Background(), "", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exhausted")
}

func TestChain_RequiresABackend(t *testing.T) {
	_, err := NewChain(nil, time.Second)
	assert.Error(t, err)
}

func TestChain_CanceledContextStopsTheWalk(t *testing.T) {
	first := &fakeProvider{name: "a", err: errors.New("down")}
	second := &fakeProvider{name: "b", reply: "late"}
	chain, err := NewChain([]Provider{first, second}, time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = chain.GenerateResponse(ctx, "", "hi")
	require.Error(t, err)
	assert.Zero(t, second.calls)
}
