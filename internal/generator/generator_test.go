package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"codeberg.org/incdrops/server/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	text   string
	err    error
	prompt string
}

func (s *stubProvider) Complete(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.text, s.err
}

func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return "stub-1" }

type recordingObserver struct {
	outcomes []string
}

func (r *recordingObserver) ObserveGeneration(_, outcome string, _ time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
}

func TestGenerator_Generate(t *testing.T) {
	provider := &stubProvider{text: `[{"title":"A"},{"title":"B"}]`}
	observer := &recordingObserver{}
	g := New(provider, WithIdeaCount(2), WithClock(func() time.Time { return fixedNow }), WithObserver(observer))

	res, err := g.Generate(context.Background(), Brief{Industry: "tea"})
	require.NoError(t, err)

	assert.Len(t, res.Ideas, 2)
	assert.False(t, res.Fallback)
	assert.Equal(t, "stub", res.Provider)
	assert.Equal(t, "stub-1", res.Model)
	assert.Contains(t, provider.prompt, "Generate 2 content ideas")
	assert.Equal(t, []string{"ok"}, observer.outcomes)
}

func TestGenerator_FallbackIsNotAnError(t *testing.T) {
	observer := &recordingObserver{}
	g := New(&stubProvider{text: "no json here"}, WithObserver(observer))

	res, err := g.Generate(context.Background(), Brief{})
	require.NoError(t, err)

	assert.True(t, res.Fallback)
	assert.Len(t, res.Ideas, 5)
	assert.Equal(t, []string{"fallback"}, observer.outcomes)
}

func TestGenerator_ProviderError(t *testing.T) {
	observer := &recordingObserver{}
	g := New(&stubProvider{err: errors.New("boom")}, WithObserver(observer))

	_, err := g.Generate(context.Background(), Brief{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, []string{"error"}, observer.outcomes)
}

func TestGenerator_RejectsUnknownContentType(t *testing.T) {
	provider := &stubProvider{text: "[]"}
	g := New(provider)

	_, err := g.Generate(context.Background(), Brief{ContentType: "fax"})
	assert.ErrorIs(t, err, ErrInvalidContentType)
	assert.Empty(t, provider.prompt, "provider is not called for invalid briefs")
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(config.GeneratorConfig{Provider: config.ProviderGemini, GeminiKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())

	p, err = NewProvider(config.GeneratorConfig{Provider: config.ProviderOpenAI, OpenAIKey: "k", Model: "gpt-4.1"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1", p.Model())

	p, err = NewProvider(config.GeneratorConfig{Provider: config.ProviderAnthropic, AnthropicKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())

	_, err = NewProvider(config.GeneratorConfig{Provider: "cohere"})
	assert.Error(t, err)
}
