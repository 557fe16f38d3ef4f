package generator

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/incdrops/server/internal/config"
)

// turns a brief into ideas through a provider
type Generator struct {
	provider Provider
	count    int
	now      func() time.Time
	observer Observer
}

type Option func(*Generator)

func WithIdeaCount(n int) Option {
	return func(g *Generator) { g.count = n }
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

func WithObserver(o Observer) Option {
	return func(g *Generator) { g.observer = o }
}

func New(provider Provider, opts ...Option) *Generator {
	g := &Generator{
		provider: provider,
		count:    DefaultIdeaCount,
		now:      time.Now,
		observer: nopObserver{},
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// creates the provider selected in the configuration
func NewProvider(cfg config.GeneratorConfig) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderGemini, "":
		return NewGeminiProvider(GeminiConfig{APIKey: cfg.GeminiKey, Model: cfg.Model}), nil
	case config.ProviderOpenAI:
		return NewOpenAIProvider(OpenAIConfig{APIKey: cfg.OpenAIKey, Model: cfg.Model}), nil
	case config.ProviderAnthropic:
		return NewAnthropicProvider(AnthropicConfig{APIKey: cfg.AnthropicKey, Model: cfg.Model}), nil
	default:
		return nil, fmt.Errorf("unsupported generator provider: %s", cfg.Provider)
	}
}

func (g *Generator) Provider() Provider {
	return g.provider
}

// prompts the provider and parses its answer. provider failures are wrapped
// with ErrUpstream; unparseable answers are not errors, they yield placeholders
func (g *Generator) Generate(ctx context.Context, brief Brief) (*Result, error) {
	if err := brief.Validate(); err != nil {
		return nil, err
	}

	start := g.now()
	text, err := g.provider.Complete(ctx, BuildPrompt(brief, g.count))
	elapsed := g.now().Sub(start)

	if err != nil {
		g.observer.ObserveGeneration(g.provider.Name(), "error", elapsed)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	ideas, fallback := ParseIdeas(text, brief, g.now())

	outcome := "ok"
	if fallback {
		outcome = "fallback"
	}

	g.observer.ObserveGeneration(g.provider.Name(), outcome, elapsed)

	return &Result{
		Ideas:    ideas,
		Fallback: fallback,
		Provider: g.provider.Name(),
		Model:    g.provider.Model(),
		Duration: elapsed,
	}, nil
}
