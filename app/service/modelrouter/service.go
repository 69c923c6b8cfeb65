package modelrouter

import (
	"context"
	"log/slog"

	"wellspring/app/client/llm"
	"wellspring/app/config"
	"wellspring/app/service/resilience"

	"github.com/samber/do"
	"github.com/samber/oops"
)

const defaultMaxTokens = 1000

// Service picks a provider for a task class and drives every attempt through
// the resilience wrapper, falling back to the secondary provider when the
// primary reports any failure. Responses are never cached.
type Service struct {
	providers  map[string]llm.Provider
	resilience *resilience.Service
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	anthropicProvider, err := llm.NewAnthropicProvider(cfg.Anthropic)
	if err != nil {
		return nil, oops.Errorf("failed to init anthropic provider: %w", err)
	}

	providers := map[string]llm.Provider{
		"openai":    llm.NewOpenAIProvider(cfg.OpenAI),
		"anthropic": anthropicProvider,
	}

	return NewWithProviders(do.MustInvoke[*resilience.Service](di), providers), nil
}

func NewWithProviders(resilienceSvc *resilience.Service, providers map[string]llm.Provider) *Service {
	return &Service{
		providers:  providers,
		resilience: resilienceSvc,
	}
}

// Route sends the conversation to the task's primary provider, then to its
// fallback. History goes over verbatim; each provider adapter normalizes role
// markers to its own wire shape.
func (s *Service) Route(ctx context.Context, task Task, system, userText string, history []llm.Message) (*Reply, error) {
	r, ok := routes[task]
	if !ok {
		r = routes[TaskMixed]
	}

	req := llm.Request{
		System:      system,
		Messages:    append(append([]llm.Message{}, history...), llm.Message{Role: llm.RoleUser, Text: userText}),
		Temperature: r.temperature,
		MaxTokens:   defaultMaxTokens,
	}

	text, primaryErr := s.generate(ctx, r.primary, task, req)
	if primaryErr == nil {
		return &Reply{Provider: r.primary, Text: text}, nil
	}

	slog.Warn("Primary provider failed, trying fallback",
		"task", task,
		"primary", r.primary,
		"fallback", r.fallback,
		"error", primaryErr,
	)

	text, fallbackErr := s.generate(ctx, r.fallback, task, req)
	if fallbackErr == nil {
		return &Reply{Provider: r.fallback, Text: text}, nil
	}

	return nil, oops.
		With("task", task).
		With("primary", r.primary).
		With("fallback", r.fallback).
		Errorf("all providers failed: %s: %v; %s: %v", r.primary, primaryErr, r.fallback, fallbackErr)
}

// Classify runs a single low-temperature JSON-mode call on the conversational
// route. Safety and topic classification tiers use this instead of talking to
// providers directly.
func (s *Service) Classify(ctx context.Context, system, userText string) (string, error) {
	r := routes[TaskConversational]

	req := llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Text: userText}},
		Temperature: 0.1,
		MaxTokens:   300,
		JSONMode:    true,
	}

	text, err := s.generate(ctx, r.primary, "classify", req)
	if err == nil {
		return text, nil
	}

	return s.generate(ctx, r.fallback, "classify", req)
}

func (s *Service) generate(ctx context.Context, name string, task Task, req llm.Request) (string, error) {
	provider, ok := s.providers[name]
	if !ok {
		return "", oops.Errorf("unknown provider %q", name)
	}

	label := name + "/" + string(task)

	return s.resilience.Call(ctx, label, func(ctx context.Context) (string, error) {
		return provider.Generate(ctx, req)
	})
}
