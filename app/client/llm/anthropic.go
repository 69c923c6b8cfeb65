package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"wellspring/app/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/schema"
)

var _ Provider = (*AnthropicProvider)(nil)

// AnthropicProvider talks to the Anthropic messages API through langchaingo.
// Unlike the OpenAI shape, system instructions are a separate top-level
// request parameter; the driver lifts a system-typed message into it.
type AnthropicProvider struct {
	model *anthropic.LLM
	name  string
}

func NewAnthropicProvider(cfg config.Provider) (*AnthropicProvider, error) {
	opts := []anthropic.Option{
		anthropic.WithToken(cfg.Token),
		anthropic.WithModel(cfg.Model),
		anthropic.WithHTTPClient(&http.Client{Timeout: requestTimeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}

	model, err := anthropic.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create anthropic client: %w", err)
	}

	return &AnthropicProvider{
		model: model,
		name:  "anthropic",
	}, nil
}

func (p *AnthropicProvider) Name() string {
	return p.name
}

func (p *AnthropicProvider) Generate(ctx context.Context, req Request) (string, error) {
	content := make([]llms.MessageContent, 0, len(req.Messages)+1)

	if req.System != "" {
		content = append(content, llms.TextParts(schema.ChatMessageTypeSystem, req.System))
	}

	for _, msg := range req.Messages {
		role := schema.ChatMessageTypeHuman
		if msg.Role == RoleAssistant {
			role = schema.ChatMessageTypeAI
		}

		content = append(content, llms.TextParts(role, msg.Text))
	}

	opts := []llms.CallOption{
		llms.WithTemperature(float64(req.Temperature)),
		llms.WithMaxTokens(req.MaxTokens),
	}
	if req.JSONMode {
		opts = append(opts, llms.WithJSONMode())
	}

	resp, err := p.model.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", p.classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no content choices returned")
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// classify sorts anthropic failures into the retry taxonomy. The langchaingo
// driver surfaces HTTP failures as flat error strings, so auth and request
// shape problems are recognized by their status text.
func (p *AnthropicProvider) classify(err error) error {
	wrapped := fmt.Errorf("anthropic completion failed: %w", err)

	if isTimeout(err) {
		return wrapped
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"401", "403", "authentication", "invalid x-api-key", "invalid_request"} {
		if strings.Contains(msg, marker) {
			return MarkPermanent(wrapped)
		}
	}

	return wrapped
}
