package llm

import "context"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role Role
	Text string
}

type Request struct {
	// System instructions. Each provider decides how these go over the wire:
	// inline message for OpenAI-compatible endpoints, a separate top-level
	// parameter for Anthropic. Callers never deal with that difference.
	System      string
	Messages    []Message
	Temperature float32
	MaxTokens   int
	JSONMode    bool
}

// Provider is a remote text-generation backend.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}
