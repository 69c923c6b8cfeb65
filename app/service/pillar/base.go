package pillar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wellspring/app/client/llm"
	"wellspring/app/service/memory"
	"wellspring/app/service/modelrouter"
)

const historyWindow = 10

// Router is the slice of the model router that handlers need.
type Router interface {
	Route(ctx context.Context, task modelrouter.Task, system, userText string, history []llm.Message) (*modelrouter.Reply, error)
}

// coachHandler is the shared specialist implementation: each pillar gets its
// own prompt template and task class, everything else is common.
type coachHandler struct {
	pillar   string
	task     modelrouter.Task
	template string
	router   Router
}

func (h *coachHandler) Pillar() string {
	return h.pillar
}

func (h *coachHandler) Handle(ctx context.Context, req Request) (*Response, error) {
	system := h.buildSystemPrompt(req.Mem)
	if len(req.Hints) > 0 {
		system += "\nCaller hints: " + strings.Join(req.Hints, "; ")
	}
	history := h.buildHistory(req.Mem)

	reply, err := h.router.Route(ctx, h.task, system, req.Message, history)
	if err != nil {
		return nil, fmt.Errorf("generation failed for pillar %s: %w", h.pillar, err)
	}

	return &Response{
		Text:     reply.Text,
		Provider: reply.Provider,
	}, nil
}

func (h *coachHandler) buildSystemPrompt(mem *memory.UserMemory) string {
	templateValues := map[string]any{
		"items":    formatItems(mem, h.pillar),
		"covered":  formatCovered(mem, h.pillar),
		"artifact": formatArtifact(mem, h.pillar),
	}

	prompt := h.template
	for key, value := range templateValues {
		prompt = strings.ReplaceAll(prompt, "{"+key+"}", fmt.Sprint(value))
	}

	return prompt
}

func (h *coachHandler) buildHistory(mem *memory.UserMemory) []llm.Message {
	if mem == nil {
		return nil
	}

	turns := mem.Pillar(h.pillar).History
	if len(turns) > historyWindow {
		turns = turns[len(turns)-historyWindow:]
	}

	history := make([]llm.Message, 0, len(turns))
	for _, turn := range turns {
		role := llm.RoleUser
		if turn.Role == memory.RoleAssistant {
			role = llm.RoleAssistant
		}

		history = append(history, llm.Message{Role: role, Text: turn.Text})
	}

	return history
}

func formatItems(mem *memory.UserMemory, pillar string) string {
	if mem == nil {
		return "none yet"
	}

	items := mem.Pillar(pillar).Items
	if len(items) == 0 {
		return "none yet"
	}

	var builder strings.Builder
	for _, item := range items {
		builder.WriteString(fmt.Sprintf("- [%s] %s\n", item.Type, item.Title))
	}

	return builder.String()
}

func formatCovered(mem *memory.UserMemory, pillar string) string {
	if mem == nil {
		return "nothing yet"
	}

	now := time.Now()
	var fresh []string

	for _, covered := range mem.Pillar(pillar).Covered {
		if now.Sub(covered.CoveredAt) < 30*24*time.Hour {
			fresh = append(fresh, covered.Subject)
		}
	}

	if len(fresh) == 0 {
		return "nothing yet"
	}

	return strings.Join(fresh, ", ")
}

func formatArtifact(mem *memory.UserMemory, pillar string) string {
	if mem == nil {
		return "none"
	}

	artifact := mem.Pillar(pillar).LastArtifact
	if artifact == nil {
		return "none"
	}

	return fmt.Sprintf("%s: %s", artifact.Type, artifact.Title)
}
