package pillar

import (
	"context"
	"fmt"

	"wellspring/app/service/memory"
	"wellspring/app/service/modelrouter"
	"wellspring/app/service/topic"

	"github.com/samber/do"
)

type Request struct {
	UserID         string
	Message        string
	Hints          []string
	Mem            *memory.UserMemory
	Classification topic.Result
}

type Response struct {
	Text     string
	Provider string
}

// Handler is one pillar's specialist: it turns a user message plus memory
// context into response text.
type Handler interface {
	Pillar() string
	Handle(ctx context.Context, req Request) (*Response, error)
}

// Registry maps pillar keys to handlers. Adding a pillar is a registration,
// not a switch branch.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry(di *do.Injector) (*Registry, error) {
	router := do.MustInvoke[*modelrouter.Service](di)

	registry := &Registry{handlers: make(map[string]Handler)}
	for _, handler := range DefaultHandlers(router) {
		if err := registry.Register(handler); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

func NewEmptyRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(handler Handler) error {
	key := handler.Pillar()
	if _, exists := r.handlers[key]; exists {
		return fmt.Errorf("handler for pillar %q already registered", key)
	}

	r.handlers[key] = handler

	return nil
}

func (r *Registry) Lookup(pillar string) (Handler, bool) {
	handler, ok := r.handlers[pillar]
	return handler, ok
}
