package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"wellspring/app/service/memory"
	"wellspring/app/service/persist"
	"wellspring/app/service/pillar"
	"wellspring/app/service/safety"
	"wellspring/app/service/topic"

	"github.com/samber/do"
)

// ErrValidation marks requests rejected at the pipeline boundary, before any
// provider or store work happens.
var ErrValidation = errors.New("invalid request")

const degradedReplyText = "I'm having trouble reaching my coaching models right now. " +
	"Your message came through and I'll be back shortly — please try again in a minute."

// Service runs the whole pipeline for one inbound message. The order is a
// hard invariant: crisis gate, then topic routing, then generation, then the
// persistence gate — nothing may generate for crisis text, and nothing may be
// delivered before the persistence gate has had its say.
type Service struct {
	safetySvc  *safety.Service
	topicSvc   *topic.Service
	registry   *pillar.Registry
	memorySvc  *memory.Service
	persistSvc *persist.Service
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		safetySvc:  do.MustInvoke[*safety.Service](di),
		topicSvc:   do.MustInvoke[*topic.Service](di),
		registry:   do.MustInvoke[*pillar.Registry](di),
		memorySvc:  do.MustInvoke[*memory.Service](di),
		persistSvc: do.MustInvoke[*persist.Service](di),
	}, nil
}

func NewWithDeps(
	safetySvc *safety.Service,
	topicSvc *topic.Service,
	registry *pillar.Registry,
	memorySvc *memory.Service,
	persistSvc *persist.Service,
) *Service {
	return &Service{
		safetySvc:  safetySvc,
		topicSvc:   topicSvc,
		registry:   registry,
		memorySvc:  memorySvc,
		persistSvc: persistSvc,
	}
}

func (s *Service) Chat(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}

	// one writer per user for the whole load-mutate-save cycle
	unlock := s.memorySvc.LockUser(req.UserID)
	defer unlock()

	mem, err := s.memorySvc.Load(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory: %w", err)
	}

	start := time.Now()

	if verdict := s.safetySvc.Check(ctx, req.Message); verdict.IsCrisis {
		return s.respondToCrisis(req, mem, verdict), nil
	}

	classification := s.classify(ctx, req, mem)

	handler, ok := s.registry.Lookup(classification.Pillar)
	if !ok {
		return nil, fmt.Errorf("no handler registered for pillar %q", classification.Pillar)
	}

	providerUsed := "none"
	var assistantText string

	resp, err := handler.Handle(ctx, pillar.Request{
		UserID:         req.UserID,
		Message:        req.Message,
		Hints:          req.Hints,
		Mem:            mem,
		Classification: classification,
	})
	if err != nil {
		slog.Warn("Handler degraded to fallback reply",
			"pillar", classification.Pillar,
			"error", err,
		)
		assistantText = degradedReplyText
	} else {
		providerUsed = resp.Provider
		assistantText = resp.Text
	}

	outcome, err := s.persistSvc.Persist(ctx, mem, classification.Pillar, req.Message, assistantText)
	if err != nil {
		return nil, fmt.Errorf("persistence gate failed: %w", err)
	}

	slog.Info("Processed message",
		"user_id", req.UserID,
		"pillar", classification.Pillar,
		"method", classification.Method,
		"provider", providerUsed,
		"saved", outcome.Saved,
		"duration", time.Since(start),
	)

	return &Response{
		OK:       true,
		Text:     outcome.DeliveredText,
		Pillar:   classification.Pillar,
		Provider: providerUsed,
		Meta: Meta{
			Method:      classification.Method,
			Confidence:  classification.Confidence,
			Saved:       outcome.Saved,
			SaveSummary: outcome.SaveSummary,
		},
	}, nil
}

// Reset wipes a user's memory record. Operator entry point.
func (s *Service) Reset(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}

	unlock := s.memorySvc.LockUser(userID)
	defer unlock()

	return s.memorySvc.Reset(userID)
}

func (s *Service) classify(ctx context.Context, req Request, mem *memory.UserMemory) topic.Result {
	if req.Pillar != "" && topic.ValidPillar(req.Pillar) {
		return topic.Result{
			Pillar:     req.Pillar,
			Confidence: 1,
			Method:     "explicit",
			Reason:     "pillar requested by the caller",
		}
	}

	return s.topicSvc.Classify(ctx, req.Message, mem, lastActivePillar(mem))
}

// respondToCrisis records the exchange best-effort and returns the safety
// message. The save is not allowed to block delivery here: withholding a
// crisis response because a disk write failed would invert the safety
// trade-off the persistence gate exists for.
func (s *Service) respondToCrisis(req Request, mem *memory.UserMemory, verdict *safety.Verdict) *Response {
	mem.AppendTurn(topic.PillarMindset, memory.RoleUser, req.Message)
	mem.AppendTurn(topic.PillarMindset, memory.RoleAssistant, verdict.Message)

	if err := s.memorySvc.Save(req.UserID, mem); err != nil {
		slog.Error("Failed to save crisis exchange",
			"user_id", req.UserID,
			"error", err,
			"telegram", true,
		)
	}

	return &Response{
		OK:        true,
		Text:      verdict.Message,
		IsCrisis:  true,
		Resources: verdict.Sources,
		Meta: Meta{
			Method:     verdict.Method,
			Confidence: 1,
		},
	}
}

// lastActivePillar finds the pillar with the most recent turn, for the topic
// router's continuity fallback.
func lastActivePillar(mem *memory.UserMemory) string {
	var best string
	var bestTime time.Time

	for key, p := range mem.Pillars {
		if len(p.History) == 0 {
			continue
		}

		last := p.History[len(p.History)-1].Timestamp
		if last.After(bestTime) {
			best = key
			bestTime = last
		}
	}

	return best
}
