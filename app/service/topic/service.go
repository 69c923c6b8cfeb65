package topic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"wellspring/app/service/memory"
	"wellspring/app/service/modelrouter"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
)

const keywordConfidenceThreshold = 0.8

// Classifier mirrors the model router's single-shot classification call.
type Classifier interface {
	Classify(ctx context.Context, system, userText string) (string, error)
}

// Service decides which pillar handler should process a message. It never
// fails: every fallback tier degrades confidence instead of erroring.
type Service struct {
	classifier Classifier
}

func New(di *do.Injector) (*Service, error) {
	return NewWithClassifier(do.MustInvoke[*modelrouter.Service](di)), nil
}

func NewWithClassifier(classifier Classifier) *Service {
	return &Service{classifier: classifier}
}

// Classify runs the fallback chain: confident keyword match, model verdict,
// low-confidence keyword match, previous pillar, fixed default.
func (s *Service) Classify(ctx context.Context, text string, mem *memory.UserMemory, lastPillar string) Result {
	keywordResult := s.scoreKeywords(text)
	if keywordResult.Confidence > keywordConfidenceThreshold {
		return keywordResult
	}

	if s.classifier != nil {
		if modelResult, ok := s.classifyWithModel(ctx, text, mem); ok {
			return modelResult
		}
	}

	if keywordResult.Confidence > 0 {
		keywordResult.Method = "keyword-low"
		return keywordResult
	}

	if lastPillar != "" && ValidPillar(lastPillar) {
		return Result{
			Pillar:     lastPillar,
			Confidence: 0.3,
			Method:     "history",
			Reason:     "continuing the previous conversation topic",
		}
	}

	return Result{
		Pillar:     DefaultPillar,
		Confidence: 0.1,
		Method:     "default",
		Reason:     "no signal in the message, using the default pillar",
	}
}

// scoreKeywords counts keyword hits per pillar. Two distinct hits are enough
// to clear the acceptance threshold.
func (s *Service) scoreKeywords(text string) Result {
	lowered := strings.ToLower(text)

	bestPillar := ""
	bestMatches := 0
	var bestHits []string

	for _, pillar := range sortedPillars() {
		hits := pie.Filter(keywordTable[pillar], func(keyword string) bool {
			return strings.Contains(lowered, keyword)
		})

		if len(hits) > bestMatches {
			bestPillar = pillar
			bestMatches = len(hits)
			bestHits = hits
		}
	}

	if bestMatches == 0 {
		return Result{}
	}

	confidence := 0.35 + 0.25*float64(bestMatches)
	if confidence > 0.95 {
		confidence = 0.95
	}

	return Result{
		Pillar:     bestPillar,
		Confidence: confidence,
		Method:     "keyword",
		Reason:     fmt.Sprintf("matched keywords: %s", strings.Join(bestHits, ", ")),
	}
}

type modelClassification struct {
	Pillar     string  `json:"pillar"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

func (s *Service) classifyWithModel(ctx context.Context, text string, mem *memory.UserMemory) (Result, bool) {
	prompt := fmt.Sprintf(`You route messages in a wellness coaching app to one of these pillars: %s.
%sRespond with JSON only: {"pillar": string, "confidence": number between 0 and 1, "reason": string}.`,
		strings.Join(sortedPillars(), ", "), activePillarsHint(mem))

	raw, err := s.classifier.Classify(ctx, prompt, text)
	if err != nil {
		slog.Warn("Model topic classification failed", "error", err)
		return Result{}, false
	}

	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "json")
	raw = strings.TrimSpace(raw)

	var verdict modelClassification
	if err = json.Unmarshal([]byte(raw), &verdict); err != nil {
		slog.Warn("Unparseable topic classification", "raw", raw, "error", err)
		return Result{}, false
	}

	if !ValidPillar(verdict.Pillar) {
		return Result{}, false
	}

	return Result{
		Pillar:     verdict.Pillar,
		Confidence: verdict.Confidence,
		Method:     "model",
		Reason:     verdict.Reason,
	}, true
}

func activePillarsHint(mem *memory.UserMemory) string {
	if mem == nil || len(mem.Pillars) == 0 {
		return ""
	}

	active := pie.Filter(sortedPillars(), func(pillar string) bool {
		p, ok := mem.Pillars[pillar]
		return ok && len(p.History) > 0
	})

	if len(active) == 0 {
		return ""
	}

	return fmt.Sprintf("The user has ongoing conversations about: %s.\n", strings.Join(active, ", "))
}

func sortedPillars() []string {
	pillars := pie.Keys(keywordTable)
	sort.Strings(pillars)

	return pillars
}
