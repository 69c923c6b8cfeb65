package safety

import (
	"context"
	"log/slog"

	"wellspring/app/config"
	"wellspring/app/service/modelrouter"

	"github.com/samber/do"
)

// Service is the crisis gate. It runs before topic routing and before any
// generation call; a positive verdict short-circuits the whole pipeline.
type Service struct {
	detectors []Detector
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	detectors := []Detector{NewPatternDetector()}

	if !cfg.Safety.DisableModelTier {
		detectors = append(detectors, NewModelDetector(do.MustInvoke[*modelrouter.Service](di)))
	}

	return NewWithDetectors(detectors...), nil
}

func NewWithDetectors(detectors ...Detector) *Service {
	return &Service{detectors: detectors}
}

// Check evaluates the tiers in order and stops at the first positive verdict.
//
// POLICY NOTE: when a tier errors (the model tier losing its provider, say),
// the gate skips it and can end up returning "no crisis". This fail-open
// behavior is inherited deliberately and must be confirmed or changed by the
// system owner; do not flip it to fail-closed silently.
func (s *Service) Check(ctx context.Context, text string) *Verdict {
	for _, detector := range s.detectors {
		verdict, err := detector.Detect(ctx, text)
		if err != nil {
			slog.Warn("Crisis detector errored, failing open", "error", err)
			continue
		}

		if verdict.IsCrisis {
			verdict.Message = severityMessages[verdict.Severity]
			verdict.Sources = crisisResources

			slog.Error("Crisis verdict",
				"severity", verdict.Severity,
				"category", verdict.Category,
				"method", verdict.Method,
				"telegram", true,
			)

			return verdict
		}
	}

	return &Verdict{IsCrisis: false}
}
