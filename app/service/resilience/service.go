package resilience

import (
	"context"
	"log/slog"
	"time"

	"wellspring/app/client/llm"

	"github.com/cenkalti/backoff/v4"
	"github.com/samber/do"
)

const (
	maxAttempts = 3
	baseBackoff = 250 * time.Millisecond
	maxBackoff  = 2000 * time.Millisecond
)

// Operation is one unit of outbound work against an external provider.
type Operation func(ctx context.Context) (string, error)

// Service wraps provider calls with retry-with-backoff and a circuit breaker.
// It knows nothing about what it is calling: callers hand it a label and a
// closure.
type Service struct {
	registry *Registry
	base     time.Duration
	cap      time.Duration
}

func New(_ *do.Injector) (*Service, error) {
	return NewWithRegistry(NewRegistry()), nil
}

func NewWithRegistry(registry *Registry) *Service {
	return &Service{
		registry: registry,
		base:     baseBackoff,
		cap:      maxBackoff,
	}
}

func (s *Service) Registry() *Registry {
	return s.registry
}

// Call runs op under the label's breaker. Transient failures are retried up
// to 3 attempts with exponential backoff and eventually collapse into
// llm.ErrUnavailable; permanent failures come back unchanged and untouched by
// retries or breaker state.
func (s *Service) Call(ctx context.Context, label string, op Operation) (string, error) {
	if !s.registry.Allow(label) {
		slog.Warn("Circuit open, skipping call", "label", label)
		return "", llm.ErrUnavailable
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.base
	policy.RandomizationFactor = 0
	policy.Multiplier = 2
	policy.MaxInterval = s.cap
	policy.MaxElapsedTime = 0

	var result string
	attempt := 0

	err := backoff.Retry(func() error {
		attempt++

		text, opErr := op(ctx)
		if opErr == nil {
			result = text
			return nil
		}

		if llm.IsPermanent(opErr) {
			return backoff.Permanent(opErr)
		}

		opened := s.registry.RecordFailure(label)
		slog.Warn("Transient provider failure",
			"label", label,
			"attempt", attempt,
			"error", opErr,
		)

		if opened {
			slog.Error("Circuit breaker opened",
				"label", label,
				"cooldown", cooldownPeriod,
				"telegram", true,
			)
		}

		return opErr
	}, backoff.WithContext(backoff.WithMaxRetries(policy, maxAttempts-1), ctx))

	if err != nil {
		if llm.IsPermanent(err) {
			return "", err
		}

		slog.Warn("Retries exhausted", "label", label, "attempts", attempt)

		return "", llm.ErrUnavailable
	}

	if s.registry.RecordSuccess(label) {
		slog.Info("Provider recovered", "label", label, "telegram", true)
	}

	return result, nil
}
