package resilience

import (
	"sync"
	"time"
)

const (
	failureThreshold = 5
	cooldownPeriod   = 2 * time.Minute
)

type breaker struct {
	failures  int
	openUntil time.Time
}

// Registry owns circuit breaker state, one breaker per caller-supplied label.
// Callers label calls as "provider/task" so unrelated call sites never share
// fate. The registry is injected, never package-level, so tests can build
// isolated instances.
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*breaker
	now      func() time.Time
}

func NewRegistry() *Registry {
	return NewRegistryWithClock(time.Now)
}

func NewRegistryWithClock(now func() time.Time) *Registry {
	return &Registry{
		breakers: make(map[string]*breaker),
		now:      now,
	}
}

// Allow reports whether a call under this label may proceed. Once a breaker's
// cool-down window has elapsed the call is let through again; the failure
// counter stays, so another transient failure re-opens the breaker at once.
func (r *Registry) Allow(label string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.breakers[label]
	if !ok {
		return true
	}

	return !r.now().Before(b.openUntil)
}

// RecordFailure counts one transient failure and reports whether this failure
// tripped the breaker open.
func (r *Registry) RecordFailure(label string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.breakers[label]
	if !ok {
		b = &breaker{}
		r.breakers[label] = b
	}

	b.failures++
	if b.failures < failureThreshold {
		return false
	}

	wasOpen := r.now().Before(b.openUntil)
	b.openUntil = r.now().Add(cooldownPeriod)

	return !wasOpen
}

// RecordSuccess resets the label's breaker and reports whether it had
// recorded failures before.
func (r *Registry) RecordSuccess(label string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.breakers[label]
	if !ok || b.failures == 0 {
		return false
	}

	b.failures = 0
	b.openUntil = time.Time{}

	return true
}

// Failures returns the current consecutive failure count for a label.
func (r *Registry) Failures(label string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.breakers[label]
	if !ok {
		return 0
	}

	return b.failures
}
