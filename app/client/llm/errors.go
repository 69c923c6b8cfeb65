package llm

import (
	"context"
	"errors"
	"net"
)

// ErrUnavailable is what callers see after retries are exhausted or while a
// circuit breaker is open. It deliberately carries no provider detail.
var ErrUnavailable = errors.New("provider temporarily unavailable")

// permanentError marks a failure that retrying cannot fix: bad credentials,
// malformed request, unknown model. These bypass retries and do not count
// toward circuit breaker state.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

func MarkPermanent(err error) error {
	if err == nil {
		return nil
	}

	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// classifyStatus maps an HTTP status from a provider to the retry taxonomy.
// Timeouts and throttling are transient, the rest of 4xx is a configuration
// problem.
func classifyStatus(status int, err error) error {
	switch {
	case status == 408 || status == 429:
		return err
	case status >= 400 && status < 500:
		return MarkPermanent(err)
	default:
		return err
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
