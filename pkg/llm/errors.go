package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ProviderError is a non-2xx answer from a backend, kept structured so the
// retry layer can tell rate limits from bad credentials.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s error: status %d, body: %s", e.Provider, e.StatusCode, e.Body)
}

// Transient reports whether retrying the same provider can plausibly help.
// Timeouts, rate limits and server errors are transient; invalid credentials
// and malformed requests are not.
func (e *ProviderError) Transient() bool {
	switch {
	case e.StatusCode == http.StatusRequestTimeout:
		return true
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

// Transient classifies any error from a provider call. Network timeouts count;
// a cancelled parent context does not (retrying a dead job is pointless).
func Transient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient()
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return false
}
