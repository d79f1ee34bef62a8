package client

import (
	"context"
	"fmt"
	"time"

	"qa-paper-be/internal/apperr"
	"qa-paper-be/internal/pkg/logger"
	"qa-paper-be/pkg/llm"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy bounds the retry budget each provider gets before the client
// falls through to the next one.
type RetryPolicy struct {
	MaxAttempts uint
	BaseDelay   time.Duration
	Jitter      float64 // randomization factor, 0 disables jitter
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Jitter:      0.5,
	}
}

// NamedProvider pairs a backend with the configuration name it was built from,
// so fallback order and log lines stay readable.
type NamedProvider struct {
	Name     string
	Provider llm.Provider
}

// FallbackClient tries providers in a fixed order. Transient failures are
// retried with exponential backoff up to the policy's budget; non-transient
// failures skip straight to the next provider. Only when every provider's
// budget is spent does the call fail, with apperr.ErrAllProvidersExhausted.
//
// The client keeps no state between calls.
type FallbackClient struct {
	providers []NamedProvider
	policy    RetryPolicy
	log       logger.ILogger
}

func NewFallbackClient(providers []NamedProvider, policy RetryPolicy, log logger.ILogger) (*FallbackClient, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("fallback client needs at least one provider")
	}
	if policy.MaxAttempts == 0 {
		policy = DefaultRetryPolicy()
	}
	return &FallbackClient{providers: providers, policy: policy, log: log}, nil
}

// Generate runs the prompt through the provider chain.
func (c *FallbackClient) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	var lastErr error

	for _, np := range c.providers {
		text, err := c.generateWithRetry(ctx, np, prompt, options...)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", fmt.Errorf("generation aborted: %w", ctx.Err())
		}

		c.log.Warn("llm_client", "provider failed, falling back", map[string]interface{}{
			"provider": np.Name,
			"error":    err.Error(),
		})
	}

	return "", fmt.Errorf("%w: last error: %v", apperr.ErrAllProvidersExhausted, lastErr)
}

func (c *FallbackClient) generateWithRetry(ctx context.Context, np NamedProvider, prompt string, options ...llm.Option) (string, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.policy.BaseDelay
	bo.RandomizationFactor = c.policy.Jitter
	bo.Multiplier = 2

	operation := func() (string, error) {
		text, err := np.Provider.Generate(ctx, prompt, options...)
		if err == nil {
			return text, nil
		}
		if !llm.Transient(err) {
			// Bad credentials or a malformed request will not improve with
			// waiting; stop this provider immediately.
			return "", backoff.Permanent(err)
		}
		return "", err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(c.policy.MaxAttempts),
	)
}
