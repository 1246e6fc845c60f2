package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

const (
	// DefaultRetries is the number of additional attempts after the first
	DefaultRetries = 2
	// DefaultBackoff is the initial delay before the first retry
	DefaultBackoff = time.Second
)

// ErrLLMFailure marks an LLM call that failed on every attempt
var ErrLLMFailure = errors.New("llm request failed after retries")

// attemptFunc performs one LLM attempt
type attemptFunc func(ctx context.Context, prompt string) (string, error)

// completeWithRetry runs attempts with exponential backoff: retries extra
// attempts after the first, starting from backoff and doubling. The last
// attempt's error is wrapped in ErrLLMFailure once the budget is exhausted.
func completeWithRetry(ctx context.Context, attempt attemptFunc, prompt string, retries int, backoff time.Duration) (string, error) {
	var lastErr error

	for i := 0; i <= retries; i++ {
		text, err := attempt(ctx, prompt)
		if err == nil {
			return text, nil
		}

		lastErr = err
		log.Printf("LLM call failed on attempt %d/%d: %v", i+1, retries+1, err)

		if i < retries {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %w", ErrLLMFailure, ctx.Err())
			}
			backoff *= 2
		}
	}

	return "", fmt.Errorf("%w: %w", ErrLLMFailure, lastErr)
}
