package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCompleteWithRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	attempt := func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "ok", nil
	}

	got, err := completeWithRetry(context.Background(), attempt, "prompt", 2, time.Millisecond)
	if err != nil {
		t.Fatalf("completeWithRetry failed: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q, want ok", got)
	}
	if calls != 1 {
		t.Errorf("made %d attempts, want 1", calls)
	}
}

func TestCompleteWithRetryRecovers(t *testing.T) {
	calls := 0
	attempt := func(ctx context.Context, prompt string) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "recovered", nil
	}

	got, err := completeWithRetry(context.Background(), attempt, "prompt", 2, time.Millisecond)
	if err != nil {
		t.Fatalf("completeWithRetry failed: %v", err)
	}
	if got != "recovered" {
		t.Errorf("got %q, want recovered", got)
	}
	if calls != 3 {
		t.Errorf("made %d attempts, want 3", calls)
	}
}

func TestCompleteWithRetryExhaustsBudget(t *testing.T) {
	calls := 0
	cause := errors.New("permanent")
	attempt := func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "", cause
	}

	_, err := completeWithRetry(context.Background(), attempt, "prompt", 2, time.Millisecond)
	if !errors.Is(err, ErrLLMFailure) {
		t.Fatalf("error = %v, want ErrLLMFailure", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error does not wrap the last attempt error: %v", err)
	}
	if calls != 3 {
		t.Errorf("made %d attempts, want retries+1 = 3", calls)
	}
}

func TestCompleteWithRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	attempt := func(ctx context.Context, prompt string) (string, error) {
		calls++
		cancel()
		return "", errors.New("fails while context dies")
	}

	_, err := completeWithRetry(ctx, attempt, "prompt", 5, time.Minute)
	if !errors.Is(err, ErrLLMFailure) {
		t.Fatalf("error = %v, want ErrLLMFailure", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error does not wrap context.Canceled: %v", err)
	}
	if calls != 1 {
		t.Errorf("made %d attempts after cancellation, want 1", calls)
	}
}
