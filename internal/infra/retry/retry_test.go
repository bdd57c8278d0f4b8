package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIsRetryable(t *testing.T) {
	retryable := []int{429, 500, 502, 503, 504}
	for _, code := range retryable {
		if !IsRetryable(&HTTPError{StatusCode: code}) {
			t.Fatalf("status %d should be retryable", code)
		}
	}

	for _, code := range []int{400, 401, 403, 404} {
		if IsRetryable(&HTTPError{StatusCode: code}) {
			t.Fatalf("status %d must not be retryable", code)
		}
	}

	if IsRetryable(errors.New("plain error")) {
		t.Fatalf("non-HTTP errors must not be retryable")
	}
	if IsRetryable(nil) {
		t.Fatalf("nil must not be retryable")
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d := ParseRetryAfter("3"); d != 3*time.Second {
		t.Fatalf("expected 3s, got %v", d)
	}
	if d := ParseRetryAfter(""); d != 0 {
		t.Fatalf("expected 0 for empty header, got %v", d)
	}
	if d := ParseRetryAfter("garbage"); d != 0 {
		t.Fatalf("expected 0 for unparseable header, got %v", d)
	}
}

func TestDo_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Options{MaxRetries: 5, BaseDelay: time.Millisecond}, func() error {
		calls++
		return &HTTPError{StatusCode: 401}
	})

	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != 401 {
		t.Fatalf("expected the 401 back, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Options{MaxRetries: 3, BaseDelay: time.Millisecond}, func() error {
		calls++
		if calls < 3 {
			return &HTTPError{StatusCode: 503}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ExhaustsRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Options{MaxRetries: 2, BaseDelay: time.Millisecond}, func() error {
		calls++
		return &HTTPError{StatusCode: 500}
	})
	if err == nil {
		t.Fatalf("expected the last error after exhausting retries")
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls (1 + 2 retries), got %d", calls)
	}
}

func TestDo_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, Options{MaxRetries: 2, BaseDelay: time.Millisecond}, func() error {
		t.Fatalf("fn must not run with a cancelled context")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
