package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
)

func TestRetryPolicy_ExhaustsThreeAttemptsOnForeignKeyError(t *testing.T) {
	attempts := 0
	policy := RetryPolicy{
		MaxAttempts: 3,
		Scheduler:   ExponentialBackoffScheduler{Initial: time.Millisecond, Max: time.Millisecond},
	}

	err := policy.Run(context.Background(), func(context.Context) error {
		attempts++
		return errors.New("insert prices: FOREIGN KEY constraint failed")
	})
	if attempts != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", attempts)
	}
	if !IsRetryExhausted(err) {
		t.Fatalf("expected retry exhausted error, got %v", err)
	}
	if !strings.Contains(err.Error(), "3") {
		t.Fatalf("expected error to name the attempt count, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
		t.Fatalf("expected error to carry the last cause, got %q", err.Error())
	}
}

func TestRetryPolicy_NonRetryableFailsAfterOneAttempt(t *testing.T) {
	attempts := 0
	policy := DefaultRetryPolicy()
	policy.Scheduler = ExponentialBackoffScheduler{Initial: time.Millisecond, Max: time.Millisecond}

	cause := errors.New("UNIQUE constraint failed: prices.id")
	err := policy.Run(context.Background(), func(context.Context) error {
		attempts++
		return cause
	})
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected the original cause, got %v", err)
	}
	if IsRetryExhausted(err) {
		t.Fatalf("non-retryable failure must not be reported as exhaustion")
	}
}

func TestRetryPolicy_SucceedsAfterTransientFailure(t *testing.T) {
	attempts := 0
	policy := RetryPolicy{
		MaxAttempts: 3,
		Scheduler:   ExponentialBackoffScheduler{Initial: time.Millisecond, Max: time.Millisecond},
	}

	err := policy.Run(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 2 {
			return errors.New("foreign key constraint")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestIsForeignKeyViolation_StructuredSQLiteCode(t *testing.T) {
	driverErr := sqlite3.Error{
		Code:         sqlite3.ErrConstraint,
		ExtendedCode: sqlite3.ErrConstraintForeignKey,
	}
	if !IsForeignKeyViolation(driverErr) {
		t.Fatalf("expected structured sqlite foreign key code to classify as retryable")
	}
	if !IsForeignKeyViolation(errors.New(`insert or update violates foreign key constraint "prices_product_id_fkey"`)) {
		t.Fatalf("expected message fallback to classify as retryable")
	}
	if IsForeignKeyViolation(errors.New("connection refused")) {
		t.Fatalf("unrelated failure must not classify as retryable")
	}
}

func TestExponentialBackoffScheduler_CapsAtMax(t *testing.T) {
	scheduler := ExponentialBackoffScheduler{Initial: 100 * time.Millisecond, Max: 300 * time.Millisecond}
	if got := scheduler.NextDelay(1); got != 100*time.Millisecond {
		t.Fatalf("unexpected first delay: %v", got)
	}
	if got := scheduler.NextDelay(2); got != 200*time.Millisecond {
		t.Fatalf("unexpected second delay: %v", got)
	}
	if got := scheduler.NextDelay(5); got != 300*time.Millisecond {
		t.Fatalf("expected delay capped at max, got %v", got)
	}
}
