package core

import (
	"context"
	"errors"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
)

const (
	defaultRetryMaxAttempts    = 3
	defaultRetryInitialBackoff = 100 * time.Millisecond
	defaultRetryMaxBackoff     = 2 * time.Second
)

// BackoffScheduler decides the wait before the next attempt.
type BackoffScheduler interface {
	NextDelay(attempt int) time.Duration
}

type ExponentialBackoffScheduler struct {
	Initial time.Duration
	Max     time.Duration
}

func (s ExponentialBackoffScheduler) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	initial := s.Initial
	if initial <= 0 {
		initial = defaultRetryInitialBackoff
	}
	max := s.Max
	if max <= 0 {
		max = defaultRetryMaxBackoff
	}

	delay := initial
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}

// ErrorClassifier reports whether a write failure is worth retrying.
type ErrorClassifier func(err error) bool

// IsForeignKeyViolation is the default classifier for writes racing against
// referential integrity, such as a price inserted moments after its product.
// It checks the sqlite driver's structured constraint codes first and falls
// back to message matching for backends that only expose text.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key")
}

// RetryPolicy retries a write whose failure the classifier marks as
// transient. Any write vulnerable to ordering races can opt in by running
// through a policy value.
type RetryPolicy struct {
	MaxAttempts int
	Scheduler   BackoffScheduler
	Classifier  ErrorClassifier
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: defaultRetryMaxAttempts,
		Scheduler:   ExponentialBackoffScheduler{},
		Classifier:  IsForeignKeyViolation,
	}
}

// Run executes op up to MaxAttempts times. Failures the classifier rejects
// surface immediately; exhausting every attempt yields a retry-exhausted
// error naming the attempt count and the last cause.
func (p RetryPolicy) Run(ctx context.Context, op func(ctx context.Context) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = defaultRetryMaxAttempts
	}
	classifier := p.Classifier
	if classifier == nil {
		classifier = IsForeignKeyViolation
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !classifier(err) {
			return err
		}
		if attempt == maxAttempts {
			break
		}

		delay := defaultRetryInitialBackoff
		if p.Scheduler != nil {
			delay = p.Scheduler.NextDelay(attempt)
		}
		if waitErr := waitWithContext(ctx, delay); waitErr != nil {
			return waitErr
		}
	}
	return NewRetryExhaustedError(maxAttempts, lastErr)
}

func waitWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
