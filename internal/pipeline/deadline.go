package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAttemptTimeout is wrapped by every TimeoutError
var ErrAttemptTimeout = errors.New("attempt timed out")

// TimeoutError is returned when a stage does not finish within its limit
type TimeoutError struct {
	Stage string
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Stage, e.Limit)
}

func (e *TimeoutError) Unwrap() error {
	return ErrAttemptTimeout
}

type outcome[T any] struct {
	value T
	err   error
}

// runWithDeadline runs fn in its own goroutine and races it against limit.
// A limit <= 0 only bounds fn by ctx. Panics in fn come back as errors.
// When ctx itself ends first, ctx.Err() is returned instead of a TimeoutError
// so callers can tell the outer budget from the per-stage one.
func runWithDeadline[T any](ctx context.Context, limit time.Duration, stage string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if limit > 0 {
		runCtx, cancel = context.WithTimeout(ctx, limit)
	}
	defer cancel()

	// buffered so an abandoned goroutine can still deliver and exit
	done := make(chan outcome[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome[T]{err: fmt.Errorf("%s panicked: %v", stage, r)}
			}
		}()
		v, err := fn(runCtx)
		done <- outcome[T]{value: v, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && errors.Is(res.err, context.DeadlineExceeded) && ctx.Err() == nil && runCtx.Err() != nil {
			return zero, &TimeoutError{Stage: stage, Limit: limit}
		}
		return res.value, res.err
	case <-runCtx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, &TimeoutError{Stage: stage, Limit: limit}
	}
}
