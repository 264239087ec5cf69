package structurer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medreport/internal/domain"
)

// outcome is the result of one pipeline stage: either a value, or the reason the
// stage did not take its primary path together with the underlying error.
type outcome[T any] struct {
	value  T
	reason domain.FallbackReason
	err    error
}

func succeeded[T any](v T) outcome[T] {
	return outcome[T]{value: v}
}

func fellBack[T any](reason domain.FallbackReason, err error) outcome[T] {
	return outcome[T]{reason: reason, err: err}
}

func (o outcome[T]) ok() bool {
	return o.reason == domain.FallbackNone
}

// guard calls a collaborator and turns a panic into an error.
func guard[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("collaborator panic: %v", r)
		}
	}()
	return fn()
}

// reasonFor classifies a collaborator error. Timeouts and cancellations count as failures.
func reasonFor(err error) domain.FallbackReason {
	switch {
	case errors.Is(err, domain.ErrMalformedOutput):
		return domain.FallbackMalformed
	case errors.Is(err, domain.ErrNoGenerator):
		return domain.FallbackUnavailable
	default:
		return domain.FallbackFailed
	}
}

// withTimeout bounds ctx by d; a non-positive d only adds cancellation.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
