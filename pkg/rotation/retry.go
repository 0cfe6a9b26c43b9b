package rotation

import (
	"context"
	"time"
)

// retryTransient runs fn, retrying only transient failures with exponential
// backoff. Structural and race errors propagate immediately; a transient
// failure that survives all attempts surfaces as ErrTransientFailure.
func retryTransient(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return Wrap(ErrTransientFailure, ctx.Err())
		case <-time.After(backoff << i):
		}
	}
	return Wrap(ErrTransientFailure, err)
}
