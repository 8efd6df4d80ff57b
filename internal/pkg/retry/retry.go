// Package retry re-runs an operation with exponential backoff and jitter.
package retry

import (
	"context"
	"math/rand"
	"time"
)

type Policy struct {
	// MaxRetries is the number of attempts after the first; 0 runs fn once.
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Jitter         bool
}

func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:     2,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		Jitter:         true,
	}
}

// Do calls fn until retryable reports false for its result or the attempts
// run out. The last result is returned either way. A cancelled context stops
// the wait between attempts and returns the last result with ctx.Err().
func Do[T any](ctx context.Context, p Policy, retryable func(T, error) bool, fn func(context.Context) (T, error)) (T, error) {
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = 100 * time.Millisecond
	}
	if p.MaxBackoff < p.InitialBackoff {
		p.MaxBackoff = p.InitialBackoff
	}

	backoff := p.InitialBackoff
	result, err := fn(ctx)
	for attempt := 1; attempt <= p.MaxRetries && retryable(result, err); attempt++ {
		wait := backoff
		if p.Jitter {
			wait += time.Duration(rand.Int63n(int64(backoff)))
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
		if backoff > p.MaxBackoff {
			backoff = p.MaxBackoff
		}
		result, err = fn(ctx)
	}
	return result, err
}
