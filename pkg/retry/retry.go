package retry

import (
	"context"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

// Profile bounds a retry loop: exponential backoff between attempts, capped
// interval, fixed attempt budget.
type Profile struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
	MaxAttempts     uint64
}

// Store is the profile for persistence operations. Exhaustion is fatal for
// the request: nothing can substitute for durable state.
func Store() Profile {
	return Profile{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		MaxElapsedTime:  10 * time.Second,
		MaxAttempts:     3,
	}
}

// Generation is the profile for content-generation calls. The budget is kept
// small to bound end-to-end latency; callers substitute fallback content on
// exhaustion instead of failing.
func Generation() Profile {
	return Profile{
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		MaxElapsedTime:  20 * time.Second,
		MaxAttempts:     2,
	}
}

// Do runs op under the profile, sleeping with exponential backoff between
// attempts. It returns the last error once the attempt budget is exhausted or
// the context is done. Errors wrapped with Permanent are returned immediately.
func Do(ctx context.Context, p Profile, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialInterval
	bo.MaxInterval = p.MaxInterval
	bo.MaxElapsedTime = p.MaxElapsedTime

	retries := uint64(0)
	if p.MaxAttempts > 0 {
		retries = p.MaxAttempts - 1
	}

	return backoff.Retry(op, backoff.WithMaxRetries(backoff.WithContext(bo, ctx), retries))
}

// Permanent marks err as non-retryable so Do returns it without further
// attempts. Validation and not-found errors go through here.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
