package retry

import (
	"context"
	"time"
)

// Do runs fn up to attempts times, sleeping between failures with
// exponential backoff starting at baseDelay. It returns nil on the
// first success, the last error once attempts are exhausted, or the
// context error if the caller gives up while waiting.
func Do(ctx context.Context, attempts int, baseDelay time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}

		delay := baseDelay << uint(attempt)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
