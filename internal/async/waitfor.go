package async

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Condition is polled by WaitFor. An error counts as "not yet" and is kept
// as the last error for the timeout report, except a *DelayedError or
// ErrLoopStopped, which end the wait at once.
type Condition func() (bool, error)

// WaitFor polls cond every interval until it reports true, ctx ends, or
// timeout elapses. The condition is evaluated once more at the deadline.
func WaitFor(ctx context.Context, timeout, interval time.Duration, cond Condition) error {
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		ok, err := cond()
		if err == nil && ok {
			return nil
		}
		if err != nil {
			var delayed *DelayedError
			if errors.As(err, &delayed) || errors.Is(err, ErrLoopStopped) {
				return err
			}
			lastErr = err
		}

		if !time.Now().Before(deadline) {
			if lastErr != nil {
				return fmt.Errorf("condition not met after %s (last error: %v): %w", timeout, lastErr, ErrTimeout)
			}
			return fmt.Errorf("condition not met after %s: %w", timeout, ErrTimeout)
		}

		wait := interval
		if remaining := time.Until(deadline); remaining < wait {
			wait = remaining
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// WaitForUI is WaitFor with cond evaluated on the UI goroutine. Each
// evaluation is bounded by the remaining time.
func (b *Bridge) WaitForUI(ctx context.Context, timeout time.Duration, cond Condition) error {
	deadline := time.Now().Add(timeout)
	return WaitFor(ctx, timeout, b.profile.PollInterval, func() (bool, error) {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			remaining = b.profile.PollInterval
		}
		t, err := RunOnUI(b, func() (bool, error) { return cond() }, Propagate(false))
		if err != nil {
			return false, err
		}
		return t.GetTimeout(remaining)
	})
}
