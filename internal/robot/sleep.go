package robot

import (
	"context"
	"time"
)

// Sleeper pauses the calling goroutine.
type Sleeper struct{}

func (Sleeper) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// SleepContext sleeps for d or until ctx is done.
func (Sleeper) SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
