package async

import (
	"fmt"
	"time"
)

// WaitForEvents lets the UI goroutine work through its queue using the
// profile's attempt count and sleep.
func (b *Bridge) WaitForEvents() {
	b.WaitForEventsN(b.profile.DrainAttempts)
}

// WaitForEventsN posts attempts marker runnables one after another, waiting
// for each to run and sleeping DrainSleep after it. Work queued by work
// queued by work... is only covered up to roughly attempts levels deep.
// It returns early, silently, if the loop stops.
func (b *Bridge) WaitForEventsN(attempts int) {
	if b.loop.IsLoopThread() {
		b.logger.Debug("drain requested on the ui goroutine, skipping")
		return
	}
	start := time.Now()
	defer func() { b.metrics.DrainObserved(time.Since(start)) }()

	for i := 0; i < attempts; i++ {
		done := make(chan struct{})
		if !b.loop.Post(func() { close(done) }) {
			return
		}
		select {
		case <-done:
		case <-b.loop.Done():
			return
		}
		sleep(b.profile.DrainSleep)
	}
}

// WaitForEventsTimeout is WaitForEventsN with each marker bounded by
// timeout. A marker that does not run in time yields an ErrTimeout.
func (b *Bridge) WaitForEventsTimeout(attempts int, timeout time.Duration) error {
	if b.loop.IsLoopThread() {
		b.logger.Debug("drain requested on the ui goroutine, skipping")
		return nil
	}
	start := time.Now()
	defer func() { b.metrics.DrainObserved(time.Since(start)) }()

	for i := 0; i < attempts; i++ {
		if err := b.marker(i, attempts, timeout); err != nil {
			return err
		}
		sleep(b.profile.DrainSleep)
	}
	return nil
}

func (b *Bridge) marker(i, attempts int, timeout time.Duration) error {
	done := make(chan struct{})
	if !b.loop.Post(func() { close(done) }) {
		return fmt.Errorf("drain attempt %d/%d: %w", i+1, attempts, ErrLoopStopped)
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-b.loop.Done():
		return fmt.Errorf("drain attempt %d/%d: %w", i+1, attempts, ErrLoopStopped)
	case <-timer.C:
		return fmt.Errorf("drain attempt %d/%d after %s: %w", i+1, attempts, timeout, ErrTimeout)
	}
}

func sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
