package retry

import (
	"context"
	"time"
)

// SleepFunc pauses between attempts. It returns early with the context error
// when the context is cancelled mid-pause.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy bounds a retried operation: a fixed number of attempts with a fixed
// delay in between. Sleep is injectable so tests run without real time.
type Policy struct {
	Attempts int
	Delay    time.Duration
	Sleep    SleepFunc
}

// Do runs fn until it succeeds or the attempts are exhausted, returning the
// last error. The context is checked before every attempt.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = WaitSleep
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if i < attempts-1 && p.Delay > 0 {
			if err := sleep(ctx, p.Delay); err != nil {
				return lastErr
			}
		}
	}
	return lastErr
}

// WaitSleep is the production SleepFunc backed by a timer.
func WaitSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
