package walker

import (
	"context"
	"time"
)

type Pacer interface {
	Wait(ctx context.Context, d time.Duration) error
}

// SleepPacer waits on a timer and returns early when ctx is done.
type SleepPacer struct{}

func (SleepPacer) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
