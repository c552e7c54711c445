package session

import (
	"context"
	"time"
)

// Clock times a session: the report timestamps and the fixed waits between
// phases. Sleep returns early with ctx's error when ctx is done.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type wallClock struct{}

func (wallClock) Now() time.Time {
	return time.Now()
}

func (wallClock) Sleep(ctx context.Context, d time.Duration) error {
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

// SystemClock is used by sequencers built without WithClock. Correlation
// polling is paced separately and always runs on wall time.
var SystemClock Clock = wallClock{}
