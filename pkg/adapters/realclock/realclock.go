// Package realclock implements the clock port with the system clock.
package realclock

import (
	"context"
	"time"

	"github.com/user/replaycap/pkg/ports"
)

// Clock paces playback with real timers.
type Clock struct{}

// New creates a system clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time.
func (c *Clock) Now() time.Time {
	return time.Now()
}

// Sleep blocks for d or until ctx is done.
func (c *Clock) Sleep(ctx context.Context, d time.Duration) error {
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

var _ ports.Clock = (*Clock)(nil)
