package ports

import (
	"context"
	"time"
)

// Clock abstracts time for playback pacing so tests can run without real
// sleeps.
type Clock interface {
	Now() time.Time

	// Sleep blocks for d or until ctx is done, returning ctx.Err() in the
	// latter case.
	Sleep(ctx context.Context, d time.Duration) error
}
