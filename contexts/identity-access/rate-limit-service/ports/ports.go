package ports

import (
	"context"
	"time"
)

// Reservation reports the state of one window after an atomic
// check-and-record attempt. OldestAt is only meaningful when Count > 0.
type Reservation struct {
	Allowed  bool
	Count    int
	OldestAt time.Time
}

// WindowLog is the timestamped per-key event window. Reserve must prune
// events older than windowStart, record the attempt at now only when the
// pruned count is below cap, and do all of that atomically per key. Denied
// attempts are never recorded.
type WindowLog interface {
	Reserve(ctx context.Context, key string, windowStart, now time.Time, cap int) (Reservation, error)
}

// Observer counts in-window events without recording anything. Used by
// flood detection, which probes stricter windows over the same log.
type Observer interface {
	Count(ctx context.Context, key string, windowStart time.Time) (int, error)
}

type Clock interface {
	Now() time.Time
}
