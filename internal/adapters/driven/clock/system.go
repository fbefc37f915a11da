// Package clock provides the wall-clock implementation of the driven
// Clock port. Tests substitute a manually driven fake.
package clock

import (
	"time"

	"github.com/custodia-labs/papyr/internal/core/ports/driven"
)

// Ensure System implements the interface.
var _ driven.Clock = (*System)(nil)

// System is the wall-clock driven.Clock backed by the time package.
type System struct{}

// NewSystem creates a system clock.
func NewSystem() *System {
	return &System{}
}

// Now returns the current time.
func (*System) Now() time.Time {
	return time.Now()
}

// AfterFunc runs fn after d elapses.
func (*System) AfterFunc(d time.Duration, fn func()) driven.Timer {
	return time.AfterFunc(d, fn)
}
