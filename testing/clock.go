// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package testing

import (
	"time"
)

const (
	// LongWait is used when something should have already happened, or
	// happens quickly, but we want to make sure we don't fail the test
	// on slow machines.
	LongWait = 10 * time.Second

	// ShortWait is used when we want to make sure nothing happens.
	ShortWait = 50 * time.Millisecond
)

// ZeroTime is a fixed instant used by tests that need a stable clock.
func ZeroTime() time.Time {
	return time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
}
