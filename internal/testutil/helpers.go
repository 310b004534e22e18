package testutil

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/gasgrid/internal/game/core"
)

// Epoch is the fixed start time of every fake clock
var Epoch = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// NewTestRNG creates a deterministic, concurrency-safe random number generator for tests
func NewTestRNG(seed int64) *core.LockedRand {
	return core.NewLockedRand(seed)
}

// NewFakeClock returns a fake clock frozen at Epoch
func NewFakeClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(Epoch)
}

// NopLogger returns a no-op logger for tests
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// AssertPanic asserts that the given function panics
func AssertPanic(t *testing.T, f func(), msgAndArgs ...interface{}) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic but none occurred: %v", msgAndArgs)
		}
	}()
	f()
}
