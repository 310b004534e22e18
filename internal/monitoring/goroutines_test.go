package monitoring

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mitchelldurbincs/gasgrid/internal/testutil"
)

func TestGoroutineMonitor_Check(t *testing.T) {
	clock := testutil.NewFakeClock()
	count := 10
	gm := NewGoroutineMonitor(testutil.NopLogger(),
		WithClock(clock),
		WithCounter(func() int { return count }),
		WithAlertThreshold(20),
	)

	count = 15
	assert.False(t, gm.Check())
	assert.Equal(t, GoroutineMetrics{Current: 15, Baseline: 10, Peak: 15, Growth: 5}, gm.GetMetrics())

	count = 25
	assert.True(t, gm.Check())
	assert.False(t, gm.Check(), "alerts are rate limited")

	clock.Advance(defaultAlertCooldown + time.Second)
	assert.True(t, gm.Check())

	count = 12
	gm.Check()
	m := gm.GetMetrics()
	assert.Equal(t, 12, m.Current)
	assert.Equal(t, 25, m.Peak, "the peak is kept")
}

func TestGoroutineMonitor_StartStop(t *testing.T) {
	clock := testutil.NewFakeClock()
	var samples atomic.Int32
	gm := NewGoroutineMonitor(testutil.NopLogger(),
		WithClock(clock),
		WithInterval(time.Second),
		WithCounter(func() int {
			samples.Add(1)
			return 3
		}),
	)
	gm.Start()
	defer gm.Stop()

	assert.NoError(t, clock.BlockUntilContext(t.Context(), 1))
	clock.Advance(time.Second)
	assert.Eventually(t, func() bool { return samples.Load() >= 2 }, time.Second, 5*time.Millisecond)

	gm.Stop()
	gm.Stop()
}
