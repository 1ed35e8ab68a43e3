package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTicker_MinimumInterval(t *testing.T) {
	ticker := NewTicker(10*time.Millisecond, func(time.Time) {}, nil)
	assert.Equal(t, time.Second, ticker.Interval())

	ticker = NewTicker(3*time.Second, func(time.Time) {}, nil)
	assert.Equal(t, 3*time.Second, ticker.Interval())
}

func TestTicker_TicksUntilStopped(t *testing.T) {
	fixed := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	var ticks atomic.Int32
	var seen atomic.Value

	ticker := NewTicker(time.Second, func(now time.Time) {
		seen.Store(now)
		ticks.Add(1)
	}, nil).WithClock(func() time.Time { return fixed })

	ticker.Start()
	require.Eventually(t, func() bool { return ticks.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, fixed, seen.Load().(time.Time))

	ticker.Stop()
	after := ticks.Load()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, after, ticks.Load())
}

func TestTicker_StopIsIdempotent(t *testing.T) {
	ticker := NewTicker(time.Second, func(time.Time) {}, nil)
	ticker.Stop()
	ticker.Stop()

	// Start after Stop never schedules.
	ticker.Start()
	assert.False(t, ticker.started)
}
