// Package clock provides the time source and the periodic tick used by
// live views.
package clock

import (
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Clock returns the current time.
type Clock func() time.Time

// System is the wall clock.
func System() time.Time { return time.Now() }

// Ticker invokes a callback on a fixed interval until stopped. Once Stop
// returns, the callback is never invoked again.
type Ticker struct {
	cron     *cron.Cron
	interval time.Duration
	onTick   func(time.Time)
	now      Clock
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewTicker creates a ticker. Intervals below one second are raised to one
// second.
func NewTicker(interval time.Duration, onTick func(time.Time), logger *slog.Logger) *Ticker {
	if logger == nil {
		logger = slog.Default()
	}
	if interval < time.Second {
		interval = time.Second
	}
	return &Ticker{
		cron:     cron.New(),
		interval: interval,
		onTick:   onTick,
		now:      System,
		logger:   logger,
	}
}

// WithClock overrides the time source passed to the callback.
func (t *Ticker) WithClock(now Clock) *Ticker {
	if now != nil {
		t.now = now
	}
	return t
}

// Interval returns the effective tick interval.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Start begins ticking. Calling Start on a started or stopped ticker is a
// no-op.
func (t *Ticker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started || t.stopped {
		return
	}
	t.started = true

	t.cron.Schedule(cron.Every(t.interval), cron.FuncJob(t.tick))
	t.cron.Start()
	t.logger.Debug("clock ticker started", "interval", t.interval.String())
}

func (t *Ticker) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.onTick(t.now())
}

// Stop cancels the ticker and waits for an in-progress callback to finish.
func (t *Ticker) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	wasStarted := t.started
	t.mu.Unlock()

	if wasStarted {
		<-t.cron.Stop().Done()
	}
	t.logger.Debug("clock ticker stopped")
}
