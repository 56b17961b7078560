package player

import (
	"sync"
	"time"
)

// Ticker is the subset of *time.Ticker the player needs
type Ticker interface {
	C() <-chan time.Time
	Stop()
	Reset(d time.Duration)
}

type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// RealClock is backed by the time package
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) NewTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time   { return r.t.C }
func (r realTicker) Stop()                 { r.t.Stop() }
func (r realTicker) Reset(d time.Duration) { r.t.Reset(d) }

// ManualClock only ticks when told to. Now advances with every Fire.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{clock: c, ch: make(chan time.Time), period: d, active: true}
	c.tickers = append(c.tickers, t)
	return t
}

// Fire advances the clock by one period of each active ticker and delivers a
// tick to it, blocking until the tick is received or a second passes.
// Returns how many tickers took the tick.
func (c *ManualClock) Fire() int {
	c.mu.Lock()
	var active []*manualTicker
	for _, t := range c.tickers {
		if t.active {
			active = append(active, t)
		}
	}
	if len(active) > 0 {
		c.now = c.now.Add(active[0].period)
	}
	now := c.now
	c.mu.Unlock()

	delivered := 0
	for _, t := range active {
		select {
		case t.ch <- now:
			delivered++
		case <-time.After(time.Second):
		}
	}
	return delivered
}

// ActiveTickers counts tickers that are currently running
func (c *ManualClock) ActiveTickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tickers {
		if t.active {
			n++
		}
	}
	return n
}

type manualTicker struct {
	clock  *ManualClock
	ch     chan time.Time
	period time.Duration
	active bool // guarded by clock.mu
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }

func (t *manualTicker) Stop() {
	t.clock.mu.Lock()
	t.active = false
	t.clock.mu.Unlock()
}

func (t *manualTicker) Reset(d time.Duration) {
	t.clock.mu.Lock()
	t.active = true
	t.period = d
	t.clock.mu.Unlock()
}
