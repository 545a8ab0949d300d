package hw

import (
	"context"
	"time"

	"micro65/emu/log"
)

// Ticker is a component advanced by the clock.
type Ticker interface {
	Tick()
}

// Clock drives the machine. Each pulse bumps the tick counter, runs the
// housekeeping hook, then advances every attached listener in registration
// order. That order is the scheduling contract: with CPU before Memory
// before InterruptController, a memory operation triggered on tick N is
// visible to the CPU on tick N+1, and an interrupt accepted during tick N
// is the CPU's pending interrupt for tick N+1.
type Clock struct {
	period    time.Duration
	ticks     uint64
	listeners []Ticker
	hook      func(ticks uint64)
}

func NewClock(period time.Duration) *Clock {
	return &Clock{period: period}
}

// Attach appends l to the listener chain. Attachment order is fixed at boot
// and never changes afterwards.
func (c *Clock) Attach(l Ticker) {
	c.listeners = append(c.listeners, l)
}

// OnPulse installs the housekeeping hook, run on every pulse before the
// listeners.
func (c *Clock) OnPulse(hook func(ticks uint64)) {
	c.hook = hook
}

// Ticks returns the number of pulses fired since boot.
func (c *Clock) Ticks() uint64 { return c.ticks }

// Step fires a single pulse. Every listener's Tick runs to completion
// before Step returns; all suspension lives in component state, never
// inside a call.
func (c *Clock) Step() {
	c.ticks++
	if c.hook != nil {
		c.hook(c.ticks)
	}
	for _, l := range c.listeners {
		l.Tick()
	}
}

// Run fires pulses at the configured period until ctx is cancelled. An
// in-flight pulse always completes.
func (c *Clock) Run(ctx context.Context) error {
	log.ModClock.InfoZ("clock started").
		Duration("period", c.period).
		Int("listeners", len(c.listeners)).
		End()

	tk := time.NewTicker(c.period)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			log.ModClock.InfoZ("clock stopped").Uint64("ticks", c.ticks).End()
			return nil
		case <-tk.C:
			c.Step()
		}
	}
}
