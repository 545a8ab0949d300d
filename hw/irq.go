package hw

import (
	"sync"

	"micro65/emu/log"
)

// KeyboardDevice tags interrupts raised by the keyboard.
const KeyboardDevice = "keyboard"

// Interrupt is one pending interrupt request.
type Interrupt struct {
	IRQ      uint8
	Priority int
	Device   string
	Data     uint8
}

// interruptSink is the CPU-side receiver for arbitrated interrupts.
type interruptSink interface {
	SetPendingInterrupt(irq *Interrupt)
}

// InterruptController buffers interrupts raised during a tick and, on its
// own tick, delivers the highest-priority one to the CPU. Ties go to the
// first arrival. Accept may be called from any goroutine; delivery happens
// on the clock goroutine.
type InterruptController struct {
	mu      sync.Mutex
	waiting []Interrupt

	cpu interruptSink
}

func NewInterruptController(cpu interruptSink) *InterruptController {
	return &InterruptController{cpu: cpu}
}

// Accept buffers irq until the next controller tick.
func (ic *InterruptController) Accept(irq Interrupt) {
	ic.mu.Lock()
	ic.waiting = append(ic.waiting, irq)
	ic.mu.Unlock()

	log.ModIRQ.DebugZ("interrupt accepted").
		String("device", irq.Device).
		Uint8("irq", irq.IRQ).
		Int("priority", irq.Priority).
		Hex8("data", irq.Data).
		End()
}

// Clear drops all buffered interrupts.
func (ic *InterruptController) Clear() {
	ic.mu.Lock()
	ic.waiting = ic.waiting[:0]
	ic.mu.Unlock()
}

// Tick arbitrates the buffer: the interrupt with the strictly greatest
// priority wins and is latched into the CPU, the rest are discarded. A
// stale pending interrupt in the CPU is left alone when nothing arrived;
// the CPU clears its own slot at InterruptCheck.
func (ic *InterruptController) Tick() {
	ic.mu.Lock()
	var winner *Interrupt
	for i := range ic.waiting {
		if winner == nil || ic.waiting[i].Priority > winner.Priority {
			winner = &ic.waiting[i]
		}
	}
	if winner != nil {
		w := *winner
		winner = &w
	}
	ic.waiting = ic.waiting[:0]
	ic.mu.Unlock()

	if winner == nil {
		return
	}

	log.ModIRQ.DebugZ("interrupt delivered").
		String("device", winner.Device).
		Int("priority", winner.Priority).
		End()
	ic.cpu.SetPendingInterrupt(winner)
}
