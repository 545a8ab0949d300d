package hw

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// sinkCPU records delivered interrupts.
type sinkCPU struct {
	got []*Interrupt
}

func (s *sinkCPU) SetPendingInterrupt(irq *Interrupt) {
	s.got = append(s.got, irq)
}

func TestArbitrationPicksHighestPriority(t *testing.T) {
	sink := &sinkCPU{}
	ic := NewInterruptController(sink)

	ic.Accept(Interrupt{IRQ: 1, Priority: 1, Device: "keyboard", Data: 'a'})
	ic.Accept(Interrupt{IRQ: 2, Priority: 5, Device: "timer"})
	ic.Accept(Interrupt{IRQ: 3, Priority: 3, Device: "disk"})
	ic.Tick()

	want := []*Interrupt{{IRQ: 2, Priority: 5, Device: "timer"}}
	if diff := cmp.Diff(want, sink.got); diff != "" {
		t.Errorf("delivered interrupts mismatch (-want +got):\n%s", diff)
	}
}

func TestArbitrationTieGoesToFirstArrival(t *testing.T) {
	sink := &sinkCPU{}
	ic := NewInterruptController(sink)

	ic.Accept(Interrupt{IRQ: 1, Priority: 2, Device: "first"})
	ic.Accept(Interrupt{IRQ: 2, Priority: 2, Device: "second"})
	ic.Tick()

	if len(sink.got) != 1 || sink.got[0].Device != "first" {
		t.Errorf("got %+v, want the first arrival", sink.got)
	}
}

// With an empty buffer nothing is delivered, so a stale pending interrupt
// in the CPU is not clobbered.
func TestNoDeliveryWhenIdle(t *testing.T) {
	sink := &sinkCPU{}
	ic := NewInterruptController(sink)

	ic.Tick()
	if len(sink.got) != 0 {
		t.Errorf("delivered %d interrupts from an empty buffer", len(sink.got))
	}
}

func TestBufferEmptiesEveryTick(t *testing.T) {
	sink := &sinkCPU{}
	ic := NewInterruptController(sink)

	ic.Accept(Interrupt{IRQ: 1, Priority: 1, Device: "keyboard"})
	ic.Accept(Interrupt{IRQ: 1, Priority: 0, Device: "keyboard"})
	ic.Tick()
	ic.Tick()

	// Losers are discarded with the round, not delivered later.
	if len(sink.got) != 1 {
		t.Errorf("got %d deliveries, want 1", len(sink.got))
	}
}

func TestClear(t *testing.T) {
	sink := &sinkCPU{}
	ic := NewInterruptController(sink)

	ic.Accept(Interrupt{IRQ: 1, Priority: 1, Device: "keyboard"})
	ic.Clear()
	ic.Tick()

	if len(sink.got) != 0 {
		t.Errorf("delivered %d interrupts after Clear", len(sink.got))
	}
}
