package emu

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"micro65/emu/log"
	"micro65/hw"
	"micro65/prg"
)

// System owns every hardware component for its lifetime and wires them
// together. Components hold non-owning references to each other; nothing
// destroys anything else.
type System struct {
	Clock    *hw.Clock
	CPU      *hw.CPU
	Mem      *hw.Memory
	MMU      *hw.MMU
	IRQ      *hw.InterruptController
	Keyboard *hw.Keyboard // nil unless a terminal is attached

	running atomic.Bool
	cancel  context.CancelFunc
	pulses  atomic.Uint64

	prog prg.Program
}

// New builds a stopped machine.
func New(cfg Config) *System {
	sys := &System{}

	mem := hw.NewMemory()
	mmu := hw.NewMMU(mem)
	cpu := hw.NewCPU(mmu, sys, cfg.Emulation.UseCarry)
	irq := hw.NewInterruptController(cpu)
	clk := hw.NewClock(cfg.Clock.Period())

	clk.OnPulse(sys.hardwareTick)

	// Attachment order is the scheduling contract: CPU, then Memory, then
	// the interrupt controller.
	clk.Attach(cpu)
	clk.Attach(mem)
	clk.Attach(irq)

	sys.Clock = clk
	sys.CPU = cpu
	sys.Mem = mem
	sys.MMU = mmu
	sys.IRQ = irq
	return sys
}

// AttachKeyboard plugs the console keyboard in. Run starts it.
func (s *System) AttachKeyboard(kb *hw.Keyboard) {
	s.Keyboard = kb
}

// hardwareTick is the clock housekeeping hook, run once per pulse before
// the listener chain.
func (s *System) hardwareTick(uint64) {
	s.pulses.Add(1)
}

// Pulses returns the number of clock pulses seen since boot.
func (s *System) Pulses() uint64 { return s.pulses.Load() }

// AddLogContext stamps every log line with the pulse count.
func (s *System) AddLogContext(e *log.EntryZ) {
	e.Uint64("tick", s.pulses.Load())
}

// Start resets the CPU, queues the program for loading and marks the
// machine running. The CPU idles until the MMU has drained the queue.
func (s *System) Start(p prg.Program) error {
	s.CPU.Reset()
	if err := s.MMU.SetProgram(p.Code); err != nil {
		return err
	}
	s.prog = p
	s.running.Store(true)

	log.ModEmu.InfoZ("system started").
		String("program", p.Name).
		Int("bytes", len(p.Code)).
		End()
	return nil
}

// Running reports whether ticks currently advance the CPU.
func (s *System) Running() bool {
	return s.running.Load()
}

// Stop halts the machine: the clock winds down, the keyboard goes quiet,
// buffered interrupts are dropped. The in-flight tick completes; the next
// one is a no-op.
func (s *System) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}

	log.ModEmu.InfoZ("system stopped").Uint64("pulses", s.pulses.Load()).End()

	if s.cancel != nil {
		s.cancel()
	}
	if s.Keyboard != nil {
		s.Keyboard.Silence()
	}
	s.IRQ.Clear()
}

// Run drives the clock at its configured period, and the keyboard when one
// is attached, until the machine stops or ctx is cancelled. It returns
// hw.ErrInterrupted when the user hit Ctrl-C.
func (s *System) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Clock.Run(ctx)
	})
	if s.Keyboard != nil {
		g.Go(func() error {
			return s.Keyboard.Run(ctx)
		})
	}
	return g.Wait()
}

// StepTicks advances the machine by firing n clock pulses inline, without
// the periodic timer. Tests use this.
func (s *System) StepTicks(n int) {
	for i := 0; i < n; i++ {
		s.Clock.Step()
	}
}

// RunUntilStopped steps the clock inline until the program stops itself or
// the tick budget runs out. It reports whether the machine stopped.
func (s *System) RunUntilStopped(maxTicks int) bool {
	for i := 0; i < maxTicks; i++ {
		if !s.running.Load() {
			return true
		}
		s.Clock.Step()
	}
	return !s.running.Load()
}

// Report is what the host prints once a program has stopped.
type Report struct {
	Program string
	Output  string
	Regs    prg.Registers
	Checked  bool // an oracle was present
	Passed   bool
	Expected *prg.Registers
}

// Report snapshots the stopped machine and checks it against the program's
// register oracle, when it carries one.
func (s *System) Report() Report {
	regs := prg.Registers{
		A: s.CPU.A,
		X: s.CPU.X,
		Y: s.CPU.Y,
		Z: s.CPU.Z,
		C: s.CPU.C,
	}

	r := Report{
		Program: s.prog.Name,
		Output:  s.CPU.Output(),
		Regs:    regs,
	}
	if want := s.prog.Expected; want != nil {
		r.Checked = true
		r.Passed = regs == *want
		r.Expected = want
	}
	return r
}
