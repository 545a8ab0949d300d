package hw

import (
	"bytes"
	"io"

	"micro65/emu/log"
	"micro65/hw/ascii"
)

// Stage is one of the five pipeline stages. The CPU is in exactly one stage
// between ticks.
type Stage uint8

const (
	Fetch Stage = iota
	Decode
	Execute
	Writeback
	InterruptCheck
)

var stageNames = [...]string{"fetch", "decode", "execute", "writeback", "intcheck"}

func (s Stage) String() string { return stageNames[s] }

// Runner is the view of the System the CPU needs: whether to consume ticks
// at all, and how to halt the machine (BRK, keyboard quit).
type Runner interface {
	Running() bool
	Stop()
}

// microOp is the per-instruction execute function. It runs once per Execute
// tick and returns true while it needs more ticks. Any error abandons the
// instruction.
type microOp func(c *CPU) (more bool, err error)

// CPU is a pipelined state machine over the five stages. Multi-cycle
// operations never block: everything that spans ticks is encoded in the
// pulse counters and scratch registers below and resumed on the next tick.
type CPU struct {
	mmu *MMU
	sys Runner

	// data registers
	A, X, Y uint8
	Z, C    bool

	// control registers
	PC      uint16
	IR      Mnemonic
	opcode  uint8
	operand [2]uint8

	// pipeline registers
	stage      Stage
	pulse      int
	fetchCount int
	curFetch   int
	fetchPulse int

	// deferred write, committed by the Writeback stage
	wbAddr    uint16
	wbVal     uint8
	wbAddrSet bool
	wbValSet  bool

	exec    microOp
	pending *Interrupt

	// ADC includes the carry flag only when configured to.
	useCarry bool

	// micro-op scratch
	strAddr uint16 // SYS string print cursor
	opPC    uint16 // address the current opcode was fetched from
	opSize  int    // operand byte count of the current instruction

	out    bytes.Buffer // program output, printed by the host on stop
	tracer *tracer
	ticks  uint64
}

func NewCPU(mmu *MMU, sys Runner, useCarry bool) *CPU {
	return &CPU{
		mmu:      mmu,
		sys:      sys,
		useCarry: useCarry,
	}
}

// SetTraceOutput enables the per-instruction execution trace.
func (c *CPU) SetTraceOutput(w io.Writer) {
	c.tracer = &tracer{w: w}
}

// SetPendingInterrupt latches irq for service at the next InterruptCheck
// stage. The controller owns the arbitration; the CPU holds at most one.
func (c *CPU) SetPendingInterrupt(irq *Interrupt) {
	c.pending = irq
}

// Output returns everything the program printed through SYS so far.
func (c *CPU) Output() string { return c.out.String() }

// Ticks returns how many ticks the CPU has consumed while running.
func (c *CPU) Ticks() uint64 { return c.ticks }

// Stage returns the current pipeline stage.
func (c *CPU) Stage() Stage { return c.stage }

// Tick advances the pipeline by one pulse. While the system is stopped or a
// program is still loading, ticks are no-ops.
func (c *CPU) Tick() {
	if !c.sys.Running() || c.mmu.Loading() {
		return
	}
	c.ticks++

	if err := c.step(); err != nil {
		log.ModCPU.ErrorZ("instruction abandoned").
			Hex16("pc", c.PC).
			Hex8("opcode", c.opcode).
			Stringer("stage", c.stage).
			Error("err", err).
			End()
		c.abandon()
	}
}

func (c *CPU) step() error {
	// Operand-fetch stall: two ticks per operand byte. The pipeline holds
	// its stage until all bytes are in.
	if c.fetchCount > 0 && c.curFetch < c.fetchCount {
		return c.fetchOperand()
	}

	switch c.stage {
	case Fetch:
		return c.fetch()
	case Decode:
		return c.decode()
	case Execute:
		return c.execute()
	case Writeback:
		c.writeback()
	case InterruptCheck:
		c.interruptCheck()
	}
	return nil
}

func (c *CPU) fetchOperand() error {
	if c.fetchPulse == 0 {
		c.mmu.TriggerRead(c.PC)
		c.fetchPulse = 1
		return nil
	}

	b, err := c.mmu.MDR()
	if err != nil {
		return err
	}
	c.operand[c.curFetch] = b
	c.PC++
	c.curFetch++
	c.fetchPulse = 0
	if c.curFetch == c.fetchCount {
		c.fetchCount = 0
		c.curFetch = 0
	}
	return nil
}

func (c *CPU) fetch() error {
	switch c.pulse {
	case 0:
		c.opPC = c.PC
		c.mmu.TriggerRead(c.PC)
		c.pulse++
	case 1:
		b, err := c.mmu.MDR()
		if err != nil {
			return err
		}
		c.opcode = b
		c.PC++
		c.advance(Decode)
	}
	return nil
}

func (c *CPU) decode() error {
	def := optab[c.opcode]
	if def == nil {
		return UnknownOpcodeError{Opcode: c.opcode}
	}

	c.fetchCount = def.size(c)
	c.curFetch = 0
	c.opSize = c.fetchCount
	c.IR = def.mnem
	c.exec = def.exec

	log.ModCPU.DebugZ("decoded").
		Hex16("pc", c.opPC).
		Hex8("opcode", c.opcode).
		Stringer("instr", c.IR).
		Int("operands", c.fetchCount).
		End()

	c.advance(Execute)
	return nil
}

func (c *CPU) execute() error {
	more, err := c.exec(c)
	if err != nil {
		return err
	}
	c.pulse++

	if more {
		return nil
	}
	if c.wbAddrSet && c.wbValSet {
		c.advance(Writeback)
	} else {
		c.advance(InterruptCheck)
	}
	return nil
}

func (c *CPU) writeback() {
	if c.wbAddrSet && c.wbValSet {
		c.mmu.WriteImmediate(c.wbAddr, c.wbVal)
		c.clearWriteback()
	}
	c.advance(InterruptCheck)
}

func (c *CPU) interruptCheck() {
	if irq := c.pending; irq != nil {
		c.pending = nil

		if irq.Device == KeyboardDevice {
			if r, err := ascii.Decode(irq.Data); err == nil && (r == 'q' || r == 'Q') {
				log.ModCPU.InfoZ("quit key, stopping").End()
				c.sys.Stop()
				c.advance(Fetch)
				return
			}
		}

		log.ModCPU.DebugZ("interrupt serviced").
			String("device", irq.Device).
			Uint8("irq", irq.IRQ).
			Hex8("data", irq.Data).
			End()
	}

	if c.tracer != nil {
		c.tracer.write(c)
	}
	c.advance(Fetch)
}

func (c *CPU) advance(s Stage) {
	c.stage = s
	c.pulse = 0
}

// abandon resets the pipeline to Fetch, dropping the current instruction.
// Execution resumes at the next tick; there is no exception vector.
func (c *CPU) abandon() {
	c.advance(Fetch)
	c.fetchCount = 0
	c.curFetch = 0
	c.fetchPulse = 0
	c.exec = nil
	c.clearWriteback()
}

// setWriteback latches a deferred write for the Writeback stage. A write of
// value 0 to address 0 is as valid as any other; only the explicit flags
// decide whether Writeback runs.
func (c *CPU) setWriteback(addr uint16, val uint8) {
	c.wbAddr = addr
	c.wbVal = val
	c.wbAddrSet = true
	c.wbValSet = true
}

func (c *CPU) clearWriteback() {
	c.wbAddrSet = false
	c.wbValSet = false
}

// absOperand forms the 16-bit little-endian address from the operand bytes.
func (c *CPU) absOperand() uint16 {
	return uint16(c.operand[1])<<8 | uint16(c.operand[0])
}

func (c *CPU) Reset() {
	c.A, c.X, c.Y = 0, 0, 0
	c.Z, c.C = false, false
	c.PC = 0
	c.IR = 0
	c.opcode = 0
	c.operand = [2]uint8{}
	c.pending = nil
	c.strAddr = 0
	c.opPC = 0
	c.out.Reset()
	c.ticks = 0
	c.abandon()
}
