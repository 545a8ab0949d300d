package hw

import (
	"testing"
	"time"
)

// testRunner stands in for the System in hardware-level tests.
type testRunner struct {
	running bool
}

func (r *testRunner) Running() bool { return r.running }
func (r *testRunner) Stop()         { r.running = false }

// rig is a fully wired machine stepped by hand.
type rig struct {
	tb  testing.TB
	mem *Memory
	mmu *MMU
	cpu *CPU
	irq *InterruptController
	clk *Clock
	run *testRunner
}

func newRig(tb testing.TB, code []uint8) *rig {
	return newRigCarry(tb, code, false)
}

func newRigCarry(tb testing.TB, code []uint8, useCarry bool) *rig {
	tb.Helper()

	mem := NewMemory()
	mmu := NewMMU(mem)
	run := &testRunner{}
	cpu := NewCPU(mmu, run, useCarry)
	irq := NewInterruptController(cpu)
	clk := NewClock(time.Millisecond)

	clk.Attach(cpu)
	clk.Attach(mem)
	clk.Attach(irq)

	if code != nil {
		if err := mmu.SetProgram(code); err != nil {
			tb.Fatalf("SetProgram: %v", err)
		}
	}
	run.running = true

	return &rig{tb: tb, mem: mem, mmu: mmu, cpu: cpu, irq: irq, clk: clk, run: run}
}

func (r *rig) step(n int) {
	for i := 0; i < n; i++ {
		r.clk.Step()
	}
}

// runToStop steps until the program stops itself, failing the test when the
// tick budget runs out first.
func (r *rig) runToStop(maxTicks int) {
	r.tb.Helper()

	for i := 0; i < maxTicks; i++ {
		if !r.run.running {
			return
		}
		r.clk.Step()
	}
	r.tb.Fatalf("still running after %d ticks (PC:$%04X stage:%s)",
		maxTicks, r.cpu.PC, r.cpu.stage)
}

// stepToStage steps until the CPU enters stage s, failing after maxTicks.
func (r *rig) stepToStage(s Stage, maxTicks int) int {
	r.tb.Helper()

	for i := 1; i <= maxTicks; i++ {
		r.clk.Step()
		if r.cpu.stage == s {
			return i
		}
	}
	r.tb.Fatalf("stage %s not reached after %d ticks", s, maxTicks)
	return 0
}

func wantMem8(t *testing.T, mem *Memory, addr uint16, want uint8) {
	t.Helper()

	if got := mem.Peek(addr); got != want {
		t.Errorf("$%04X = %02X want %02X", addr, got, want)
	}
}

// wantCPUState checks register/flag pairs: "A", 0x05, "Z", false, ...
func wantCPUState(t *testing.T, cpu *CPU, states ...any) {
	t.Helper()

	if len(states)%2 != 0 {
		panic("odd number of states")
	}

	checkuint8 := func(name string, got uint8, want int) {
		t.Helper()
		if int(got) != want {
			t.Errorf("got %s=$%02X, want $%02X", name, got, want)
		}
	}
	checkbool := func(name string, got, want bool) {
		t.Helper()
		if got != want {
			t.Errorf("got %s=%t, want %t", name, got, want)
		}
	}

	for i := 0; i < len(states); i += 2 {
		switch s := states[i].(string); s {
		case "A":
			checkuint8("A", cpu.A, states[i+1].(int))
		case "X":
			checkuint8("X", cpu.X, states[i+1].(int))
		case "Y":
			checkuint8("Y", cpu.Y, states[i+1].(int))
		case "Z":
			checkbool("Z", cpu.Z, states[i+1].(bool))
		case "C":
			checkbool("C", cpu.C, states[i+1].(bool))
		case "PC":
			if want := states[i+1].(int); int(cpu.PC) != want {
				t.Errorf("got PC=$%04X, want $%04X", cpu.PC, want)
			}
		case "out":
			if want := states[i+1].(string); cpu.Output() != want {
				t.Errorf("got output %q, want %q", cpu.Output(), want)
			}
		default:
			panic("unknown state: " + s)
		}
	}

	if t.Failed() {
		t.FailNow()
	}
}
