package hw

import (
	"errors"
	"testing"
)

func TestTwoPhaseRead(t *testing.T) {
	mem := NewMemory()
	mmu := NewMMU(mem)

	mmu.WriteImmediate(0x0123, 0x42)
	mem.Tick()

	mmu.TriggerRead(0x0123)
	mem.Tick()
	got, err := mmu.MDR()
	if err != nil {
		t.Fatalf("MDR: %v", err)
	}
	if got != 0x42 {
		t.Errorf("MDR = %02X, want 42", got)
	}
}

func TestMDRWhileReadPending(t *testing.T) {
	mem := NewMemory()
	mmu := NewMMU(mem)

	mmu.TriggerRead(0x0000)
	if _, err := mmu.MDR(); !errors.Is(err, ErrReadPending) {
		t.Errorf("MDR before tick: err = %v, want ErrReadPending", err)
	}
}

func TestTriggerWriteUsesLatchedMAR(t *testing.T) {
	mem := NewMemory()
	mmu := NewMMU(mem)

	mem.SetMAR(0x0456)
	mmu.TriggerWrite(0x13)
	mem.Tick()
	wantMem8(t, mem, 0x0456, 0x13)
}

// The load queue drains one byte per tick and the loading flag is true for
// exactly len(code) consecutive ticks after SetProgram.
func TestProgramLoad(t *testing.T) {
	mem := NewMemory()
	mmu := NewMMU(mem)

	code := []uint8{0xA9, 0x05, 0xAA, 0x00}
	if err := mmu.SetProgram(code); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < len(code); i++ {
		if !mmu.Loading() {
			t.Fatalf("not loading at tick %d", i)
		}
		mem.Tick()
	}
	if mmu.Loading() {
		t.Fatal("still loading after len(code) ticks")
	}

	for i, want := range code {
		wantMem8(t, mem, uint16(i), want)
	}
}

func TestEmptyProgram(t *testing.T) {
	mmu := NewMMU(NewMemory())
	if err := mmu.SetProgram(nil); !errors.Is(err, ErrEmptyProgram) {
		t.Errorf("err = %v, want ErrEmptyProgram", err)
	}
	if mmu.Loading() {
		t.Error("loading after rejected program")
	}
}

func TestOversizedProgram(t *testing.T) {
	mmu := NewMMU(NewMemory())
	err := mmu.SetProgram(make([]uint8, RAMSize+1))
	var rangeErr MemoryRangeError
	if !errors.As(err, &rangeErr) {
		t.Errorf("err = %v, want MemoryRangeError", err)
	}
}

func TestMMUReset(t *testing.T) {
	mem := NewMemory()
	mmu := NewMMU(mem)

	if err := mmu.SetProgram([]uint8{0x01, 0x02, 0x03}); err != nil {
		t.Fatal(err)
	}
	mem.Tick()

	mmu.Reset()
	if mmu.Loading() {
		t.Error("loading after reset")
	}
	wantMem8(t, mem, 0x0000, 0x00)
}
