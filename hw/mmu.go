package hw

import (
	"micro65/emu/log"
)

// MMU is the CPU-facing façade over Memory. It owns no storage of its own
// besides the program-load queue, which drains into memory one byte per tick.
//
// The memory protocol is two-phased: trigger a read on tick N, collect the
// value from MDR on tick N+1. Memory ticks after the CPU within a clock
// pulse, so the latched value is there by the time the CPU runs again.
type MMU struct {
	mem *Memory

	queue    []uint8
	loadAddr uint16
	loading  bool
}

func NewMMU(mem *Memory) *MMU {
	mmu := &MMU{mem: mem}
	mem.AttachLoader(mmu)
	return mmu
}

// TriggerRead latches addr and queues a read for the next memory tick.
func (m *MMU) TriggerRead(addr uint16) {
	m.mem.SetMAR(addr)
	m.mem.QueueRead()
}

// TriggerWrite latches val and queues a write. The caller has set MAR.
func (m *MMU) TriggerWrite(val uint8) {
	m.mem.SetMDR(val)
	m.mem.QueueWrite()
}

// WriteImmediate latches both registers and queues a write.
func (m *MMU) WriteImmediate(addr uint16, val uint8) {
	m.mem.SetMAR(addr)
	m.mem.SetMDR(val)
	m.mem.QueueWrite()
}

// MDR returns the data latched by the last completed read. Collecting it
// while a read is still pending breaks the two-phase protocol and reports
// ErrReadPending.
func (m *MMU) MDR() (uint8, error) {
	if m.mem.ReadPending() {
		return m.mem.MDR(), ErrReadPending
	}
	return m.mem.MDR(), nil
}

// SetProgram queues code for loading into memory starting at 0x0000, one
// byte per tick, and primes the first write.
func (m *MMU) SetProgram(code []uint8) error {
	if len(code) == 0 {
		return ErrEmptyProgram
	}
	if len(code) > RAMSize {
		return MemoryRangeError{Addr: len(code) - 1}
	}

	m.queue = m.queue[:0]
	m.queue = append(m.queue, code...)
	m.loadAddr = 0
	m.loading = true

	log.ModMem.InfoZ("loading program").Int("bytes", len(code)).End()

	m.AdvanceLoad()
	return nil
}

// AdvanceLoad writes the next queued byte, or ends the load once the queue
// is empty. Memory calls it back after each committed write.
func (m *MMU) AdvanceLoad() {
	if len(m.queue) == 0 {
		m.loading = false
		log.ModMem.InfoZ("program loaded").Hex16("end", m.loadAddr).End()
		return
	}

	b := m.queue[0]
	m.queue = m.queue[1:]
	m.WriteImmediate(m.loadAddr, b)
	m.loadAddr++
}

// Loading reports whether program bytes are still draining into memory.
func (m *MMU) Loading() bool { return m.loading }

func (m *MMU) Reset() {
	m.queue = nil
	m.loadAddr = 0
	m.loading = false
	m.mem.Reset()
}
