package hw

import (
	"micro65/emu/log"
)

// RAMSize is the size of the flat address space, in bytes.
const RAMSize = 1 << 16

// loader is the back-reference Memory holds to resume a program load once a
// queued write has been committed.
type loader interface {
	Loading() bool
	AdvanceLoad()
}

// Memory is a 64 KiB byte-addressable RAM behind a pair of latched registers.
// Callers select an address into MAR and data into MDR, queue a read or a
// write, and the operation completes on Memory's own tick. At most one read
// and one write complete per tick, writes first, so a write-then-read of the
// same address observes the new value on a single tick.
type Memory struct {
	cells [RAMSize]uint8

	mar uint16
	mdr uint8

	readPending  bool
	writePending bool

	ldr loader
}

func NewMemory() *Memory {
	return &Memory{}
}

// AttachLoader registers the component to notify after each committed write
// while a program load is in progress.
func (m *Memory) AttachLoader(l loader) {
	m.ldr = l
}

func (m *Memory) SetMAR(addr uint16) { m.mar = addr }
func (m *Memory) MAR() uint16        { return m.mar }
func (m *Memory) SetMDR(val uint8)   { m.mdr = val }
func (m *Memory) MDR() uint8         { return m.mdr }

func (m *Memory) QueueRead()  { m.readPending = true }
func (m *Memory) QueueWrite() { m.writePending = true }

// ReadPending reports whether a queued read has not completed yet.
func (m *Memory) ReadPending() bool { return m.readPending }

// Tick completes the queued operations. Write before read.
func (m *Memory) Tick() {
	if m.writePending {
		m.cells[m.mar] = m.mdr
		m.writePending = false
		log.ModMem.DebugZ("write committed").
			Hex16("addr", m.mar).
			Hex8("val", m.mdr).
			End()

		if m.ldr != nil && m.ldr.Loading() {
			m.ldr.AdvanceLoad()
		}
	}
	if m.readPending {
		m.mdr = m.cells[m.mar]
		m.readPending = false
		log.ModMem.DebugZ("read completed").
			Hex16("addr", m.mar).
			Hex8("val", m.mdr).
			End()
	}
}

// Peek reads a cell directly, without going through the MAR/MDR protocol.
// Diagnostics and tests only.
func (m *Memory) Peek(addr uint16) uint8 {
	return m.cells[addr]
}

func (m *Memory) Reset() {
	m.cells = [RAMSize]uint8{}
	m.mar = 0
	m.mdr = 0
	m.readPending = false
	m.writePending = false
}
