package hw

import (
	"strconv"

	"micro65/hw/ascii"
)

// Mnemonic tags the decoded instruction held in IR.
type Mnemonic uint8

const (
	XXX Mnemonic = iota // no instruction decoded
	LDA
	LDX
	LDY
	STA
	TXA
	TYA
	TAX
	TAY
	ADC
	CPX
	BNE
	INC
	NOP
	BRK
	SYS
)

var mnemNames = [...]string{
	"???", "LDA", "LDX", "LDY", "STA", "TXA", "TYA", "TAX", "TAY",
	"ADC", "CPX", "BNE", "INC", "NOP", "BRK", "SYS",
}

func (m Mnemonic) String() string { return mnemNames[m] }

// instrDef is one decode-table entry: operand byte count, instruction tag,
// micro-op. The operand size is a function because SYS decides it from X at
// decode time.
type instrDef struct {
	mnem Mnemonic
	size func(c *CPU) int
	exec microOp
}

func fixed(n int) func(*CPU) int {
	return func(*CPU) int { return n }
}

// optab maps opcodes to their decode entries. Nil entries fault at decode.
var optab = [256]*instrDef{
	0xA9: {LDA, fixed(1), loadImm(func(c *CPU) *uint8 { return &c.A })},
	0xAD: {LDA, fixed(2), loadAbs(func(c *CPU) *uint8 { return &c.A })},
	0xA2: {LDX, fixed(1), loadImm(func(c *CPU) *uint8 { return &c.X })},
	0xAE: {LDX, fixed(2), loadAbs(func(c *CPU) *uint8 { return &c.X })},
	0xA0: {LDY, fixed(1), loadImm(func(c *CPU) *uint8 { return &c.Y })},
	0xAC: {LDY, fixed(2), loadAbs(func(c *CPU) *uint8 { return &c.Y })},
	0x8D: {STA, fixed(2), sta},
	0x8A: {TXA, fixed(0), transfer(func(c *CPU) { c.A = c.X })},
	0x98: {TYA, fixed(0), transfer(func(c *CPU) { c.A = c.Y })},
	0xAA: {TAX, fixed(0), transfer(func(c *CPU) { c.X = c.A })},
	0xA8: {TAY, fixed(0), transfer(func(c *CPU) { c.Y = c.A })},
	0x6D: {ADC, fixed(2), adc},
	0xEC: {CPX, fixed(2), cpx},
	0xD0: {BNE, fixed(1), bne},
	0xEE: {INC, fixed(2), inc},
	0xEA: {NOP, fixed(0), nop},
	0x00: {BRK, fixed(0), brk},
	0xFF: {SYS, sysSize, sys},
}

func loadImm(reg func(*CPU) *uint8) microOp {
	return func(c *CPU) (bool, error) {
		*reg(c) = c.operand[0]
		return false, nil
	}
}

func loadAbs(reg func(*CPU) *uint8) microOp {
	return func(c *CPU) (bool, error) {
		if c.pulse == 0 {
			c.mmu.TriggerRead(c.absOperand())
			return true, nil
		}
		b, err := c.mmu.MDR()
		if err != nil {
			return false, err
		}
		*reg(c) = b
		return false, nil
	}
}

// sta triggers the write on its first pulse and idles one pulse while
// memory commits it.
func sta(c *CPU) (bool, error) {
	if c.pulse == 0 {
		c.mmu.WriteImmediate(c.absOperand(), c.A)
		return true, nil
	}
	return false, nil
}

func transfer(move func(*CPU)) microOp {
	return func(c *CPU) (bool, error) {
		move(c)
		return false, nil
	}
}

// adc adds memory to A. The carry flag participates only when the machine
// was started with carry enabled; Z is never touched.
func adc(c *CPU) (bool, error) {
	if c.pulse == 0 {
		c.mmu.TriggerRead(c.absOperand())
		return true, nil
	}
	b, err := c.mmu.MDR()
	if err != nil {
		return false, err
	}

	sum := uint16(c.A) + uint16(b)
	if c.useCarry && c.C {
		sum++
	}
	c.C = sum > 0xFF
	c.A = uint8(sum)
	return false, nil
}

func cpx(c *CPU) (bool, error) {
	if c.pulse == 0 {
		c.mmu.TriggerRead(c.absOperand())
		return true, nil
	}
	b, err := c.mmu.MDR()
	if err != nil {
		return false, err
	}

	r := c.X - b
	c.Z = r == 0
	c.C = c.X >= b
	return false, nil
}

// bne branches when Z is clear. The signed offset is relative to the PC
// after the operand fetch.
func bne(c *CPU) (bool, error) {
	if !c.Z {
		off := int8(c.operand[0])
		c.PC += uint16(int16(off))
	}
	return false, nil
}

// inc reads, increments, and leaves the result for the Writeback stage.
func inc(c *CPU) (bool, error) {
	if c.pulse == 0 {
		c.mmu.TriggerRead(c.absOperand())
		return true, nil
	}
	b, err := c.mmu.MDR()
	if err != nil {
		return false, err
	}
	c.setWriteback(c.absOperand(), b+1)
	return false, nil
}

func nop(c *CPU) (bool, error) {
	return false, nil
}

func brk(c *CPU) (bool, error) {
	c.sys.Stop()
	return false, nil
}

// sysSize gives SYS its operand count at decode time: only the X=3 string
// print carries a 16-bit operand.
func sysSize(c *CPU) int {
	if c.X == 0x03 {
		return 2
	}
	return 0
}

// sys dispatches on X.
//
//	X=1  append the decimal string of Y to the program output
//	X=2  print the 0-terminated string at zero-page address Y
//	X=3  print the 0-terminated string at the operand address
func sys(c *CPU) (bool, error) {
	switch c.X {
	case 0x01:
		c.out.WriteString(strconv.Itoa(int(c.Y)))
		return false, nil
	case 0x02, 0x03:
		return sysPrint(c)
	default:
		return false, InvalidSyscallError{X: c.X}
	}
}

// sysPrint streams the string one byte every two pulses: trigger the read
// on even pulses, decode and append on odd ones, stop at 0x00.
func sysPrint(c *CPU) (bool, error) {
	if c.pulse == 0 {
		if c.X == 0x02 {
			c.strAddr = uint16(c.Y) // high byte is zero: zero page only
		} else {
			c.strAddr = c.absOperand()
		}
	}

	if c.pulse%2 == 0 {
		c.mmu.TriggerRead(c.strAddr)
		return true, nil
	}

	b, err := c.mmu.MDR()
	if err != nil {
		return false, err
	}
	if b == 0x00 {
		return false, nil
	}

	r, err := ascii.Decode(b)
	if err != nil {
		return false, err
	}
	c.out.WriteRune(r)
	c.strAddr++
	return true, nil
}
