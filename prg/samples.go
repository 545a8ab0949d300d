package prg

// Samples are the built-in programs. Together they cover the instruction
// set except LDA and LDX absolute ($AD, $AE), TYA and TAY; each carries a
// register oracle so a run doubles as a hardware check.
var Samples = []Program{
	{
		Name: "transfer",
		// LDA #$05, TAX, LDA #$03, TXA, BRK
		Code:     []uint8{0xA9, 0x05, 0xAA, 0xA9, 0x03, 0x8A, 0x00},
		Expected: &Registers{A: 0x05, X: 0x05},
	},
	{
		Name: "hello",
		// LDX #$03, SYS $0006, BRK, "Hello!"
		Code: []uint8{
			0xA2, 0x03,
			0xFF, 0x06, 0x00,
			0x00,
			0x48, 0x65, 0x6C, 0x6C, 0x6F, 0x21, 0x00,
		},
		Expected: &Registers{X: 0x03},
	},
	{
		Name: "add",
		// LDA #$FE, STA $0010, LDA #$01, ADC $0010, BRK
		Code: []uint8{
			0xA9, 0xFE, 0x8D, 0x10, 0x00,
			0xA9, 0x01,
			0x6D, 0x10, 0x00,
			0x00,
		},
		Expected: &Registers{A: 0xFF},
	},
	{
		Name: "add-overflow",
		// LDA #$FF, STA $0010, LDA #$02, ADC $0010, BRK
		Code: []uint8{
			0xA9, 0xFF, 0x8D, 0x10, 0x00,
			0xA9, 0x02,
			0x6D, 0x10, 0x00,
			0x00,
		},
		Expected: &Registers{A: 0x01, C: true},
	},
	{
		Name: "branch",
		// LDX #$05, CPX $0020, BNE +2 over two NOPs, BRK
		Code: []uint8{
			0xA2, 0x05,
			0xEC, 0x20, 0x00,
			0xD0, 0x02,
			0xEA, 0xEA,
			0x00,
		},
		Expected: &Registers{X: 0x05, C: true},
	},
	{
		Name: "print-int",
		// LDA #$2A, STA $0040, LDY $0040, LDX #$01, SYS, BRK
		Code: []uint8{
			0xA9, 0x2A, 0x8D, 0x40, 0x00,
			0xAC, 0x40, 0x00,
			0xA2, 0x01,
			0xFF,
			0x00,
		},
		Expected: &Registers{A: 0x2A, X: 0x01, Y: 0x2A},
	},
	{
		Name: "print-zeropage",
		// LDY #$08, LDX #$02, SYS, BRK, "OK!" at 0x0008
		Code: []uint8{
			0xA0, 0x08,
			0xA2, 0x02,
			0xFF,
			0x00,
			0xEA, 0xEA,
			0x4F, 0x4B, 0x21, 0x00,
		},
		Expected: &Registers{X: 0x02, Y: 0x08},
	},
	{
		Name: "count",
		// Increment $0020 until it reaches X, then load it into Y.
		// LDX #$05, loop: INC $0020, CPX $0020, BNE loop, LDY $0020, BRK
		Code: []uint8{
			0xA2, 0x05,
			0xEE, 0x20, 0x00,
			0xEC, 0x20, 0x00,
			0xD0, 0xF8,
			0xAC, 0x20, 0x00,
			0x00,
		},
		Expected: &Registers{X: 0x05, Y: 0x05, Z: true, C: true},
	},
}
