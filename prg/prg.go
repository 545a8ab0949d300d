// Package prg holds machine programs: raw bytes for the MMU loader, plus an
// optional register oracle checked when the program stops.
package prg

import "fmt"

// Registers is a snapshot of the data registers and flags, used as the
// expected state a program should stop with.
type Registers struct {
	A, X, Y uint8
	Z, C    bool
}

func (r Registers) String() string {
	return fmt.Sprintf("A:%02X X:%02X Y:%02X Z:%t C:%t", r.A, r.X, r.Y, r.Z, r.C)
}

// Program is an ordered byte sequence loaded into memory at 0x0000.
type Program struct {
	Name     string
	Code     []uint8
	Expected *Registers // nil when there is no oracle
}

// Find returns the program with that name.
func Find(progs []Program, name string) (Program, bool) {
	for _, p := range progs {
		if p.Name == name {
			return p, true
		}
	}
	return Program{}, false
}
