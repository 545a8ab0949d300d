package prg

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/go-faster/jx"
)

// Programs travel as JSON arrays, machine code hex-encoded:
//
//	[{"name": "transfer",
//	  "code": "a9 05 aa a9 03 8a 00",
//	  "expected": {"a": 5, "x": 5, "y": 0, "z": false, "c": false}}]
//
// The "expected" object is optional.

// Decode parses a program file.
func Decode(data []byte) ([]Program, error) {
	var progs []Program

	d := jx.DecodeBytes(data)
	err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProgram(d)
		if err != nil {
			return err
		}
		progs = append(progs, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("malformed program file: %w", err)
	}
	return progs, nil
}

func decodeProgram(d *jx.Decoder) (Program, error) {
	var p Program
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			s, err := d.Str()
			if err != nil {
				return err
			}
			p.Name = s
		case "code":
			s, err := d.Str()
			if err != nil {
				return err
			}
			code, err := ParseCode(s)
			if err != nil {
				return err
			}
			p.Code = code
		case "expected":
			regs, err := decodeRegisters(d)
			if err != nil {
				return err
			}
			p.Expected = &regs
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return Program{}, err
	}
	if p.Name == "" {
		return Program{}, fmt.Errorf("program without name")
	}
	if len(p.Code) == 0 {
		return Program{}, fmt.Errorf("program %q without code", p.Name)
	}
	return p, nil
}

func decodeRegisters(d *jx.Decoder) (Registers, error) {
	var regs Registers
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "a", "x", "y":
			v, err := d.Int()
			if err != nil {
				return err
			}
			if v < 0 || v > 0xFF {
				return fmt.Errorf("register %s value %d out of byte range", key, v)
			}
			switch key {
			case "a":
				regs.A = uint8(v)
			case "x":
				regs.X = uint8(v)
			case "y":
				regs.Y = uint8(v)
			}
		case "z", "c":
			v, err := d.Bool()
			if err != nil {
				return err
			}
			if key == "z" {
				regs.Z = v
			} else {
				regs.C = v
			}
		default:
			return d.Skip()
		}
		return nil
	})
	return regs, err
}

// Encode renders programs in the file format above.
func Encode(progs []Program) []byte {
	var e jx.Encoder
	e.SetIdent(2)

	e.ArrStart()
	for _, p := range progs {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(p.Name)
		e.FieldStart("code")
		e.Str(formatCode(p.Code))
		if p.Expected != nil {
			e.FieldStart("expected")
			e.ObjStart()
			e.FieldStart("a")
			e.Int(int(p.Expected.A))
			e.FieldStart("x")
			e.Int(int(p.Expected.X))
			e.FieldStart("y")
			e.Int(int(p.Expected.Y))
			e.FieldStart("z")
			e.Bool(p.Expected.Z)
			e.FieldStart("c")
			e.Bool(p.Expected.C)
			e.ObjEnd()
		}
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

// ReadFile loads a program file.
func ReadFile(path string) ([]Program, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(buf)
}

// WriteFile saves programs as a program file.
func WriteFile(path string, progs []Program) error {
	return os.WriteFile(path, Encode(progs), 0644)
}

// ParseCode decodes whitespace-separated hex octets into machine code.
func ParseCode(s string) ([]uint8, error) {
	return hex.DecodeString(strings.Join(strings.Fields(s), ""))
}

func formatCode(code []uint8) string {
	var sb strings.Builder
	for i, b := range code {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", b)
	}
	return sb.String()
}
