package prg

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	progs := []Program{
		{
			Name:     "transfer",
			Code:     []uint8{0xA9, 0x05, 0xAA, 0x00},
			Expected: &Registers{A: 0x05, X: 0x05},
		},
		{
			Name: "no-oracle",
			Code: []uint8{0xEA, 0x00},
		},
	}

	got, err := Decode(Encode(progs))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(progs, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	data := `[{"name": "x", "code": "ea 00", "comment": "ignored", "expected": {"a": 1, "weird": 3}}]`
	progs, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(progs) != 1 || progs[0].Expected.A != 1 {
		t.Errorf("got %+v", progs)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing name", `[{"code": "ea 00"}]`},
		{"missing code", `[{"name": "x"}]`},
		{"bad hex", `[{"name": "x", "code": "zz"}]`},
		{"register out of range", `[{"name": "x", "code": "00", "expected": {"a": 256}}]`},
		{"not an array", `{"name": "x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.data)); err == nil {
				t.Error("want error")
			}
		})
	}
}

func TestParseCode(t *testing.T) {
	code, err := ParseCode("a9 05  AA\n00")
	if err != nil {
		t.Fatal(err)
	}
	want := []uint8{0xA9, 0x05, 0xAA, 0x00}
	if diff := cmp.Diff(want, code); diff != "" {
		t.Error(diff)
	}
}

func TestFind(t *testing.T) {
	if _, ok := Find(Samples, "transfer"); !ok {
		t.Error("transfer sample missing")
	}
	if _, ok := Find(Samples, "no-such"); ok {
		t.Error("found a program that does not exist")
	}
}

func TestSamplesAreWellFormed(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Samples {
		if p.Name == "" || len(p.Code) == 0 {
			t.Errorf("malformed sample %+v", p)
		}
		if seen[p.Name] {
			t.Errorf("duplicate sample name %q", p.Name)
		}
		seen[p.Name] = true
	}
}
