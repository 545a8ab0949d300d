package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"micro65/prg"
)

// pickProgram shows the interactive menu on the console and returns the
// selection. Runs in canonical (line) mode, before the keyboard switches
// the terminal to raw mode.
func pickProgram(library []prg.Program) (prg.Program, error) {
	fmt.Println("programs:")
	for i, p := range library {
		fmt.Printf("  %2d. %s\n", i+1, p.Name)
	}
	fmt.Println("   h. enter hex bytes manually")
	fmt.Println("   q. quit")

	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			return prg.Program{}, errors.New("input closed")
		}
		choice := strings.TrimSpace(sc.Text())

		switch choice {
		case "":
			continue
		case "q", "Q":
			return prg.Program{}, errors.New("aborted")
		case "h", "H":
			return hexEntry(sc)
		}

		n, err := strconv.Atoi(choice)
		if err != nil || n < 1 || n > len(library) {
			fmt.Printf("invalid choice %q\n", choice)
			continue
		}
		return library[n-1], nil
	}
}

// hexEntry reads hex octet lines until a blank line and packs them into a
// one-off program.
func hexEntry(sc *bufio.Scanner) (prg.Program, error) {
	fmt.Println("hex bytes, one or more per line, blank line to finish:")

	var code []uint8
	for {
		fmt.Print("% ")
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			break
		}
		bytes, err := prg.ParseCode(line)
		if err != nil {
			fmt.Printf("malformed hex %q, line dropped\n", line)
			continue
		}
		code = append(code, bytes...)
	}

	if len(code) == 0 {
		return prg.Program{}, errors.New("no bytes entered")
	}
	return prg.Program{Name: "manual", Code: code}, nil
}
