package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"micro65/emu"
	"micro65/emu/log"
	"micro65/hw"
	"micro65/prg"
)

// runMain builds the machine, selects a program and runs it to completion.
func runMain(args Run) {
	cfg := emu.LoadConfigOrDefault()
	if args.Carry != nil {
		cfg.Emulation.UseCarry = *args.Carry
	}
	if args.Debug {
		cfg.Emulation.Debug = true
	}
	if args.Period > 0 {
		cfg.Clock.PeriodUS = args.Period
	}
	if cfg.Emulation.Debug {
		log.EnableDebugModules(log.ModuleMaskAll)
	}

	library := prg.Samples
	if args.File != "" {
		var err error
		library, err = prg.ReadFile(args.File)
		checkf(err, "failed to load %s", args.File)
	}

	var program prg.Program
	if args.Program != "" {
		var ok bool
		program, ok = prg.Find(library, args.Program)
		if !ok {
			fatalf("unknown program %q, see 'micro65 list'", args.Program)
		}
	} else {
		var err error
		program, err = pickProgram(library)
		checkf(err, "no program selected")
	}

	sys := emu.New(cfg)
	log.AddContext(sys)

	if args.Trace != nil {
		sys.CPU.SetTraceOutput(args.Trace)
		defer args.Trace.Close()
	}

	// The keyboard needs a real terminal; without one the machine still
	// runs, it just cannot be interrupted by keystrokes.
	kb := hw.NewKeyboard(os.Stdin, sys.IRQ)
	if err := kb.Open(); err == nil {
		sys.AttachKeyboard(kb)
		defer kb.Close()
	} else {
		log.ModInput.Warnf("no terminal, keyboard disabled: %v", err)
	}

	checkf(sys.Start(program), "failed to start %q", program.Name)

	err := sys.Run(context.Background())
	if sys.Keyboard != nil {
		kb.Close() // restore the terminal before printing
	}

	if errors.Is(err, hw.ErrInterrupted) {
		os.Exit(130)
	}
	checkf(err, "run failed")

	printReport(sys.Report())
}

func printReport(r emu.Report) {
	if r.Output != "" {
		fmt.Printf("output: %s\n", r.Output)
	}
	fmt.Printf("registers: %s\n", r.Regs)
	if r.Checked {
		if r.Passed {
			fmt.Println("PASS")
		} else {
			fmt.Printf("FAIL: want %s\n", *r.Expected)
		}
	}
}
