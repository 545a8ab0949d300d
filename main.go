package main

import (
	"fmt"
	"os"

	"micro65/prg"
)

var version = "devel"

func main() {
	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case listMode:
		for _, p := range prg.Samples {
			oracle := ""
			if p.Expected != nil {
				oracle = "  (checked)"
			}
			fmt.Printf("%-16s %3d bytes%s\n", p.Name, len(p.Code), oracle)
		}
	case versionMode:
		fmt.Println("micro65", version)
	default:
		runMain(cli.Run)
	}
}
