// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package main

import (
	"flag"
	"log"

	"risc32sim/cpu"
	"risc32sim/monitor"
)

func main() {
	maxCycles := flag.Int("max-cycles", 1_000_000, "maximum cycles to execute before giving up")
	memSize := flag.Int("mem", 0, "backing memory size in bytes (0 = default 128 KiB)")
	traceFlag := flag.Bool("t", false, "print every retired instruction")
	monitorFlag := flag.Bool("monitor", false, "run the full-screen termbox register/memory dashboard")
	replFlag := flag.Bool("repl", false, "run the single-keystroke interactive monitor")
	statsFlag := flag.Bool("stats", false, "print performance statistics after the run")
	flag.Parse()

	log.SetFlags(0)

	if flag.NArg() < 1 {
		log.Fatal("usage: risc32sim [flags] <program.hex>")
	}
	codefile := flag.Arg(0)

	c := cpu.New(*memSize)
	if err := c.LoadFile(codefile); err != nil {
		log.Fatal(err)
	}

	switch {
	case *monitorFlag:
		if err := monitor.NewDashboard(c).Run(*maxCycles); err != nil {
			log.Fatal(err)
		}
	case *replFlag:
		if err := monitor.NewREPL(c).Run(*maxCycles); err != nil {
			log.Fatal(err)
		}
	default:
		reason := runToHalt(c, *maxCycles, *traceFlag)
		log.Printf("halted: %s (PC=%s)", reason, c.PC())
	}

	if *statsFlag {
		printStats(c)
	}
}

func runToHalt(c *cpu.CPU, maxCycles int, trace bool) cpu.HaltReason {
	for i := 0; i < maxCycles; i++ {
		cyc, halted := c.Step()
		if trace {
			log.Printf("%s  %s", cyc.PC, cyc.Instruction)
		}
		if halted {
			return c.LastHalt()
		}
	}
	return cpu.HaltMaxCycles
}

func printStats(c *cpu.CPU) {
	stats := c.Statistics()
	log.Printf("cycles=%d instructions=%d CPI=%.2f branches_taken=%d branches_not_taken=%d mem_reads=%d mem_writes=%d",
		stats.Cycles, stats.Instructions, stats.CPI(), stats.BranchesTaken, stats.BranchesNotTaken,
		stats.MemReads, stats.MemWrites)
	for mnemonic, n := range stats.ByMnemonic {
		log.Printf("  %-8s %d", mnemonic, n)
	}
}
