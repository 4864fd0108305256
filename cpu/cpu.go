// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
// Package cpu assembles the datapath, register file, and memory into the
// CPU surface described in spec.md Section 4.11: program loading, reset,
// single-step and run-to-completion execution, register/memory accessors,
// and the halt-condition and statistics bookkeeping a driver or monitor
// needs. Grounded on cpu.py's top-level step/run/reset API, collapsed from
// its multi-cycle state machine to the single-cycle model the datapath
// package already implements.
package cpu

import (
	"fmt"
	"os"

	"risc32sim/bitvec"
	"risc32sim/datapath"
	"risc32sim/hexloader"
	"risc32sim/memory"
	"risc32sim/regfile"
)

// HaltReason identifies why Run or RunUntilPC stopped.
type HaltReason int

const (
	HaltNone HaltReason = iota
	HaltInvalidInstruction
	HaltSelfBranch
	HaltMaxCycles
	HaltTargetPC
)

func (r HaltReason) String() string {
	switch r {
	case HaltInvalidInstruction:
		return "invalid instruction"
	case HaltSelfBranch:
		return "self-branch"
	case HaltMaxCycles:
		return "max cycles reached"
	case HaltTargetPC:
		return "target PC reached"
	default:
		return "none"
	}
}

// MnemonicCounts tallies executed instructions by mnemonic.
type MnemonicCounts map[string]int

// Statistics accumulates the counters spec.md Section 4.11 requires.
type Statistics struct {
	Cycles           int
	Instructions     int
	BranchesTaken    int
	BranchesNotTaken int
	MemReads         int
	MemWrites        int
	ByMnemonic       MnemonicCounts
}

// CPI returns cycles per instruction, or 0 if no instructions have retired.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// CPU is the top-level simulator: datapath state plus run control and
// statistics.
type CPU struct {
	dp    *datapath.Datapath
	stats Statistics

	lastHalt HaltReason
}

// New returns a CPU with freshly zeroed registers and a memory of the given
// size (memory.DefaultSize when size <= 0).
func New(memSize int) *CPU {
	regs := regfile.New()
	mem := memory.New(memSize)
	c := &CPU{dp: datapath.New(regs, mem)}
	c.ResetStatistics()
	return c
}

// LoadProgram writes pre-decoded instruction words to instruction memory,
// then resets the CPU so execution starts from the first loaded word.
func (c *CPU) LoadProgram(words []bitvec.Vector) {
	c.dp.Mem.LoadProgram(words)
	c.Reset()
}

// LoadFile reads and parses a hex program file (spec.md Section 6) through
// the hexloader external collaborator, then loads it per LoadProgram. This
// is the "load_program(path)" operation of spec.md Section 4.11; the hex
// parsing itself lives in the hexloader package, not here.
func (c *CPU) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cpu: %w", err)
	}
	defer f.Close()

	words, err := hexloader.Load(f)
	if err != nil {
		return fmt.Errorf("cpu: %w", err)
	}
	c.LoadProgram(words)
	return nil
}

// Reset zeroes the integer and floating-point registers and FCSR and sets
// the program counter back to the instruction base, without touching memory
// contents or statistics.
func (c *CPU) Reset() {
	c.dp.Regs.Reset()
	c.dp.PC = bitvec.New(32)
	c.lastHalt = HaltNone
}

// ResetStatistics zeroes every counter without touching CPU state.
func (c *CPU) ResetStatistics() {
	c.stats = Statistics{ByMnemonic: MnemonicCounts{}}
}

// Statistics returns a copy of the accumulated counters.
func (c *CPU) Statistics() Statistics {
	byMnemonic := make(MnemonicCounts, len(c.stats.ByMnemonic))
	for k, v := range c.stats.ByMnemonic {
		byMnemonic[k] = v
	}
	s := c.stats
	s.ByMnemonic = byMnemonic
	return s
}

// PC returns a copy of the current program counter.
func (c *CPU) PC() bitvec.Vector { return c.dp.PC.Clone() }

// GetRegister returns a copy of integer register x[n].
func (c *CPU) GetRegister(n int) bitvec.Vector { return c.dp.Regs.ReadInt(n) }

// SetRegister overwrites integer register x[n].
func (c *CPU) SetRegister(n int, value bitvec.Vector) { c.dp.Regs.WriteInt(n, value) }

// GetFPRegister returns a copy of floating-point register f[n].
func (c *CPU) GetFPRegister(n int) bitvec.Vector { return c.dp.Regs.ReadFP(n) }

// SetFPRegister overwrites floating-point register f[n].
func (c *CPU) SetFPRegister(n int, value bitvec.Vector) { c.dp.Regs.WriteFP(n, value) }

// GetMemoryWord reads a word from memory at addr.
func (c *CPU) GetMemoryWord(addr bitvec.Vector) bitvec.Vector { return c.dp.Mem.ReadWord(addr) }

// SetMemoryWord writes a word to memory at addr.
func (c *CPU) SetMemoryWord(addr bitvec.Vector, value bitvec.Vector) {
	c.dp.Mem.WriteWord(addr, value)
}

// LastHalt reports why the most recent Run or RunUntilPC call stopped.
func (c *CPU) LastHalt() HaltReason { return c.lastHalt }

// Step executes exactly one instruction and updates statistics, returning
// the cycle record and whether the CPU halted on this cycle.
func (c *CPU) Step() (datapath.Cycle, bool) {
	cyc := c.dp.Step()
	c.stats.Cycles++

	if cyc.Halted {
		switch cyc.HaltReason {
		case "invalid instruction":
			c.lastHalt = HaltInvalidInstruction
		case "self-branch":
			c.lastHalt = HaltSelfBranch
		}
		return cyc, true
	}

	c.stats.Instructions++
	c.stats.ByMnemonic[cyc.Instruction.Mnemonic]++
	if cyc.MemRead {
		c.stats.MemReads++
	}
	if cyc.MemWrite {
		c.stats.MemWrites++
	}
	if cyc.Signals.Branch != 0 {
		if cyc.BranchTaken {
			c.stats.BranchesTaken++
		} else {
			c.stats.BranchesNotTaken++
		}
	}
	return cyc, false
}

// Run executes until a halt condition fires or maxCycles cycles have
// elapsed, in the priority order spec.md Section 4.11 specifies: invalid
// instruction, self-branch, then max-cycle count.
func (c *CPU) Run(maxCycles int) HaltReason {
	for i := 0; i < maxCycles; i++ {
		_, halted := c.Step()
		if halted {
			return c.lastHalt
		}
	}
	c.lastHalt = HaltMaxCycles
	return HaltMaxCycles
}

// RunUntilPC executes until the program counter equals target, a halt
// condition fires, or maxCycles cycles have elapsed. Target-PC match is
// checked before executing each instruction, so a program that starts at
// target halts immediately without executing anything.
func (c *CPU) RunUntilPC(target bitvec.Vector, maxCycles int) HaltReason {
	for i := 0; i < maxCycles; i++ {
		if c.dp.PC.Equal(target) {
			c.lastHalt = HaltTargetPC
			return HaltTargetPC
		}
		_, halted := c.Step()
		if halted {
			return c.lastHalt
		}
	}
	c.lastHalt = HaltMaxCycles
	return HaltMaxCycles
}
