// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package cpu

import (
	"testing"

	"risc32sim/bitvec"
	"risc32sim/bitvec/testutil"
)

func prog(raw ...uint32) []bitvec.Vector {
	out := make([]bitvec.Vector, len(raw))
	for i, w := range raw {
		out[i] = testutil.FromUint(uint64(w), 32)
	}
	return out
}

func regInt(c *CPU, n int) int32 { return testutil.ToInt32(c.GetRegister(n)) }
func regUint(c *CPU, n int) uint32 { return uint32(testutil.ToUint(c.GetRegister(n))) }

// Scenario A: the reference program from spec.md Section 8.
func TestScenarioAReferenceProgram(t *testing.T) {
	c := New(0)
	c.LoadProgram(prog(
		0x00500093, // ADDI x1,x0,5
		0x00A00113, // ADDI x2,x0,10
		0x002081B3, // ADD x3,x1,x2
		0x40110233, // SUB x4,x2,x1
		0x000102B7, // LUI x5,0x10
		0x0032A023, // SW x3,0(x5)
		0x0002A203, // LW x4,0(x5)
		0x00418463, // BEQ x3,x4,+8
		0x00100313, // ADDI x6,x0,1
		0x00200313, // ADDI x6,x0,2
		0x0000006F, // JAL x0,0
	))

	reason := c.Run(1000)
	if reason != HaltSelfBranch {
		t.Fatalf("halt reason = %v, want self-branch", reason)
	}
	if got := regInt(c, 1); got != 5 {
		t.Fatalf("x1 = %d, want 5", got)
	}
	if got := regInt(c, 2); got != 10 {
		t.Fatalf("x2 = %d, want 10", got)
	}
	if got := regInt(c, 3); got != 15 {
		t.Fatalf("x3 = %d, want 15", got)
	}
	if got := regInt(c, 4); got != 15 {
		t.Fatalf("x4 = %d, want 15", got)
	}
	if got := regUint(c, 5); got != 0x00010000 {
		t.Fatalf("x5 = %#x, want 0x00010000", got)
	}
	if got := regInt(c, 6); got != 2 {
		t.Fatalf("x6 = %d, want 2", got)
	}
	if got := testutil.ToInt32(c.GetMemoryWord(c.GetRegister(5))); got != 15 {
		t.Fatalf("mem[x5] = %d, want 15", got)
	}
}

// Scenario B: forward branch not taken.
func TestScenarioBBranchNotTaken(t *testing.T) {
	c := New(0)
	c.LoadProgram(prog(
		0x00300093, // ADDI x1,x0,3
		0x00500113, // ADDI x2,x0,5
		0x00208463, // BEQ x1,x2,+8
		0x02A00193, // ADDI x3,x0,42
		0x0000006F, // JAL x0,0
	))
	reason := c.Run(1000)
	if reason != HaltSelfBranch {
		t.Fatalf("halt reason = %v, want self-branch", reason)
	}
	if got := regInt(c, 3); got != 42 {
		t.Fatalf("x3 = %d, want 42", got)
	}
}

// Scenario C: shift immediates.
func TestScenarioCShiftImmediate(t *testing.T) {
	c := New(0)
	c.LoadProgram(prog(
		0x00100093, // ADDI x1,x0,1
		0x01F09113, // SLLI x2,x1,31
		0x01F15193, // SRLI x3,x2,31
		0x41F15213, // SRAI x4,x2,31
		0x0000006F, // JAL x0,0
	))
	c.Run(1000)
	if got := regUint(c, 2); got != 0x80000000 {
		t.Fatalf("x2 = %#x, want 0x80000000", got)
	}
	if got := regInt(c, 3); got != 1 {
		t.Fatalf("x3 = %d, want 1", got)
	}
	if got := regUint(c, 4); got != 0xFFFFFFFF {
		t.Fatalf("x4 = %#x, want 0xFFFFFFFF", got)
	}
}

// Scenario D: signed multiply high, operands loaded via LUI/ADDI.
func TestScenarioDSignedMultiplyHigh(t *testing.T) {
	c := New(0)
	c.LoadProgram(prog(
		0x00BC60B7, // LUI x1,0xbc6
		0x14E08093, // ADDI x1,x1,334      -> x1 = 12345678
		0xFAC68137, // LUI x2,0xfac68
		0x04F10113, // ADDI x2,x2,79       -> x2 = -87654321
		0x022091B3, // MULH x3,x1,x2
		0x0000006F, // JAL x0,0
	))
	c.Run(1000)
	if got := regInt(c, 1); got != 12345678 {
		t.Fatalf("x1 = %d, want 12345678", got)
	}
	if got := regInt(c, 2); got != -87654321 {
		t.Fatalf("x2 = %d, want -87654321", got)
	}
	if got := regUint(c, 3); got != 0xFFFC27C9 {
		t.Fatalf("x3 = %#x, want 0xFFFC27C9", got)
	}
}

// Scenario E: float addition via test injection of FP registers.
func TestScenarioEFloatAdditionSequence(t *testing.T) {
	c := New(0)
	c.LoadProgram(prog(
		0x00208253, // FADD.S f4,f1,f2
		0x003202D3, // FADD.S f5,f4,f3
		0x0000006F, // JAL x0,0
	))
	c.SetFPRegister(1, testutil.FromUint(0x3F800000, 32)) // 1.0
	c.SetFPRegister(2, testutil.FromUint(0x40000000, 32)) // 2.0
	c.SetFPRegister(3, testutil.FromUint(0x40400000, 32)) // 3.0

	c.Run(1000)

	if got := testutil.ToUint(c.GetFPRegister(5)); got != 0x40C00000 { // 6.0
		t.Fatalf("f5 = %#x, want 0x40C00000 (6.0)", got)
	}
}

// Scenario F: divide by zero.
func TestScenarioFDivideByZero(t *testing.T) {
	c := New(0)
	c.LoadProgram(prog(
		0x06400093, // ADDI x1,x0,100
		0x00000113, // ADDI x2,x0,0
		0x0220C1B3, // DIV x3,x1,x2
		0x0220E233, // REM x4,x1,x2
		0x0000006F, // JAL x0,0
	))
	c.Run(1000)
	if got := regUint(c, 3); got != 0xFFFFFFFF {
		t.Fatalf("x3 = %#x, want 0xFFFFFFFF", got)
	}
	if got := regInt(c, 4); got != 100 {
		t.Fatalf("x4 = %d, want 100", got)
	}
}

func TestX0WritesAreDiscardedAcrossSteps(t *testing.T) {
	c := New(0)
	c.LoadProgram(prog(
		0x00100013, // addi x0,x0,1 -- attempts to write x0
		0x0000006F, // JAL x0,0
	))
	for i := 0; i < 2; i++ {
		if _, halted := c.Step(); halted {
			break
		}
		if !c.GetRegister(0).IsZero() {
			t.Fatalf("x0 became nonzero after step %d", i)
		}
	}
}

func TestInvalidInstructionHalts(t *testing.T) {
	c := New(0)
	c.LoadProgram(prog(0xFFFFFFFF))
	reason := c.Run(10)
	if reason != HaltInvalidInstruction {
		t.Fatalf("halt reason = %v, want invalid instruction", reason)
	}
}

func TestMaxCyclesHalt(t *testing.T) {
	c := New(0)
	// An infinite loop that never reaches the JAL x0,0 self-branch encoding:
	// JAL x0,-4 jumps back to the preceding NOP rather than to itself, so it
	// isn't the canonical halt marker and the run must be bounded by
	// max_cycles instead.
	c.LoadProgram(prog(
		0x00000013, // addi x0,x0,0 (NOP)
		0xFFDFF06F, // jal x0,-4
	))
	reason := c.Run(50)
	if reason != HaltMaxCycles {
		t.Fatalf("halt reason = %v, want max cycles", reason)
	}
	if c.Statistics().Cycles != 50 {
		t.Fatalf("cycles = %d, want 50", c.Statistics().Cycles)
	}
}

func TestRunUntilPC(t *testing.T) {
	c := New(0)
	c.LoadProgram(prog(
		0x00100093, // ADDI x1,x0,1
		0x00200113, // ADDI x2,x0,2
		0x0000006F, // JAL x0,0
	))
	target := testutil.FromUint(4, 32)
	reason := c.RunUntilPC(target, 1000)
	if reason != HaltTargetPC {
		t.Fatalf("halt reason = %v, want target PC", reason)
	}
	if got := regInt(c, 1); got != 1 {
		t.Fatalf("x1 = %d, want 1 (should have executed one instruction)", got)
	}
	if got := regInt(c, 2); got != 0 {
		t.Fatalf("x2 = %d, want 0 (should not have executed yet)", got)
	}
}

func TestStatisticsInstructionCountMatchesMnemonicSum(t *testing.T) {
	c := New(0)
	c.LoadProgram(prog(
		0x00100093, // ADDI x1,x0,1
		0x00200113, // ADDI x2,x0,2
		0x002081B3, // ADD x3,x1,x2
		0x0000006F, // JAL x0,0
	))
	c.Run(1000)
	stats := c.Statistics()
	sum := 0
	for _, n := range stats.ByMnemonic {
		sum += n
	}
	if sum != stats.Instructions {
		t.Fatalf("sum of per-mnemonic counts = %d, want instruction count %d", sum, stats.Instructions)
	}
}

func TestResetStatisticsIndependentOfReset(t *testing.T) {
	c := New(0)
	c.LoadProgram(prog(
		0x00100093, // ADDI x1,x0,1
		0x0000006F, // JAL x0,0
	))
	c.Run(1000)
	if c.Statistics().Instructions == 0 {
		t.Fatalf("expected at least one retired instruction before reset")
	}
	c.ResetStatistics()
	if c.Statistics().Instructions != 0 {
		t.Fatalf("ResetStatistics did not clear the instruction counter")
	}
	if got := regInt(c, 1); got != 1 {
		t.Fatalf("ResetStatistics must not disturb register state: x1 = %d, want 1", got)
	}
}
