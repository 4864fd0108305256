// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
// Package datapath orchestrates one clock cycle of the single-cycle RV32IMF
// core described in spec.md Section 4.10: fetch, decode, operand
// preparation, execute, memory access, writeback, and PC update, wiring the
// alu/shifter/mdu/fpu functional units together under control signals
// derived per instruction. Grounded on cpu.py's per-cycle step structure,
// adapted from its multi-cycle sequencing down to a single combinational
// pass per spec.md's single-cycle mandate.
package datapath

import (
	"risc32sim/alu"
	"risc32sim/bitvec"
	"risc32sim/control"
	"risc32sim/decoder"
	"risc32sim/fpu"
	"risc32sim/mdu"
	"risc32sim/memory"
	"risc32sim/regfile"
	"risc32sim/shifter"
)

// Cycle records everything that happened during one step, for tracing and
// for the statistics layer above.
type Cycle struct {
	PC          bitvec.Vector
	Raw         bitvec.Vector
	Instruction decoder.Instruction
	Signals     control.Signals
	AluResult   alu.Result
	NextPC      bitvec.Vector
	BranchTaken bool
	MemRead     bool
	MemWrite    bool
	Halted      bool
	HaltReason  string
}

// Datapath bundles the state one cycle reads and writes: the register
// file, memory, and the program counter.
type Datapath struct {
	Regs *regfile.RegisterFile
	Mem  *memory.Memory
	PC   bitvec.Vector
}

// New returns a datapath with PC at memory.InstructionBase.
func New(regs *regfile.RegisterFile, mem *memory.Memory) *Datapath {
	return &Datapath{Regs: regs, Mem: mem, PC: bitvec.New(32)}
}

func four() bitvec.Vector {
	v := bitvec.New(32)
	v[29] = 1
	return v
}

// boolToWord renders a comparison outcome as the 32-bit 0/1 SLT/SLTU result.
func boolToWord(b bool) bitvec.Vector {
	v := bitvec.New(32)
	if b {
		v[31] = 1
	}
	return v
}

// selfBranchWord is the encoding of JAL x0, 0 — an unconditional jump to
// itself, treated as a deliberate halt instruction by spec.md Section 4.11.
var selfBranchWord = bitvec.Vector{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 0, 1, 1, 1, 1,
}

// Step executes exactly one instruction: fetch at PC, decode, read
// operands, execute on the selected functional unit, access memory, write
// back, and compute the next PC. It never mutates state past the point a
// halt condition is detected.
func (d *Datapath) Step() Cycle {
	raw := d.Mem.ReadWord(d.PC)
	cyc := Cycle{PC: d.PC.Clone(), Raw: raw}

	if raw.Equal(selfBranchWord) {
		cyc.Halted = true
		cyc.HaltReason = "self-branch"
		cyc.NextPC = d.PC.Clone()
		return cyc
	}

	instr := decoder.Decode(raw)
	cyc.Instruction = instr

	sig := control.For(instr.Mnemonic)
	cyc.Signals = sig
	if !sig.Recognized {
		cyc.Halted = true
		cyc.HaltReason = "invalid instruction"
		cyc.NextPC = d.PC.Clone()
		return cyc
	}

	operandA := d.readOperandA(sig, instr)
	operandB := d.readOperandB(sig, instr)

	var aluOut bitvec.Vector
	var aluFlags alu.Flags
	var fpResult fpu.Result
	var fpWrite bool

	switch sig.Exec {
	case control.ExecALU:
		res := alu.Compute(operandA, operandB, sig.AluOp)
		aluOut = res.Value
		aluFlags = res.Flags
		switch sig.Compare {
		case control.CompareSigned:
			aluOut = boolToWord(aluFlags.N != aluFlags.V)
		case control.CompareUnsigned:
			aluOut = boolToWord(!aluFlags.C)
		}
	case control.ExecShifter:
		aluOut = shifter.Shift(operandA, operandB.Slice(27, 32), sig.ShiftOp)
	case control.ExecMultiply:
		m := mdu.Multiply(operandA, operandB, sig.MulOp)
		aluOut = m.Result
	case control.ExecDivide:
		div := mdu.Divide(operandA, operandB, sig.DivOp)
		if sig.DivOp == mdu.DIV || sig.DivOp == mdu.DIVU {
			aluOut = div.Quotient
		} else {
			aluOut = div.Remainder
		}
	case control.ExecFPAdd:
		fpResult = fpu.Add(operandA, operandB, fpu.RNE)
		fpWrite = true
	case control.ExecFPSub:
		fpResult = fpu.Sub(operandA, operandB, fpu.RNE)
		fpWrite = true
	case control.ExecFPMul:
		fpResult = fpu.Mul(operandA, operandB, fpu.RNE)
		fpWrite = true
	case control.ExecNone:
		// LUI, JAL: no functional unit needed.
	}
	cyc.AluResult = alu.Result{Value: aluOut, Flags: aluFlags}

	if fpWrite {
		d.Regs.RaiseFFlags(fpResult.Flags.Invalid, fpResult.Flags.DivByZero,
			fpResult.Flags.Overflow, fpResult.Flags.Underflow, fpResult.Flags.Inexact)
	}

	if sig.MemWrite {
		cyc.MemWrite = true
		storeVal := d.Regs.ReadInt(instr.Rs2)
		d.Mem.WriteWord(aluOut, storeVal)
	}

	var loaded bitvec.Vector
	if sig.MemRead {
		cyc.MemRead = true
		loaded = d.Mem.ReadWord(aluOut)
	}

	pcPlus4 := alu.Add(d.PC, four()).Value

	if sig.RegWrite {
		var writeVal bitvec.Vector
		switch sig.ResultSrc {
		case control.ResultALU:
			if fpWrite {
				writeVal = fpResult.Value
			} else {
				writeVal = aluOut
			}
		case control.ResultMemory:
			writeVal = loaded
		case control.ResultPCPlus4:
			writeVal = pcPlus4
		case control.ResultImmediate:
			writeVal = instr.Immediate
		}
		if sig.RdIsFP {
			d.Regs.WriteFP(instr.Rd, writeVal)
		} else {
			d.Regs.WriteInt(instr.Rd, writeVal)
		}
	}

	nextPC := pcPlus4
	taken := false
	switch sig.Branch {
	case control.BranchEQ:
		taken = aluFlags.Z
	case control.BranchNE:
		taken = !aluFlags.Z
	}
	if taken {
		nextPC = alu.Add(d.PC, instr.Immediate).Value
	}

	switch sig.Jump {
	case control.JumpJAL:
		nextPC = alu.Add(d.PC, instr.Immediate).Value
		taken = true
	case control.JumpJALR:
		nextPC = alignJumpTarget(aluOut)
		taken = true
	}

	cyc.BranchTaken = taken
	cyc.NextPC = nextPC
	d.PC = nextPC
	return cyc
}

// alignJumpTarget clears the low bit of a JALR target per the RISC-V spec.
func alignJumpTarget(addr bitvec.Vector) bitvec.Vector {
	out := addr.Clone()
	out[31] = 0
	return out
}

func (d *Datapath) readOperandA(sig control.Signals, instr decoder.Instruction) bitvec.Vector {
	if sig.OperandA == control.SrcPC {
		return d.PC.Clone()
	}
	if sig.Rs1IsFP {
		return d.Regs.ReadFP(instr.Rs1)
	}
	return d.Regs.ReadInt(instr.Rs1)
}

func (d *Datapath) readOperandB(sig control.Signals, instr decoder.Instruction) bitvec.Vector {
	if sig.OperandB == control.SrcImmediate {
		return instr.Immediate
	}
	if sig.Rs2IsFP {
		return d.Regs.ReadFP(instr.Rs2)
	}
	return d.Regs.ReadInt(instr.Rs2)
}
