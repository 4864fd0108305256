// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
// Package decoder implements instruction decoding from spec.md Section 4.9:
// field extraction by slicing, opcode/funct dispatch to a fixed mnemonic
// table, and immediate reconstruction with sign extension for all six
// formats. Grounded on decoder.py's opcode/funct3/funct7 dispatch tables,
// extended with the standard RV32M and RV32F encodings decoder.py's RV32I-only
// source never needed.
package decoder

import "risc32sim/bitvec"

// Format tags the six RISC-V instruction encodings.
type Format int

const (
	FormatR Format = iota
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
	FormatUnknown
)

// Instruction is a fully decoded instruction record.
type Instruction struct {
	Format    Format
	Opcode    bitvec.Vector
	Funct3    bitvec.Vector
	Funct7    bitvec.Vector
	Rd        int
	Rs1       int
	Rs2       int
	Immediate bitvec.Vector
	Mnemonic  string
}

// String renders a compact disassembly line, for trace/display only; the
// functional core never calls this.
func (in Instruction) String() string {
	return in.Mnemonic
}

func regNum(field bitvec.Vector) int {
	n := 0
	for _, b := range field {
		n = n + n + b
	}
	return n
}

func opcodeEquals(op bitvec.Vector, pattern ...int) bool {
	for i, b := range pattern {
		if op[i] != b {
			return false
		}
	}
	return true
}

func funct3Equals(f bitvec.Vector, pattern ...int) bool {
	return f[0] == pattern[0] && f[1] == pattern[1] && f[2] == pattern[2]
}

func funct7Equals(f bitvec.Vector, pattern ...int) bool {
	for i, b := range pattern {
		if f[i] != b {
			return false
		}
	}
	return true
}

// Decode decodes a 32-bit instruction word. Instructions the mnemonic table
// does not recognize decode with Mnemonic "UNKNOWN". An unrecognized opcode
// also gets Format FormatUnknown; an unrecognized funct3/funct7 under a known
// opcode keeps that opcode's format.
func Decode(raw bitvec.Vector) Instruction {
	if raw.Len() != 32 {
		panic("decoder: instruction word must be 32 bits")
	}

	opcode := raw.Slice(25, 32)
	rd := regNum(raw.Slice(20, 25))
	rs1 := regNum(raw.Slice(12, 17))
	rs2 := regNum(raw.Slice(7, 12))
	funct3 := raw.Slice(17, 20)
	funct7 := raw.Slice(0, 7)

	switch {
	case opcodeEquals(opcode, 0, 1, 1, 0, 0, 1, 1): // 0110011 R-type ALU/MDU
		return decodeRType(raw, opcode, funct3, funct7, rd, rs1, rs2)
	case opcodeEquals(opcode, 1, 0, 1, 0, 0, 1, 1): // 1010011 R-type FPU
		return decodeFType(raw, opcode, funct3, funct7, rd, rs1, rs2)
	case opcodeEquals(opcode, 0, 0, 1, 0, 0, 1, 1): // 0010011 immediate ALU
		return decodeIAluType(raw, opcode, funct3, rd, rs1)
	case opcodeEquals(opcode, 0, 0, 0, 0, 0, 1, 1): // 0000011 load
		return Instruction{Format: FormatI, Opcode: opcode, Funct3: funct3, Rd: rd, Rs1: rs1,
			Immediate: iImmediate(raw), Mnemonic: mnemonicOrUnknown(funct3Equals(funct3, 0, 1, 0), "LW")}
	case opcodeEquals(opcode, 1, 1, 0, 0, 1, 1, 1): // 1100111 JALR
		return Instruction{Format: FormatI, Opcode: opcode, Funct3: funct3, Rd: rd, Rs1: rs1,
			Immediate: iImmediate(raw), Mnemonic: "JALR"}
	case opcodeEquals(opcode, 0, 1, 0, 0, 0, 1, 1): // 0100011 store
		return Instruction{Format: FormatS, Opcode: opcode, Funct3: funct3, Rs1: rs1, Rs2: rs2,
			Immediate: sImmediate(raw), Mnemonic: mnemonicOrUnknown(funct3Equals(funct3, 0, 1, 0), "SW")}
	case opcodeEquals(opcode, 1, 1, 0, 0, 0, 1, 1): // 1100011 branch
		return decodeBType(raw, opcode, funct3, rs1, rs2)
	case opcodeEquals(opcode, 0, 1, 1, 0, 1, 1, 1): // 0110111 LUI
		return Instruction{Format: FormatU, Opcode: opcode, Rd: rd, Immediate: uImmediate(raw), Mnemonic: "LUI"}
	case opcodeEquals(opcode, 0, 0, 1, 0, 1, 1, 1): // 0010111 AUIPC
		return Instruction{Format: FormatU, Opcode: opcode, Rd: rd, Immediate: uImmediate(raw), Mnemonic: "AUIPC"}
	case opcodeEquals(opcode, 1, 1, 0, 1, 1, 1, 1): // 1101111 JAL
		return Instruction{Format: FormatJ, Opcode: opcode, Rd: rd, Immediate: jImmediate(raw), Mnemonic: "JAL"}
	default:
		return Instruction{Format: FormatUnknown, Opcode: opcode, Mnemonic: "UNKNOWN"}
	}
}

func mnemonicOrUnknown(matched bool, name string) string {
	if matched {
		return name
	}
	return "UNKNOWN"
}

func decodeRType(raw, opcode, funct3, funct7 bitvec.Vector, rd, rs1, rs2 int) Instruction {
	base := Instruction{Format: FormatR, Opcode: opcode, Funct3: funct3, Funct7: funct7, Rd: rd, Rs1: rs1, Rs2: rs2}

	if funct7Equals(funct7, 0, 0, 0, 0, 0, 0, 1) { // M-extension
		base.Mnemonic = mExtensionMnemonic(funct3)
		return base
	}

	switch {
	case funct3Equals(funct3, 0, 0, 0):
		if funct7Equals(funct7, 0, 0, 0, 0, 0, 0, 0) {
			base.Mnemonic = "ADD"
		} else if funct7Equals(funct7, 0, 1, 0, 0, 0, 0, 0) {
			base.Mnemonic = "SUB"
		} else {
			base.Mnemonic = "UNKNOWN"
		}
	case funct3Equals(funct3, 0, 0, 1):
		base.Mnemonic = "SLL"
	case funct3Equals(funct3, 0, 1, 0):
		base.Mnemonic = "SLT"
	case funct3Equals(funct3, 0, 1, 1):
		base.Mnemonic = "SLTU"
	case funct3Equals(funct3, 1, 0, 0):
		base.Mnemonic = "XOR"
	case funct3Equals(funct3, 1, 0, 1):
		if funct7Equals(funct7, 0, 0, 0, 0, 0, 0, 0) {
			base.Mnemonic = "SRL"
		} else if funct7Equals(funct7, 0, 1, 0, 0, 0, 0, 0) {
			base.Mnemonic = "SRA"
		} else {
			base.Mnemonic = "UNKNOWN"
		}
	case funct3Equals(funct3, 1, 1, 0):
		base.Mnemonic = "OR"
	case funct3Equals(funct3, 1, 1, 1):
		base.Mnemonic = "AND"
	default:
		base.Mnemonic = "UNKNOWN"
	}
	return base
}

func mExtensionMnemonic(funct3 bitvec.Vector) string {
	switch {
	case funct3Equals(funct3, 0, 0, 0):
		return "MUL"
	case funct3Equals(funct3, 0, 0, 1):
		return "MULH"
	case funct3Equals(funct3, 0, 1, 0):
		return "MULHSU"
	case funct3Equals(funct3, 0, 1, 1):
		return "MULHU"
	case funct3Equals(funct3, 1, 0, 0):
		return "DIV"
	case funct3Equals(funct3, 1, 0, 1):
		return "DIVU"
	case funct3Equals(funct3, 1, 1, 0):
		return "REM"
	case funct3Equals(funct3, 1, 1, 1):
		return "REMU"
	default:
		return "UNKNOWN"
	}
}

// decodeFType dispatches the F-extension R-type encoding: funct7 selects
// the operation, funct3 carries the rounding mode (ignored; the FPU rounds
// ties-to-even only).
func decodeFType(raw, opcode, funct3, funct7 bitvec.Vector, rd, rs1, rs2 int) Instruction {
	base := Instruction{Format: FormatR, Opcode: opcode, Funct3: funct3, Funct7: funct7, Rd: rd, Rs1: rs1, Rs2: rs2}
	switch {
	case funct7Equals(funct7, 0, 0, 0, 0, 0, 0, 0):
		base.Mnemonic = "FADD.S"
	case funct7Equals(funct7, 0, 0, 0, 0, 1, 0, 0):
		base.Mnemonic = "FSUB.S"
	case funct7Equals(funct7, 0, 0, 0, 1, 0, 0, 0):
		base.Mnemonic = "FMUL.S"
	default:
		base.Mnemonic = "UNKNOWN"
	}
	return base
}

func decodeIAluType(raw, opcode, funct3 bitvec.Vector, rd, rs1 int) Instruction {
	base := Instruction{Format: FormatI, Opcode: opcode, Funct3: funct3, Rd: rd, Rs1: rs1, Immediate: iImmediate(raw)}
	switch {
	case funct3Equals(funct3, 0, 0, 0):
		base.Mnemonic = "ADDI"
	case funct3Equals(funct3, 0, 0, 1):
		base.Mnemonic = "SLLI"
		base.Immediate = shamtImmediate(raw)
	case funct3Equals(funct3, 0, 1, 0):
		base.Mnemonic = "SLTI"
	case funct3Equals(funct3, 0, 1, 1):
		base.Mnemonic = "SLTIU"
	case funct3Equals(funct3, 1, 0, 0):
		base.Mnemonic = "XORI"
	case funct3Equals(funct3, 1, 0, 1):
		base.Immediate = shamtImmediate(raw)
		if raw[1] == 0 { // bit 30
			base.Mnemonic = "SRLI"
		} else {
			base.Mnemonic = "SRAI"
		}
	case funct3Equals(funct3, 1, 1, 0):
		base.Mnemonic = "ORI"
	case funct3Equals(funct3, 1, 1, 1):
		base.Mnemonic = "ANDI"
	default:
		base.Mnemonic = "UNKNOWN"
	}
	return base
}

func decodeBType(raw, opcode, funct3 bitvec.Vector, rs1, rs2 int) Instruction {
	base := Instruction{Format: FormatB, Opcode: opcode, Funct3: funct3, Rs1: rs1, Rs2: rs2, Immediate: bImmediate(raw)}
	switch {
	case funct3Equals(funct3, 0, 0, 0):
		base.Mnemonic = "BEQ"
	case funct3Equals(funct3, 0, 0, 1):
		base.Mnemonic = "BNE"
	default:
		base.Mnemonic = "UNKNOWN"
	}
	return base
}

// iImmediate reconstructs the I-type immediate: bits 31..20, sign-extended.
func iImmediate(raw bitvec.Vector) bitvec.Vector {
	return bitvec.SignExtend(raw.Slice(0, 12), 32)
}

// shamtImmediate reconstructs the 5-bit shift amount (bits 24..20) for
// SLLI/SRLI/SRAI, zero-extended to 32 bits; the datapath takes only its low
// 5 bits.
func shamtImmediate(raw bitvec.Vector) bitvec.Vector {
	return bitvec.ZeroExtend(raw.Slice(7, 12), 32)
}

// sImmediate reconstructs the S-type immediate: bits 31..25 ++ bits 11..7,
// sign-extended.
func sImmediate(raw bitvec.Vector) bitvec.Vector {
	hi := raw.Slice(0, 7)  // bits 31..25
	lo := raw.Slice(20, 25) // bits 11..7
	return bitvec.SignExtend(bitvec.Concat(hi, lo), 32)
}

// bImmediate reconstructs the B-type immediate: bit31 ++ bit7 ++ bits30..25
// ++ bits11..8 ++ 0, sign-extended.
func bImmediate(raw bitvec.Vector) bitvec.Vector {
	bit31 := raw.Slice(0, 1)
	bit7 := raw.Slice(24, 25)
	bits30_25 := raw.Slice(1, 7)
	bits11_8 := raw.Slice(20, 24)
	zero := bitvec.Vector{0}
	carried := bitvec.Concat(bit31, bit7, bits30_25, bits11_8, zero) // 13 bits
	return bitvec.SignExtend(carried, 32)
}

// uImmediate reconstructs the U-type immediate: bits 31..12 ++ 12 zero
// bits. Not sign-extended.
func uImmediate(raw bitvec.Vector) bitvec.Vector {
	hi := raw.Slice(0, 20) // bits 31..12
	return bitvec.Concat(hi, bitvec.New(12))
}

// jImmediate reconstructs the J-type immediate: bit31 ++ bits19..12 ++
// bit20 ++ bits30..21 ++ 0, sign-extended.
func jImmediate(raw bitvec.Vector) bitvec.Vector {
	bit31 := raw.Slice(0, 1)
	bits19_12 := raw.Slice(12, 20)
	bit20 := raw.Slice(11, 12)
	bits30_21 := raw.Slice(1, 11)
	zero := bitvec.Vector{0}
	carried := bitvec.Concat(bit31, bits19_12, bit20, bits30_21, zero) // 21 bits
	return bitvec.SignExtend(carried, 32)
}
