// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
// Package mdu implements the RISC-V M-extension multiply/divide unit from
// spec.md Section 4.5: a 32-iteration shift-add multiplier and a
// 32-iteration restoring divider, both built entirely from the alu and
// shifter packages. No host *, /, or % operator appears in this file except
// for loop bookkeeping.
package mdu

import (
	"fmt"

	"risc32sim/alu"
	"risc32sim/bitvec"
	"risc32sim/shifter"
)

const width = 32

// MulOp selects which RISC-V multiply variant to compute.
type MulOp int

const (
	MUL MulOp = iota
	MULH
	MULHU
	MULHSU
)

// DivOp selects which RISC-V divide/remainder variant to compute.
type DivOp int

const (
	DIV DivOp = iota
	DIVU
	REM
	REMU
)

// MulTraceEntry records one iteration of the shift-add multiplier.
type MulTraceEntry struct {
	Step          int
	AccHi, AccLo  bitvec.Vector
	MultiplierBit int
	Added         bool
}

// MulResult is the outcome of a multiply: the RISC-V result register value,
// both 64-bit limbs, the grading-only overflow flag, and the per-iteration
// trace.
type MulResult struct {
	Result        bitvec.Vector
	Hi, Lo        bitvec.Vector
	Overflow      bool
	Trace         []MulTraceEntry
}

// DivTraceEntry records one iteration of the restoring divider.
type DivTraceEntry struct {
	Step               int
	Remainder, Quotient bitvec.Vector
	Subtracted          bool
}

// DivResult is the outcome of a divide/remainder: quotient, remainder, the
// INT_MIN/-1 grading-only overflow flag, and the per-iteration trace (empty
// for the dedicated edge cases).
type DivResult struct {
	Quotient, Remainder bitvec.Vector
	Overflow            bool
	Trace               []DivTraceEntry
}

func one32() bitvec.Vector {
	v := bitvec.New(width)
	v[width-1] = 1
	return v
}

// negate computes the two's-complement negation of v via invert-then-add-one
// through the ALU.
func negate(v bitvec.Vector) bitvec.Vector {
	return alu.Add(bitvec.Not(v), one32()).Value
}

func isNegative(v bitvec.Vector) bool { return v.MSB() == 1 }

// absMagnitude returns v unchanged if nonnegative, else its negation, along
// with whether it was negated.
func absMagnitude(v bitvec.Vector, signed bool) (bitvec.Vector, bool) {
	if signed && isNegative(v) {
		return negate(v), true
	}
	return v.Clone(), false
}

// shiftLeftBy shifts a 32-bit vector left by n bits (0 <= n <= 31) via the
// barrel shifter, encoding n as the 5-bit amount the shifter expects.
func shiftLeftBy(v bitvec.Vector, n int) bitvec.Vector {
	amt := bitvec.New(5)
	rem := n
	for i := 4; i >= 0; i-- {
		bit := 0
		if rem >= pow2(i) {
			bit = 1
			rem -= pow2(i)
		}
		amt[4-i] = bit
	}
	return shifter.Shift(v, amt, shifter.OpSLL)
}

func pow2(n int) int {
	v := 1
	for i := 0; i < n; i++ {
		v += v
	}
	return v
}

// Multiply runs the 32-iteration shift-add multiplier described in spec.md
// Section 4.5, honoring the signedness convention of op.
func Multiply(rs1, rs2 bitvec.Vector, op MulOp) MulResult {
	requireWidth("Multiply rs1", rs1)
	requireWidth("Multiply rs2", rs2)

	rs1Signed := op == MUL || op == MULH || op == MULHSU
	rs2Signed := op == MUL || op == MULH

	multiplicand, rs1Neg := absMagnitude(rs1, rs1Signed)
	multiplier, rs2Neg := absMagnitude(rs2, rs2Signed)

	accHi := bitvec.New(width)
	accLo := bitvec.New(width)

	trace := make([]MulTraceEntry, 0, width)

	for i := 0; i < width; i++ {
		bitIndex := width - 1 - i
		multiplierBit := multiplier[bitIndex]

		added := false
		if multiplierBit == 1 {
			var addLo, addHi bitvec.Vector
			if i == 0 {
				addLo = multiplicand.Clone()
				addHi = bitvec.New(width)
			} else {
				shifted := shiftLeftBy(multiplicand, i)
				addLo = shifted
				topBits := multiplicand.Slice(0, i)
				addHi = bitvec.Concat(bitvec.New(width-i), topBits)
			}

			loResult := alu.Add(accLo, addLo)
			hiResult := alu.Add(accHi, addHi)
			hiSum := hiResult.Value
			if loResult.Flags.C {
				hiSum = alu.Add(hiSum, one32()).Value
			}
			accLo = loResult.Value
			accHi = hiSum
			added = true
		}

		trace = append(trace, MulTraceEntry{
			Step:          i + 1,
			AccHi:         accHi.Clone(),
			AccLo:         accLo.Clone(),
			MultiplierBit: multiplierBit,
			Added:         added,
		})
	}

	resultNegative := (rs1Signed || rs2Signed) && (rs1Neg != rs2Neg)
	if resultNegative {
		loInv := bitvec.Not(accLo)
		hiInv := bitvec.Not(accHi)
		loResult := alu.Add(loInv, one32())
		accLo = loResult.Value
		if loResult.Flags.C {
			accHi = alu.Add(hiInv, one32()).Value
		} else {
			accHi = hiInv
		}
	}

	overflow := false
	if op == MUL {
		signBit := accLo.MSB()
		expectedHi := bitvec.New(width)
		for i := range expectedHi {
			expectedHi[i] = signBit
		}
		overflow = !accHi.Equal(expectedHi)
	}

	result := accHi
	if op == MUL {
		result = accLo
	}

	return MulResult{
		Result:   result,
		Hi:       accHi,
		Lo:       accLo,
		Overflow: overflow,
		Trace:    trace,
	}
}

// Divide runs the 32-iteration restoring divider described in spec.md
// Section 4.5, including its dedicated divide-by-zero and INT_MIN/-1
// overflow edge cases.
func Divide(rs1, rs2 bitvec.Vector, op DivOp) DivResult {
	requireWidth("Divide rs1", rs1)
	requireWidth("Divide rs2", rs2)

	signed := op == DIV || op == REM

	if rs2.IsZero() {
		quotient := bitvec.New(width)
		for i := range quotient {
			quotient[i] = 1
		}
		return DivResult{
			Quotient:  quotient,
			Remainder: rs1.Clone(),
		}
	}

	if signed {
		intMin := bitvec.New(width)
		intMin[0] = 1
		negOne := bitvec.New(width)
		for i := range negOne {
			negOne[i] = 1
		}
		if rs1.Equal(intMin) && rs2.Equal(negOne) {
			return DivResult{
				Quotient:  intMin.Clone(),
				Remainder: bitvec.New(width),
				Overflow:  true,
			}
		}
	}

	dividend, dividendNeg := absMagnitude(rs1, signed)
	divisor, divisorNeg := absMagnitude(rs2, signed)

	remHi := bitvec.New(width)
	remLo := dividend.Clone()
	quotient := bitvec.New(width)

	trace := make([]DivTraceEntry, 0, width)

	for i := 0; i < width; i++ {
		// Shift the 64-bit (remHi:remLo) pair left by one.
		carryFromLo := remLo.MSB()
		remHi = shifter.Shift(remHi, amount1(), shifter.OpSLL)
		remHi[width-1] = carryFromLo
		remLo = shifter.Shift(remLo, amount1(), shifter.OpSLL)

		sub := alu.Sub(remHi, divisor)
		nonNegative := sub.Flags.C

		subtracted := false
		if nonNegative {
			remHi = sub.Value
			subtracted = true
		}

		quotient = shifter.Shift(quotient, amount1(), shifter.OpSLL)
		if subtracted {
			quotient[width-1] = 1
		}

		trace = append(trace, DivTraceEntry{
			Step:       i + 1,
			Remainder:  remHi.Clone(),
			Quotient:   quotient.Clone(),
			Subtracted: subtracted,
		})
	}

	quotientNegative := signed && (dividendNeg != divisorNeg)
	remainderNegative := signed && dividendNeg

	if quotientNegative && !quotient.IsZero() {
		quotient = negate(quotient)
	}
	if remainderNegative && !remHi.IsZero() {
		remHi = negate(remHi)
	}

	return DivResult{
		Quotient:  quotient,
		Remainder: remHi,
		Trace:     trace,
	}
}

func amount1() bitvec.Vector {
	v := bitvec.New(5)
	v[4] = 1
	return v
}

func requireWidth(what string, v bitvec.Vector) {
	if v.Len() != width {
		panic(fmt.Errorf("mdu: %s must be %d bits, got %d", what, width, v.Len()))
	}
}
