// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
// Package alu implements the 32-bit ALU described in spec.md Section 4.3: a
// ripple-carry adder built from one-bit full-adder cells, plus bitwise
// AND/OR/XOR/NOR, each synthesized without the host's +, -, or wide logic
// operators. Subtraction is addition with the B operand inverted and a
// forced carry-in.
package alu

import (
	"fmt"

	"risc32sim/bitvec"
)

// Op selects the ALU's operation.
type Op int

const (
	OpAnd Op = iota
	OpOr
	OpXor
	OpNor
	OpAdd
	OpSub
)

// Flags carries the four RV32 ALU condition flags.
type Flags struct {
	N bool // result MSB
	Z bool // result is all-zero
	C bool // carry out of the MSB adder cell (no-borrow, for SUB)
	V bool // signed overflow
}

// Result is a 32-bit ALU output paired with its flags.
type Result struct {
	Value bitvec.Vector
	Flags Flags
}

const width = 32

// fullAdder computes the sum and carry-out of one ripple-carry stage from
// three single bits, using only boolean primitives.
func fullAdder(a, b, carryIn int) (sum, carryOut int) {
	axb := a ^ b
	sum = axb ^ carryIn
	carryOut = majority(a, b, carryIn)
	return
}

func majority(a, b, c int) int {
	return (a & b) | (b & c) | (a & c)
}

// add32 ripple-carries a and b (LSB to MSB) with the given carry-in,
// returning the 32-bit sum and the carry out of the MSB cell.
func add32(a, b bitvec.Vector, carryIn int) (bitvec.Vector, int) {
	sum := make(bitvec.Vector, width)
	carry := carryIn
	for i := width - 1; i >= 0; i-- {
		var s int
		s, carry = fullAdder(a[i], b[i], carry)
		sum[i] = s
	}
	return sum, carry
}

// Compute evaluates op on 32-bit operands a and b.
func Compute(a, b bitvec.Vector, op Op) Result {
	if a.Len() != width || b.Len() != width {
		panic(fmt.Errorf("alu: operands must be %d bits, got %d and %d", width, a.Len(), b.Len()))
	}

	switch op {
	case OpAnd:
		return logicalResult(bitvec.And(a, b))
	case OpOr:
		return logicalResult(bitvec.Or(a, b))
	case OpXor:
		return logicalResult(bitvec.Xor(a, b))
	case OpNor:
		return logicalResult(bitvec.Not(bitvec.Or(a, b)))
	case OpAdd:
		return arithmeticResult(a, b, a, b, 0)
	case OpSub:
		bInv := bitvec.Not(b)
		sum, carryOut := add32(a, bInv, 1)
		return Result{
			Value: sum,
			Flags: Flags{
				N: sum.MSB() == 1,
				Z: sum.IsZero(),
				C: carryOut == 1,
				V: signedOverflowSub(a, b, sum),
			},
		}
	default:
		panic(fmt.Errorf("alu: unknown op %d", op))
	}
}

// Add is a convenience wrapper for Compute(a, b, OpAdd).
func Add(a, b bitvec.Vector) Result { return Compute(a, b, OpAdd) }

// Sub is a convenience wrapper for Compute(a, b, OpSub).
func Sub(a, b bitvec.Vector) Result { return Compute(a, b, OpSub) }

func arithmeticResult(a, b, rawA, rawB bitvec.Vector, carryIn int) Result {
	sum, carryOut := add32(a, b, carryIn)
	return Result{
		Value: sum,
		Flags: Flags{
			N: sum.MSB() == 1,
			Z: sum.IsZero(),
			C: carryOut == 1,
			V: signedOverflowAdd(rawA, rawB, sum),
		},
	}
}

func logicalResult(v bitvec.Vector) Result {
	return Result{
		Value: v,
		Flags: Flags{
			N: v.MSB() == 1,
			Z: v.IsZero(),
			C: false,
			V: false,
		},
	}
}

// signedOverflowAdd implements spec.md's ADD overflow rule: operands share a
// sign and the result's sign differs from it.
func signedOverflowAdd(a, b, result bitvec.Vector) bool {
	return a.MSB() == b.MSB() && result.MSB() != a.MSB()
}

// signedOverflowSub implements spec.md's SUB overflow rule: operands differ
// in sign and the result's sign differs from the minuend's.
func signedOverflowSub(a, b, result bitvec.Vector) bool {
	return a.MSB() != b.MSB() && result.MSB() != a.MSB()
}
