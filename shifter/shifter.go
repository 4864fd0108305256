// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
// Package shifter implements the 5-stage barrel shifter from spec.md
// Section 4.4. Each stage conditionally shifts by a power of two (16, 8, 4,
// 2, 1) using only Vector slicing and concatenation; no host << or >>
// operator appears anywhere in this file.
package shifter

import (
	"fmt"

	"risc32sim/bitvec"
)

// Op selects the shifter's operation.
type Op int

const (
	OpSLL Op = iota // shift left logical
	OpSRL           // shift right logical
	OpSRA           // shift right arithmetic
)

const width = 32

// stageAmounts lists the per-stage shift distance, most significant stage
// first, matching shamt bits 4..0 of the (masked) shift amount.
var stageAmounts = [5]int{16, 8, 4, 2, 1}

// shamtBits decodes a 5-bit shift-amount vector into stage enable booleans,
// most-significant stage (shift-by-16) first.
func shamtBits(shamt bitvec.Vector) [5]bool {
	var bits [5]bool
	for i := 0; i < 5; i++ {
		bits[i] = shamt[i] == 1
	}
	return bits
}

// Shift applies op to a 32-bit data vector by the amount encoded in a 5-bit
// shamt vector. Per RV32 semantics the amount is already masked to 5 bits by
// the caller (the decoder/datapath); Shift does not re-mask it.
func Shift(data bitvec.Vector, shamt bitvec.Vector, op Op) bitvec.Vector {
	if data.Len() != width {
		panic(fmt.Errorf("shifter: data must be %d bits, got %d", width, data.Len()))
	}
	if shamt.Len() != 5 {
		panic(fmt.Errorf("shifter: shift amount must be 5 bits, got %d", shamt.Len()))
	}

	stages := shamtBits(shamt)
	current := data
	sign := data.MSB()

	switch op {
	case OpSLL:
		for i, enabled := range stages {
			if !enabled {
				continue
			}
			s := stageAmounts[i]
			current = bitvec.Concat(current.Slice(s, width), bitvec.New(s))
		}
	case OpSRL:
		for i, enabled := range stages {
			if !enabled {
				continue
			}
			s := stageAmounts[i]
			current = bitvec.Concat(bitvec.New(s), current.Slice(0, width-s))
		}
	case OpSRA:
		for i, enabled := range stages {
			if !enabled {
				continue
			}
			s := stageAmounts[i]
			fill := make(bitvec.Vector, s)
			for j := range fill {
				fill[j] = sign
			}
			current = bitvec.Concat(fill, current.Slice(0, width-s))
		}
	default:
		panic(fmt.Errorf("shifter: unknown op %d", op))
	}

	return current
}
