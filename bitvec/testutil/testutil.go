// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
// Package testutil holds the host-integer <-> bit-vector conversions that
// spec.md explicitly carves out as test-only: they are free to use %, //,
// and host arithmetic to build reference values for assertions. No
// functional-unit package may import this package; it exists purely so
// _test.go files across the module don't each reinvent the same
// int-to-bits plumbing.
package testutil

import "risc32sim/bitvec"

// FromUint converts a non-negative host integer to an unsigned width-bit
// vector, MSB-first. This uses ordinary host arithmetic and exists only to
// build test fixtures.
func FromUint(value uint64, width int) bitvec.Vector {
	out := make(bitvec.Vector, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = int(value & 1)
		value >>= 1
	}
	return out
}

// FromInt32 converts a host int32 to its 32-bit two's-complement vector.
func FromInt32(value int32) bitvec.Vector {
	return FromUint(uint64(uint32(value)), 32)
}

// ToUint converts a bit vector to a host unsigned integer.
func ToUint(v bitvec.Vector) uint64 {
	var result uint64
	for _, b := range v {
		result = (result << 1) | uint64(b)
	}
	return result
}

// ToInt32 interprets a 32-bit vector as a two's-complement host int32.
func ToInt32(v bitvec.Vector) int32 {
	return int32(uint32(ToUint(v)))
}

// ToInt64 interprets a 64-bit vector as a two's-complement host int64.
func ToInt64(v bitvec.Vector) int64 {
	return int64(ToUint(v))
}
