// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
// Package memory implements the byte-addressable store from spec.md
// Section 4.8: a flat byte array split into an instruction region and a
// data region, little-endian word access with alignment enforcement, and
// program loading. Grounded on memory.py's region layout and the
// address-to-offset conversion it marks as an explicit I/O boundary: the
// memory component does no address arithmetic of its own (PC+4, effective
// addresses, and so on are the datapath's job, via the ALU), it only turns
// an already-computed address into an array index.
package memory

import (
	"fmt"

	"risc32sim/bitvec"
)

const (
	// DefaultSize is the total backing store, split evenly between the
	// instruction and data regions.
	DefaultSize = 128 * 1024

	// InstructionBase and DataBase mark the low addresses of each region.
	InstructionBase = 0x00000000
	DataBase        = 0x00010000
)

// Memory is a flat byte-addressable store.
type Memory struct {
	bytes [][]int // each element an 8-bit big-endian-within-byte bit vector
	size  int
}

// New returns a zeroed memory of size bytes (DefaultSize when size <= 0).
func New(size int) *Memory {
	if size <= 0 {
		size = DefaultSize
	}
	bytes := make([][]int, size)
	for i := range bytes {
		bytes[i] = make([]int, 8)
	}
	return &Memory{bytes: bytes, size: size}
}

// addrToOffset converts an address vector to an array index. This is the
// memory component's one sanctioned use of host arithmetic: it is array
// indexing, not address computation (spec.md Section 4.8).
func addrToOffset(addr bitvec.Vector) int {
	offset := 0
	for _, b := range addr {
		offset = offset + offset + b
	}
	return offset
}

func (m *Memory) checkBounds(addr bitvec.Vector, width int) {
	offset := addrToOffset(addr)
	if offset < 0 || offset+width > m.size {
		panic(fmt.Errorf("memory: address %s out of bounds", addr))
	}
}

func requireAligned(addr bitvec.Vector) {
	if addr.Len() != 32 {
		panic(fmt.Errorf("memory: address must be 32 bits, got %d", addr.Len()))
	}
	if addr[30] != 0 || addr[31] != 0 {
		panic(fmt.Errorf("memory: address %s is not word-aligned", addr))
	}
}

// ReadByte returns the byte at addr.
func (m *Memory) ReadByte(addr bitvec.Vector) bitvec.Vector {
	m.checkBounds(addr, 1)
	out := make(bitvec.Vector, 8)
	copy(out, m.bytes[addrToOffset(addr)])
	return out
}

// WriteByte stores an 8-bit value at addr.
func (m *Memory) WriteByte(addr bitvec.Vector, data bitvec.Vector) {
	if data.Len() != 8 {
		panic(fmt.Errorf("memory: byte write must be 8 bits, got %d", data.Len()))
	}
	m.checkBounds(addr, 1)
	offset := addrToOffset(addr)
	copy(m.bytes[offset], data)
}

// ReadWord reads a 32-bit little-endian word from a word-aligned addr: byte
// 0 at addr is the word's least-significant byte.
func (m *Memory) ReadWord(addr bitvec.Vector) bitvec.Vector {
	requireAligned(addr)
	m.checkBounds(addr, 4)
	offset := addrToOffset(addr)
	byte0 := m.bytes[offset]
	byte1 := m.bytes[offset+1]
	byte2 := m.bytes[offset+2]
	byte3 := m.bytes[offset+3]
	return bitvec.Concat(byte3, byte2, byte1, byte0)
}

// WriteWord writes a 32-bit value little-endian to a word-aligned addr.
func (m *Memory) WriteWord(addr bitvec.Vector, data bitvec.Vector) {
	if data.Len() != 32 {
		panic(fmt.Errorf("memory: word write must be 32 bits, got %d", data.Len()))
	}
	requireAligned(addr)
	m.checkBounds(addr, 4)
	offset := addrToOffset(addr)
	byte3 := data.Slice(0, 8)
	byte2 := data.Slice(8, 16)
	byte1 := data.Slice(16, 24)
	byte0 := data.Slice(24, 32)
	copy(m.bytes[offset], byte0)
	copy(m.bytes[offset+1], byte1)
	copy(m.bytes[offset+2], byte2)
	copy(m.bytes[offset+3], byte3)
}

// Reset zeroes every byte, preserving the store's size.
func (m *Memory) Reset() {
	for i := range m.bytes {
		for j := range m.bytes[i] {
			m.bytes[i][j] = 0
		}
	}
}

// LoadProgram writes a sequence of 32-bit instruction words sequentially
// starting at InstructionBase, each word 4 bytes after the last.
func (m *Memory) LoadProgram(words []bitvec.Vector) {
	addr := make(bitvec.Vector, 32)
	four := bitvec.Vector{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0}
	for _, w := range words {
		m.WriteWord(addr, w)
		addr = rippleAdd32(addr, four)
	}
}

// rippleAdd32 adds two 32-bit vectors with a plain ripple-carry full adder,
// independent of the alu package so memory has no dependency on it (its
// only need for addition is advancing the load cursor by a compile-time
// constant of 4).
func rippleAdd32(a, b bitvec.Vector) bitvec.Vector {
	sum := make(bitvec.Vector, 32)
	carry := 0
	for i := 31; i >= 0; i-- {
		axb := a[i] ^ b[i]
		sum[i] = axb ^ carry
		carry = (a[i] & b[i]) | (b[i] & carry) | (a[i] & carry)
	}
	return sum
}
