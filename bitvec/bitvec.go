// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
// Package bitvec implements the fixed-width bit-vector primitives that every
// functional unit in this simulator is built from. A Vector is an ordered
// sequence of 0/1 values, MSB-first: index 0 is the most significant bit,
// index Len()-1 the least. No function in this package performs host wide
// arithmetic, shifting, or base conversion on the values the vectors carry;
// the only numeric work here is counting array positions.
package bitvec

import "fmt"

// Vector is a fixed-width, MSB-first sequence of bits. Each element must be
// 0 or 1; nothing in this package enforces that beyond construction, so
// callers that build a Vector by hand are expected to respect it.
type Vector []int

// New returns a width-bit vector with every bit set to zero.
func New(width int) Vector {
	return make(Vector, width)
}

// Len reports the width of v in bits.
func (v Vector) Len() int { return len(v) }

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Equal reports whether v and w have the same width and identical bits at
// every position.
func (v Vector) Equal(w Vector) bool {
	if len(v) != len(w) {
		return false
	}
	for i := range v {
		if v[i] != w[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether every bit of v is 0.
func (v Vector) IsZero() bool {
	for _, b := range v {
		if b != 0 {
			return false
		}
	}
	return true
}

// MSB returns the sign/most-significant bit of v. Panics on an empty vector.
func (v Vector) MSB() int {
	if len(v) == 0 {
		panic(fmt.Errorf("bitvec: MSB of empty vector"))
	}
	return v[0]
}

// LSB returns the least-significant bit of v. Panics on an empty vector.
func (v Vector) LSB() int {
	if len(v) == 0 {
		panic(fmt.Errorf("bitvec: LSB of empty vector"))
	}
	return v[len(v)-1]
}

// Slice extracts the half-open range [start, end) from v, MSB-first, the
// same convention Python slicing uses in the reference implementation this
// simulator is modeled on.
func (v Vector) Slice(start, end int) Vector {
	if start < 0 || end > len(v) || start > end {
		panic(fmt.Errorf("bitvec: slice [%d:%d) out of range for width %d", start, end, len(v)))
	}
	out := make(Vector, end-start)
	copy(out, v[start:end])
	return out
}

// Concat joins bit arrays MSB-to-LSB: the first argument becomes the most
// significant portion of the result.
func Concat(parts ...Vector) Vector {
	width := 0
	for _, p := range parts {
		width += len(p)
	}
	out := make(Vector, 0, width)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func requireSameWidth(op string, a, b Vector) {
	if len(a) != len(b) {
		panic(fmt.Errorf("bitvec: %s width mismatch: %d != %d", op, len(a), len(b)))
	}
}

// And computes the bitwise AND of a and b, which must have equal width.
func And(a, b Vector) Vector {
	requireSameWidth("AND", a, b)
	out := make(Vector, len(a))
	for i := range a {
		out[i] = a[i] & b[i]
	}
	return out
}

// Or computes the bitwise OR of a and b, which must have equal width.
func Or(a, b Vector) Vector {
	requireSameWidth("OR", a, b)
	out := make(Vector, len(a))
	for i := range a {
		out[i] = a[i] | b[i]
	}
	return out
}

// Xor computes the bitwise XOR of a and b, which must have equal width.
func Xor(a, b Vector) Vector {
	requireSameWidth("XOR", a, b)
	out := make(Vector, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// Not inverts every bit of a.
func Not(a Vector) Vector {
	out := make(Vector, len(a))
	for i, b := range a {
		out[i] = 1 ^ b
	}
	return out
}

// SignExtend widens v to targetWidth by replicating its MSB. If v is already
// at least targetWidth wide, it is returned unchanged (as a copy).
func SignExtend(v Vector, targetWidth int) Vector {
	if len(v) >= targetWidth {
		return v.Clone()
	}
	sign := v.MSB()
	pad := make(Vector, targetWidth-len(v))
	for i := range pad {
		pad[i] = sign
	}
	return Concat(pad, v)
}

// ZeroExtend widens v to targetWidth by padding its MSB side with zeros. If v
// is already at least targetWidth wide, it is returned unchanged (as a copy).
func ZeroExtend(v Vector, targetWidth int) Vector {
	if len(v) >= targetWidth {
		return v.Clone()
	}
	return Concat(make(Vector, targetWidth-len(v)), v)
}

// Truncate narrows v to targetWidth, keeping the least-significant bits.
func Truncate(v Vector, targetWidth int) Vector {
	if len(v) <= targetWidth {
		return v.Clone()
	}
	return v.Slice(len(v)-targetWidth, len(v))
}

var nibbleToHex = [16]byte{
	'0', '1', '2', '3', '4', '5', '6', '7',
	'8', '9', 'A', 'B', 'C', 'D', 'E', 'F',
}

var hexToNibble = map[byte]Vector{
	'0': {0, 0, 0, 0}, '1': {0, 0, 0, 1}, '2': {0, 0, 1, 0}, '3': {0, 0, 1, 1},
	'4': {0, 1, 0, 0}, '5': {0, 1, 0, 1}, '6': {0, 1, 1, 0}, '7': {0, 1, 1, 1},
	'8': {1, 0, 0, 0}, '9': {1, 0, 0, 1}, 'A': {1, 0, 1, 0}, 'B': {1, 0, 1, 1},
	'C': {1, 1, 0, 0}, 'D': {1, 1, 0, 1}, 'E': {1, 1, 1, 0}, 'F': {1, 1, 1, 1},
	'a': {1, 0, 1, 0}, 'b': {1, 0, 1, 1}, 'c': {1, 1, 0, 0}, 'd': {1, 1, 0, 1},
	'e': {1, 1, 1, 0}, 'f': {1, 1, 1, 1},
}

// nibbleIndex turns a 4-bit nibble into a [0,16) table index using only
// positional weighting, not host multiplication.
func nibbleIndex(n Vector) int {
	idx := 0
	for _, b := range n {
		idx = idx + idx + b
	}
	return idx
}

// Hex formats v as "0x" followed by one hex digit per 4-bit nibble, using the
// nibble lookup table rather than any base-conversion primitive. v's width
// must be a multiple of 4.
func Hex(v Vector) string {
	if len(v)%4 != 0 {
		panic(fmt.Errorf("bitvec: Hex requires a multiple of 4 bits, got %d", len(v)))
	}
	digits := make([]byte, len(v)/4)
	for i := 0; i*4 < len(v); i++ {
		nibble := v.Slice(i*4, i*4+4)
		digits[i] = nibbleToHex[nibbleIndex(nibble)]
	}
	return "0x" + string(digits)
}

// ParseHex is the inverse of Hex: it decodes a (optionally "0x"-prefixed)
// string of hex digits into a bit vector, using the inverse nibble table.
// The string must have an even number of hex digits and contain only
// characters 0-9, A-F, a-f.
func ParseHex(s string) (Vector, error) {
	if len(s) >= 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		s = s[2:]
	}
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("bitvec: ParseHex requires an even-length digit string, got %q", s)
	}
	out := make(Vector, 0, len(s)*4)
	for _, c := range []byte(s) {
		nibble, ok := hexToNibble[c]
		if !ok {
			return nil, fmt.Errorf("bitvec: invalid hex character %q in %q", c, s)
		}
		out = append(out, nibble...)
	}
	return out, nil
}

// String implements fmt.Stringer by formatting v as a hex string when its
// width is a multiple of 4, else as a raw bit string.
func (v Vector) String() string {
	if len(v) > 0 && len(v)%4 == 0 {
		return Hex(v)
	}
	buf := make([]byte, len(v))
	for i, b := range v {
		if b != 0 {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}
