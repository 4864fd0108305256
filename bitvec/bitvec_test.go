// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package bitvec

import "testing"

func TestEqual(t *testing.T) {
	a := Vector{1, 0, 1, 1}
	b := Vector{1, 0, 1, 1}
	c := Vector{1, 0, 1, 0}
	if !a.Equal(b) {
		t.Fatalf("expected %v == %v", a, b)
	}
	if a.Equal(c) {
		t.Fatalf("expected %v != %v", a, c)
	}
	if a.Equal(Vector{1, 0, 1}) {
		t.Fatalf("widths must not match")
	}
}

func TestIsZero(t *testing.T) {
	if !New(8).IsZero() {
		t.Fatalf("New(8) must be all-zero")
	}
	v := New(8)
	v[7] = 1
	if v.IsZero() {
		t.Fatalf("expected nonzero vector")
	}
}

func TestSliceMSBFirst(t *testing.T) {
	v := Vector{1, 1, 0, 0, 1, 0, 1, 0}
	got := v.Slice(2, 6)
	want := Vector{0, 0, 1, 0}
	if !got.Equal(want) {
		t.Fatalf("Slice(2,6) = %v, want %v", got, want)
	}
}

func TestSliceOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on out-of-range slice")
		}
	}()
	Vector{1, 0}.Slice(0, 3)
}

func TestConcat(t *testing.T) {
	got := Concat(Vector{1, 1}, Vector{0}, Vector{1, 0})
	want := Vector{1, 1, 0, 1, 0}
	if !got.Equal(want) {
		t.Fatalf("Concat = %v, want %v", got, want)
	}
}

func TestBitwiseOps(t *testing.T) {
	a := Vector{1, 0, 1, 0}
	b := Vector{1, 1, 0, 0}
	if !And(a, b).Equal(Vector{1, 0, 0, 0}) {
		t.Fatalf("AND wrong")
	}
	if !Or(a, b).Equal(Vector{1, 1, 1, 0}) {
		t.Fatalf("OR wrong")
	}
	if !Xor(a, b).Equal(Vector{0, 1, 1, 0}) {
		t.Fatalf("XOR wrong")
	}
	if !Not(a).Equal(Vector{0, 1, 0, 1}) {
		t.Fatalf("NOT wrong")
	}
}

func TestBitwiseWidthMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on width mismatch")
		}
	}()
	And(Vector{1, 0}, Vector{1, 0, 0})
}

func TestSignExtend(t *testing.T) {
	neg := Vector{1, 0, 1}
	got := SignExtend(neg, 8)
	want := Vector{1, 1, 1, 1, 1, 1, 0, 1}
	if !got.Equal(want) {
		t.Fatalf("SignExtend(neg) = %v, want %v", got, want)
	}

	pos := Vector{0, 1, 1}
	got = SignExtend(pos, 8)
	want = Vector{0, 0, 0, 0, 0, 0, 1, 1}
	if !got.Equal(want) {
		t.Fatalf("SignExtend(pos) = %v, want %v", got, want)
	}
}

func TestZeroExtend(t *testing.T) {
	v := Vector{1, 0, 1}
	got := ZeroExtend(v, 8)
	want := Vector{0, 0, 0, 0, 0, 1, 0, 1}
	if !got.Equal(want) {
		t.Fatalf("ZeroExtend = %v, want %v", got, want)
	}
}

func TestHexRoundTrip(t *testing.T) {
	cases := []string{"0x00000000", "0xFFFFFFFF", "0xDEADBEEF", "0x12345678"}
	for _, s := range cases {
		v, err := ParseHex(s)
		if err != nil {
			t.Fatalf("ParseHex(%q): %v", s, err)
		}
		got := Hex(v)
		if got != s {
			t.Fatalf("Hex(ParseHex(%q)) = %q", s, got)
		}
	}
}

func TestParseHexLowercaseAndNoPrefix(t *testing.T) {
	v1, err := ParseHex("deadbeef")
	if err != nil {
		t.Fatalf("ParseHex lowercase: %v", err)
	}
	v2, err := ParseHex("0xDEADBEEF")
	if err != nil {
		t.Fatalf("ParseHex prefixed: %v", err)
	}
	if !v1.Equal(v2) {
		t.Fatalf("case-insensitive parse mismatch: %v != %v", v1, v2)
	}
}

func TestParseHexOddLengthFails(t *testing.T) {
	if _, err := ParseHex("abc"); err == nil {
		t.Fatalf("expected error for odd-length hex string")
	}
}

func TestParseHexInvalidCharacterFails(t *testing.T) {
	if _, err := ParseHex("12g4"); err == nil {
		t.Fatalf("expected error for non-hex character")
	}
}

func TestHexWidthMustBeMultipleOf4(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for non-nibble-aligned width")
		}
	}()
	Hex(Vector{1, 0, 1})
}
