// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package twoscomp

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 12345, -12345, maxInt32, minInt32, maxInt32 - 1, minInt32 + 1}
	for _, v := range cases {
		enc := Encode(v)
		if enc.Overflow {
			t.Fatalf("Encode(%d) unexpectedly overflowed", v)
		}
		got := Decode(enc.Bin)
		if got != v {
			t.Fatalf("Decode(Encode(%d)) = %d", v, got)
		}
	}
}

func TestEncodeOverflowOutOfRange(t *testing.T) {
	cases := []int64{maxInt32 + 1, minInt32 - 1, int64(1) << 40, -(int64(1) << 40)}
	for _, v := range cases {
		enc := Encode(v)
		if !enc.Overflow {
			t.Fatalf("Encode(%d) should report overflow", v)
		}
	}
}

func TestEncodeKnownValues(t *testing.T) {
	tests := []struct {
		value int64
		hex   string
	}{
		{0, "0x00000000"},
		{-1, "0xFFFFFFFF"},
		{1, "0x00000001"},
		{maxInt32, "0x7FFFFFFF"},
		{minInt32, "0x80000000"},
	}
	for _, tc := range tests {
		enc := Encode(tc.value)
		if enc.Hex != tc.hex {
			t.Fatalf("Encode(%d).Hex = %s, want %s", tc.value, enc.Hex, tc.hex)
		}
	}
}

func TestDecodeKnownValues(t *testing.T) {
	enc := Encode(-7)
	if got := Decode(enc.Bin); got != -7 {
		t.Fatalf("Decode(Encode(-7)) = %d", got)
	}
}
