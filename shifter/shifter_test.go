// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package shifter

import (
	"testing"

	"risc32sim/bitvec"
	"risc32sim/bitvec/testutil"
)

func shamt(n uint32) bitvec.Vector { return testutil.FromUint(uint64(n), 5) }

func TestSLLKnownValue(t *testing.T) {
	data := testutil.FromUint(1, 32)
	got := Shift(data, shamt(31), OpSLL)
	if testutil.ToUint(got) != 0x80000000 {
		t.Fatalf("1 SLL 31 = %#x, want 0x80000000", testutil.ToUint(got))
	}
}

func TestSRLKnownValue(t *testing.T) {
	data := testutil.FromUint(0x80000000, 32)
	got := Shift(data, shamt(31), OpSRL)
	if testutil.ToUint(got) != 1 {
		t.Fatalf("0x80000000 SRL 31 = %#x, want 1", testutil.ToUint(got))
	}
}

func TestSRAPreservesSign(t *testing.T) {
	data := testutil.FromUint(0x80000000, 32)
	got := Shift(data, shamt(31), OpSRA)
	if testutil.ToUint(got) != 0xFFFFFFFF {
		t.Fatalf("0x80000000 SRA 31 = %#x, want 0xFFFFFFFF", testutil.ToUint(got))
	}
}

func TestSLLThenSRLClearsHighBits(t *testing.T) {
	data := testutil.FromUint(0xFFFFFFFF, 32)
	for s := uint32(0); s < 32; s++ {
		left := Shift(data, shamt(s), OpSLL)
		back := Shift(left, shamt(s), OpSRL)
		// The s most-significant bits (indices 0..s-1, MSB-first) end up zero.
		want := testutil.FromUint(0xFFFFFFFF, 32)
		for i := 0; i < int(s); i++ {
			want[i] = 0
		}
		if !back.Equal(want) {
			t.Fatalf("s=%d: SLL-then-SRL = %s, want %s", s, back, want)
		}
	}
}

func TestSRAHighBitsAllOne(t *testing.T) {
	data := testutil.FromUint(0x80000000, 32)
	for s := uint32(0); s < 32; s++ {
		got := Shift(data, shamt(s), OpSRA)
		for i := 0; i <= int(s); i++ {
			if got[i] != 1 {
				t.Fatalf("s=%d: bit %d = %d, want 1 (got %s)", s, i, got[i], got)
			}
		}
	}
}

func TestZeroShiftIsIdentity(t *testing.T) {
	data := testutil.FromUint(0xDEADBEEF, 32)
	for _, op := range []Op{OpSLL, OpSRL, OpSRA} {
		got := Shift(data, shamt(0), op)
		if !got.Equal(data) {
			t.Fatalf("op=%d shift-by-0 changed the value: %s", op, got)
		}
	}
}

func TestWrongWidthPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for wrong data width")
		}
	}()
	Shift(testutil.FromUint(0, 16), shamt(1), OpSLL)
}
